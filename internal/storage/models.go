package storage

import (
	"fmt"
	"time"
)

// Location is a place the user has fetched a forecast for.
type Location struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Address  string    `json:"address"`
	District string    `json:"district"`
	City     string    `json:"city"`
	Country  string    `json:"country"`
	Lat      float64   `json:"lat"`
	Lon      float64   `json:"lon"`
	IsCity   bool      `json:"is_city"`
	LastUsed time.Time `json:"last_used"`
	Count    int       `json:"count"`
}

// LocationID keys a location by its rounded coordinates, so the same
// place reached through different queries is stored once.
func LocationID(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

type Settings struct {
	Metric    bool      `json:"metric"`
	UpdatedAt time.Time `json:"updated_at"`
}
