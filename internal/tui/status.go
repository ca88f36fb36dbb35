package tui

import (
	"fmt"
	"strings"
)

// Canonical short status messages used across the app.
const (
	MsgSearching   = "Searching…"
	MsgNoResults   = "No results"
	MsgNoSelection = "Pick a city first"
)

func MsgLoadingForecast(label string) string {
	return fmt.Sprintf("Loading forecast for %s…", strings.TrimSpace(label))
}

func MsgForecastUpdated(label string) string {
	return fmt.Sprintf("Forecast updated: %s", strings.TrimSpace(label))
}

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func MsgUnits(metric bool) string {
	if metric {
		return "Units: metric (°C, m/s)"
	}
	return "Units: imperial (°F, mph)"
}

func MsgMapOpened(label string) string {
	return fmt.Sprintf("Opened map for %s", strings.TrimSpace(label))
}

// MsgMapUnavailable shows the link so it can be opened by hand.
func MsgMapUnavailable(link string) string {
	if link == "" {
		return "Could not open map"
	}
	return fmt.Sprintf("Could not open map: %s", link)
}
