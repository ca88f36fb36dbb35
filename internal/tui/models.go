package tui

import (
	"context"

	"github.com/pders01/fcst/internal/forecast"
	"github.com/pders01/fcst/internal/geocode"
	"github.com/pders01/fcst/internal/storage"
)

// Focus is the dialog element receiving keys.
type Focus int

const (
	FocusInput Focus = iota
	FocusResults
	FocusUnits
	FocusSubmit
)

func (f Focus) String() string {
	switch f {
	case FocusInput:
		return "input"
	case FocusResults:
		return "results"
	case FocusUnits:
		return "units"
	case FocusSubmit:
		return "submit"
	default:
		return "unknown"
	}
}

// Geocoder turns a free-text query into location candidates.
type Geocoder interface {
	Autocomplete(ctx context.Context, query string) ([]geocode.Result, error)
}

// Forecaster fetches the daily forecast for a coordinate.
type Forecaster interface {
	Fetch(ctx context.Context, lat, lon float64, units forecast.Units) (*forecast.Response, error)
}

// MapOpener shows a coordinate in an external map and returns the link used.
type MapOpener interface {
	Open(lat, lon float64, label string) (string, error)
}

// Recorder remembers locations a forecast was fetched for.
type Recorder interface {
	Record(r geocode.Result) (*storage.Location, error)
}
