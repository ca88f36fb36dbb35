package forecast

import (
	"bytes"
	"encoding/json"
)

// Units selects the unit system requested from the provider.
type Units string

const (
	Metric   Units = "metric"
	Imperial Units = "imperial"
)

// UnitsFor maps the shared unit flag onto the provider's unit names.
func UnitsFor(metric bool) Units {
	if metric {
		return Metric
	}
	return Imperial
}

// Reading holds a temperature-like value exactly as the provider sent it:
// either a bare number or an object of day parts.
type Reading struct {
	Day   float64 `json:"day"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Night float64 `json:"night"`
	Eve   float64 `json:"eve"`
	Morn  float64 `json:"morn"`

	parts bool
}

// Scalar builds a Reading from a single number.
func Scalar(v float64) Reading {
	return Reading{Day: v}
}

// Value returns the number, or the day value when parts were sent.
func (r Reading) Value() float64 {
	return r.Day
}

// HasParts reports whether the provider sent the object form.
func (r Reading) HasParts() bool {
	return r.parts
}

func (r *Reading) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Reading{}
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		type plain Reading
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*r = Reading(p)
		r.parts = true
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Scalar(v)
	return nil
}

func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.parts {
		return json.Marshal(r.Day)
	}
	type plain Reading
	return json.Marshal(plain(r))
}

// Response is the subset of the One Call payload the resolver reads.
type Response struct {
	Timezone       string     `json:"timezone"`
	TimezoneOffset int        `json:"timezone_offset"`
	Daily          []DailyRaw `json:"daily"`
}

type DailyRaw struct {
	Dt        int64       `json:"dt"`
	Sunrise   int64       `json:"sunrise"`
	Sunset    int64       `json:"sunset"`
	Temp      Reading     `json:"temp"`
	FeelsLike Reading     `json:"feels_like"`
	Humidity  float64     `json:"humidity"`
	WindSpeed float64     `json:"wind_speed"`
	Weather   []Condition `json:"weather"`
}

type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Current is today's snapshot published to shared state.
type Current struct {
	Location  string  `json:"location"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	Sunrise   string  `json:"sunrise"`
	Sunset    string  `json:"sunset"`
	FeelsLike Reading `json:"feels_like"`
	Humidity  float64 `json:"humidity"`
	Temp      Reading `json:"temp"`
	WindSpeed float64 `json:"wind_speed"`
	Condition string  `json:"condition"`
}

// Prediction is one of the following days.
type Prediction struct {
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	Temp      Reading `json:"temp"`
	FeelsLike Reading `json:"feels_like"`
	Condition string  `json:"condition"`
}
