package forecast

import (
	"errors"
	"time"

	// Embedded zone database so provider timezones resolve on hosts
	// without /usr/share/zoneinfo.
	_ "time/tzdata"
)

const (
	DateLayout = "Mon, 02 Jan 2006"
	TimeLayout = "15:04"
)

// ErrNoDaily is returned when a response carries no daily entries.
var ErrNoDaily = errors.New("forecast response has no daily entries")

// Place is the location a forecast was requested for.
type Place struct {
	Label string
	Lat   float64
	Lon   float64
}

// FormatDate renders a unix timestamp as a UTC calendar date.
func FormatDate(secs int64) string {
	return time.Unix(secs, 0).UTC().Format(DateLayout)
}

// FormatTime renders a unix timestamp as wall-clock time in loc.
func FormatTime(secs int64, loc *time.Location) string {
	return time.Unix(secs, 0).In(loc).Format(TimeLayout)
}

// Location resolves the response timezone: the IANA name when known,
// otherwise a fixed zone from timezone_offset, otherwise UTC.
func (r *Response) Location() *time.Location {
	if r.Timezone != "" {
		if loc, err := time.LoadLocation(r.Timezone); err == nil {
			return loc
		}
	}
	if r.TimezoneOffset != 0 {
		return time.FixedZone(r.Timezone, r.TimezoneOffset)
	}
	return time.UTC
}

// Build turns a response into today's snapshot and the following days.
// Both come from the same response so they can be published together.
func Build(resp *Response, place Place) (Current, []Prediction, error) {
	if resp == nil || len(resp.Daily) == 0 {
		return Current{}, nil, ErrNoDaily
	}

	loc := resp.Location()
	today := resp.Daily[0]

	current := Current{
		Location:  place.Label,
		Lat:       place.Lat,
		Lon:       place.Lon,
		Date:      FormatDate(today.Dt),
		Time:      FormatTime(today.Dt, loc),
		Sunrise:   FormatTime(today.Sunrise, loc),
		Sunset:    FormatTime(today.Sunset, loc),
		FeelsLike: today.FeelsLike,
		Humidity:  today.Humidity,
		Temp:      today.Temp,
		WindSpeed: today.WindSpeed,
		Condition: today.description(),
	}

	predictions := make([]Prediction, 0, len(resp.Daily)-1)
	for _, day := range resp.Daily[1:] {
		predictions = append(predictions, Prediction{
			Date:      FormatDate(day.Dt),
			Time:      FormatTime(day.Dt, loc),
			Temp:      day.Temp,
			FeelsLike: day.FeelsLike,
			Condition: day.description(),
		})
	}

	return current, predictions, nil
}

func (d DailyRaw) description() string {
	if len(d.Weather) == 0 {
		return ""
	}
	return d.Weather[0].Description
}
