package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/fcst/internal/debuglog"
	"github.com/pders01/fcst/internal/forecast"
	"github.com/pders01/fcst/internal/geocode"
)

// SubmitSearchMsg asks the app to fetch the forecast for the selected city.
type SubmitSearchMsg struct{}

func submitSearch() tea.Msg {
	return SubmitSearchMsg{}
}

type lookupDebounceMsg struct {
	seq   int
	query string
}

type lookupResultMsg struct {
	seq     int
	query   string
	results []geocode.Result
	err     error
}

type forecastResolvedMsg struct {
	result      geocode.Result
	place       forecast.Place
	units       forecast.Units
	current     forecast.Current
	predictions []forecast.Prediction
	err         error
}

type mapOpenedMsg struct {
	label string
	link  string
	err   error
}

func (a *App) lookup(seq int, query string) tea.Cmd {
	geocoder := a.geocoder
	return func() tea.Msg {
		results, err := geocoder.Autocomplete(context.Background(), query)
		if err != nil {
			return lookupResultMsg{seq: seq, query: query, err: wrapErr("looking up "+query, err)}
		}
		return lookupResultMsg{seq: seq, query: query, results: results}
	}
}

func (a *App) resolve(r geocode.Result, units forecast.Units) tea.Cmd {
	forecaster := a.forecaster
	place := forecast.Place{Label: geocode.FormatResult(r), Lat: r.Lat, Lon: r.Lon}
	return func() tea.Msg {
		msg := forecastResolvedMsg{result: r, place: place, units: units}

		resp, err := forecaster.Fetch(context.Background(), r.Lat, r.Lon, units)
		if err != nil {
			msg.err = wrapErr("fetching forecast", err)
			return msg
		}

		msg.current, msg.predictions, err = forecast.Build(resp, place)
		if err != nil {
			msg.err = wrapErr("building forecast", err)
		}
		return msg
	}
}

func (a *App) recordLocation(r geocode.Result) tea.Cmd {
	if a.recorder == nil {
		return nil
	}
	recorder := a.recorder
	return func() tea.Msg {
		loc, err := recorder.Record(r)
		if err != nil {
			debuglog.Warnf("recording location %s: %v", geocode.FormatResult(r), err)
			return nil
		}
		debuglog.Debugf("recorded location %s (used %d times)", loc.Label, loc.Count)
		return nil
	}
}

// openMap opens the published location, if any, in the configured map.
func (a *App) openMap() tea.Cmd {
	snap := a.shared.Snapshot()
	if a.maps == nil || !snap.Published {
		return nil
	}
	maps := a.maps
	c := snap.Current
	return func() tea.Msg {
		link, err := maps.Open(c.Lat, c.Lon, c.Location)
		return mapOpenedMsg{label: c.Location, link: link, err: err}
	}
}
