package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/fcst/internal/config"
	"github.com/pders01/fcst/internal/forecast"
	"github.com/pders01/fcst/internal/geocode"
	"github.com/pders01/fcst/internal/state"
	"github.com/pders01/fcst/internal/storage"
)

var (
	paris = geocode.Result{Address: "Paris, France", District: "Paris", City: "Paris", Country: "France", Lat: 48.8566, Lon: 2.3522, IsCity: true}
	soho  = geocode.Result{Address: "Soho, London, UK", District: "Soho", City: "London", Country: "United Kingdom", Lat: 51.5136, Lon: -0.1365}
	texas = geocode.Result{Address: "Paris, TX, United States", District: "Paris", City: "Paris", Country: "United States", Lat: 33.66, Lon: -95.55, IsCity: true}
)

type fakeGeocoder struct {
	mu      sync.Mutex
	queries []string
	results map[string][]geocode.Result
	err     error
}

func (f *fakeGeocoder) Autocomplete(_ context.Context, query string) ([]geocode.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

func (f *fakeGeocoder) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

type fetchCall struct {
	lat, lon float64
	units    forecast.Units
}

type fakeForecaster struct {
	mu      sync.Mutex
	fetches []fetchCall
	resp    *forecast.Response
	err     error
}

func (f *fakeForecaster) Fetch(_ context.Context, lat, lon float64, units forecast.Units) (*forecast.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, fetchCall{lat: lat, lon: lon, units: units})
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeForecaster) calls() []fetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fetchCall(nil), f.fetches...)
}

type fakeRecorder struct {
	mu       sync.Mutex
	recorded []geocode.Result
	err      error
}

func (f *fakeRecorder) Record(r geocode.Result) (*storage.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.recorded = append(f.recorded, r)
	return &storage.Location{Label: geocode.FormatResult(r), Count: len(f.recorded)}, nil
}

type mapCall struct {
	lat, lon float64
	label    string
}

type fakeMaps struct {
	mu     sync.Mutex
	opened []mapCall
	err    error
}

func (f *fakeMaps) Open(lat, lon float64, label string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, mapCall{lat: lat, lon: lon, label: label})
	return fmt.Sprintf("https://maps.test/%.4f/%.4f", lat, lon), f.err
}

// parisResponse is a three-day Europe/Paris forecast starting
// Tue, 14 Nov 2023 22:13:20 UTC.
func parisResponse() *forecast.Response {
	return &forecast.Response{
		Timezone:       "Europe/Paris",
		TimezoneOffset: 3600,
		Daily: []forecast.DailyRaw{
			{
				Dt: 1700000000, Sunrise: 1699943400, Sunset: 1699977600,
				Temp: forecast.Scalar(20), FeelsLike: forecast.Scalar(18),
				Humidity: 64, WindSpeed: 3.5,
				Weather: []forecast.Condition{{Description: "clear sky"}},
			},
			{Dt: 1700086400, Temp: forecast.Scalar(12), FeelsLike: forecast.Scalar(11), Weather: []forecast.Condition{{Description: "light rain"}}},
			{Dt: 1700172800, Temp: forecast.Scalar(15), FeelsLike: forecast.Scalar(14)},
		},
	}
}

type testEnv struct {
	app        *App
	geocoder   *fakeGeocoder
	forecaster *fakeForecaster
	recorder   *fakeRecorder
	shared     *state.Store
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := config.TestConfig()
	for _, m := range mutate {
		m(cfg)
	}

	env := &testEnv{
		geocoder: &fakeGeocoder{results: map[string][]geocode.Result{
			"Par":  {paris, texas},
			"Pari": {paris, texas},
			"Soho": {soho},
		}},
		forecaster: &fakeForecaster{resp: parisResponse()},
		recorder:   &fakeRecorder{},
		shared:     state.New(cfg.UI.Metric),
	}
	env.app = NewApp(cfg, env.shared, env.geocoder, env.forecaster, WithRecorder(env.recorder))
	// A static cursor keeps the text input from scheduling blink timers.
	env.app.query.Cursor.SetMode(cursor.CursorStatic)
	env.app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return env
}

// press sends msg to the app and drives every resulting command to completion.
func (e *testEnv) press(msg tea.Msg) {
	_, cmd := e.app.Update(msg)
	e.drive(cmd)
}

// pressDeferred sends msg but hands back the resulting messages undelivered.
func (e *testEnv) pressDeferred(msg tea.Msg) []tea.Msg {
	_, cmd := e.app.Update(msg)
	return collect(cmd)
}

func (e *testEnv) typeText(s string) {
	for _, r := range s {
		e.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func (e *testEnv) open() {
	if !e.app.open {
		e.press(tea.KeyMsg{Type: tea.KeyCtrlK})
	}
}

// selectFirst searches for q and checks the first candidate.
func (e *testEnv) selectFirst(t *testing.T, q string) {
	t.Helper()
	e.open()
	e.typeText(q)
	if !e.app.hasResults() {
		t.Fatalf("expected results for %q", q)
	}
	e.press(tea.KeyMsg{Type: tea.KeyTab})
	e.press(tea.KeyMsg{Type: tea.KeyEnter})
}

func (e *testEnv) drive(cmd tea.Cmd) {
	for _, msg := range collect(cmd) {
		e.deliver(msg)
	}
}

func (e *testEnv) deliver(msg tea.Msg) {
	switch msg.(type) {
	case lookupDebounceMsg, lookupResultMsg, SubmitSearchMsg, forecastResolvedMsg, mapOpenedMsg:
		_, cmd := e.app.Update(msg)
		e.drive(cmd)
	}
}

// collect runs cmd and flattens batches into the messages they produce.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func findMsg[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

var errBoom = errors.New("boom")
