// Package state holds the forecast data shared between the search dialog
// and the views that display it.
package state

import (
	"sync"

	"github.com/pders01/fcst/internal/forecast"
)

// Snapshot is a consistent copy of the published data.
type Snapshot struct {
	Current     forecast.Current
	Predictions []forecast.Prediction
	Metric      bool
	// Published is false until the first Publish.
	Published bool
}

// Listener is called with a fresh snapshot after every change.
type Listener func(Snapshot)

type Store struct {
	mu          sync.RWMutex
	current     forecast.Current
	predictions []forecast.Prediction
	metric      bool
	published   bool

	nextID    int
	listeners map[int]Listener
}

// New returns an empty store with the given unit flag.
func New(metric bool) *Store {
	return &Store{
		metric:    metric,
		listeners: make(map[int]Listener),
	}
}

// Publish replaces current and predictions together.
func (s *Store) Publish(current forecast.Current, predictions []forecast.Prediction) {
	s.mu.Lock()
	s.current = current
	s.predictions = append([]forecast.Prediction(nil), predictions...)
	s.published = true
	snap := s.snapshotLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, snap)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Metric reports whether forecasts are requested in metric units.
func (s *Store) Metric() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metric
}

func (s *Store) SetMetric(metric bool) {
	s.mu.Lock()
	if s.metric == metric {
		s.mu.Unlock()
		return
	}
	s.metric = metric
	snap := s.snapshotLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, snap)
}

// ToggleMetric flips the unit flag and returns the new value.
func (s *Store) ToggleMetric() bool {
	s.mu.Lock()
	s.metric = !s.metric
	metric := s.metric
	snap := s.snapshotLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, snap)
	return metric
}

// Subscribe registers fn and returns a function that removes it.
// Listeners run on the goroutine that made the change, outside the lock.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Current:     s.current,
		Predictions: append([]forecast.Prediction(nil), s.predictions...),
		Metric:      s.metric,
		Published:   s.published,
	}
}

func (s *Store) listenersLocked() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.listeners[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify(listeners []Listener, snap Snapshot) {
	for _, fn := range listeners {
		fn(snap)
	}
}
