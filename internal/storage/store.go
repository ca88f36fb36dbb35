package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	locationsBucket = []byte("locations")
	settingsBucket  = []byte("settings")

	settingsKey = []byte("settings")
)

var ErrNotFound = errors.New("not found")

type Store struct {
	db *bolt.DB
}

// NewStore opens (creating if needed) the database at dbPath. A zero
// timeout falls back to one second.
func NewStore(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = time.Second
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{locationsBucket, settingsBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveLocation upserts loc. An existing entry keeps its count, which is
// incremented; LastUsed is taken from loc or set to now.
func (s *Store) SaveLocation(loc *Location) error {
	if loc.ID == "" {
		loc.ID = LocationID(loc.Lat, loc.Lon)
	}
	if loc.LastUsed.IsZero() {
		loc.LastUsed = time.Now()
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(locationsBucket)
		if data := b.Get([]byte(loc.ID)); data != nil {
			var existing Location
			if err := json.Unmarshal(data, &existing); err == nil {
				loc.Count = existing.Count
			}
		}
		loc.Count++

		data, err := json.Marshal(loc)
		if err != nil {
			return err
		}
		return b.Put([]byte(loc.ID), data)
	})
}

func (s *Store) GetLocation(id string) (*Location, error) {
	var loc Location
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(locationsBucket).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("location %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &loc)
	})
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// GetLocations returns stored locations, most recently used first.
// limit <= 0 returns all of them.
func (s *Store) GetLocations(limit int) ([]*Location, error) {
	var locations []*Location
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(locationsBucket).ForEach(func(_ []byte, v []byte) error {
			var loc Location
			if err := json.Unmarshal(v, &loc); err != nil {
				return nil
			}
			locations = append(locations, &loc)
			return nil
		})
	})
	sort.SliceStable(locations, func(i, j int) bool {
		if locations[i].LastUsed.Equal(locations[j].LastUsed) {
			return locations[i].ID < locations[j].ID
		}
		return locations[i].LastUsed.After(locations[j].LastUsed)
	})
	if limit > 0 && len(locations) > limit {
		locations = locations[:limit]
	}
	return locations, err
}

func (s *Store) DeleteLocation(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(locationsBucket).Delete([]byte(id))
	})
}

// ClearLocations removes every stored location.
func (s *Store) ClearLocations() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(locationsBucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(locationsBucket)
		return err
	})
}

// UnitMetric returns the saved unit preference; ok is false when none
// has been saved yet.
func (s *Store) UnitMetric() (metric bool, ok bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(settingsBucket).Get(settingsKey)
		if data == nil {
			return nil
		}
		var settings Settings
		if err := json.Unmarshal(data, &settings); err != nil {
			return err
		}
		metric, ok = settings.Metric, true
		return nil
	})
	return metric, ok, err
}

func (s *Store) SetUnitMetric(metric bool) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(Settings{Metric: metric, UpdatedAt: time.Now()})
		if err != nil {
			return err
		}
		return tx.Bucket(settingsBucket).Put(settingsKey, data)
	})
}
