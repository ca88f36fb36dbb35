// Package history keeps the locations a forecast was fetched for and makes
// them searchable by name.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/fcst/internal/geocode"
	"github.com/pders01/fcst/internal/storage"
)

// Hit is a matched location with its relevance score.
type Hit struct {
	Location *storage.Location
	Score    float64
}

type Index struct {
	store *storage.Store
	idx   bleve.Index
}

// Open opens or creates the index at indexPath and indexes every
// location already in store.
func Open(store *storage.Store, indexPath string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	idx, err := bleve.Open(indexPath)
	if err != nil {
		idx, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("creating index: %w", err)
		}
	}
	return newIndex(store, idx)
}

// NewMemIndex builds an in-memory index over store.
func NewMemIndex(store *storage.Store) (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}
	return newIndex(store, idx)
}

func newIndex(store *storage.Store, idx bleve.Index) (*Index, error) {
	x := &Index{store: store, idx: idx}
	if err := x.reindexAll(); err != nil {
		idx.Close()
		return nil, err
	}
	return x, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()
	for _, field := range []string{"label", "city", "country", "district", "address"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
		fm.Store = true
		dm.AddFieldMappingsAt(field, fm)
	}

	im.DefaultMapping = dm
	return im
}

func document(loc *storage.Location) map[string]any {
	return map[string]any{
		"label":    loc.Label,
		"city":     loc.City,
		"country":  loc.Country,
		"district": loc.District,
		"address":  loc.Address,
	}
}

func (x *Index) reindexAll() error {
	locations, err := x.store.GetLocations(0)
	if err != nil {
		return fmt.Errorf("loading locations: %w", err)
	}

	batch := x.idx.NewBatch()
	for _, loc := range locations {
		if err := batch.Index(loc.ID, document(loc)); err != nil {
			return err
		}
	}
	return x.idx.Batch(batch)
}

// Record stores r as used now and indexes it.
func (x *Index) Record(r geocode.Result) (*storage.Location, error) {
	loc := &storage.Location{
		ID:       storage.LocationID(r.Lat, r.Lon),
		Label:    geocode.FormatResult(r),
		Address:  r.Address,
		District: r.District,
		City:     r.City,
		Country:  r.Country,
		Lat:      r.Lat,
		Lon:      r.Lon,
		IsCity:   r.IsCity,
		LastUsed: time.Now(),
	}
	if err := x.store.SaveLocation(loc); err != nil {
		return nil, fmt.Errorf("saving location: %w", err)
	}
	if err := x.idx.Index(loc.ID, document(loc)); err != nil {
		return nil, fmt.Errorf("indexing location: %w", err)
	}
	return loc, nil
}

// Forget removes one location from the store and the index.
func (x *Index) Forget(id string) error {
	if _, err := x.store.GetLocation(id); err != nil {
		return fmt.Errorf("location %s: %w", id, err)
	}
	if err := x.store.DeleteLocation(id); err != nil {
		return fmt.Errorf("deleting location: %w", err)
	}
	if err := x.idx.Delete(id); err != nil {
		return fmt.Errorf("unindexing location: %w", err)
	}
	return nil
}

// Search matches query against stored location names, best first.
func (x *Index) Search(query string, limit int) ([]*Hit, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Hit{}, nil
	}
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return []*Hit{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	boosts := []struct {
		field string
		boost float64
	}{
		{"label", 4.0},
		{"city", 3.0},
		{"country", 2.0},
		{"district", 1.5},
		{"address", 1.0},
	}

	var qs []bleveQuery.Query
	for _, tok := range tokens {
		for _, b := range boosts {
			mq := bleve.NewMatchQuery(tok)
			mq.SetField(b.field)
			mq.SetBoost(b.boost)
			qs = append(qs, mq)

			pq := bleve.NewPrefixQuery(tok)
			pq.SetField(b.field)
			pq.SetBoost(b.boost * 0.8)
			qs = append(qs, pq)
		}
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	req.Fields = []string{"label", "city", "country", "district", "address"}
	res, err := x.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching history: %w", err)
	}

	out := make([]*Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		loc, err := x.store.GetLocation(h.ID)
		if err != nil {
			// Index entry without a stored location; rebuild from fields.
			loc = &storage.Location{ID: h.ID}
			loc.Label, _ = h.Fields["label"].(string)
			loc.City, _ = h.Fields["city"].(string)
			loc.Country, _ = h.Fields["country"].(string)
			loc.District, _ = h.Fields["district"].(string)
			loc.Address, _ = h.Fields["address"].(string)
		}
		out = append(out, &Hit{Location: loc, Score: h.Score})
	}
	return out, nil
}

// Recent returns the most recently used locations.
func (x *Index) Recent(limit int) ([]*storage.Location, error) {
	return x.store.GetLocations(limit)
}

// Clear removes every location from the store and the index.
func (x *Index) Clear() error {
	if err := x.store.ClearLocations(); err != nil {
		return fmt.Errorf("clearing locations: %w", err)
	}

	for {
		req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), 1000, 0, false)
		res, err := x.idx.Search(req)
		if err != nil {
			return fmt.Errorf("listing index: %w", err)
		}
		if len(res.Hits) == 0 {
			return nil
		}
		batch := x.idx.NewBatch()
		for _, h := range res.Hits {
			batch.Delete(h.ID)
		}
		if err := x.idx.Batch(batch); err != nil {
			return fmt.Errorf("clearing index: %w", err)
		}
	}
}

// DocCount reports total documents in the index.
func (x *Index) DocCount() (int, error) {
	n, err := x.idx.DocCount()
	return int(n), err
}

func (x *Index) Close() error {
	return x.idx.Close()
}

func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			if term := current.String(); len([]rune(term)) > 1 {
				terms = append(terms, term)
			}
			current.Reset()
		}
	}

	if term := current.String(); len([]rune(term)) > 1 {
		terms = append(terms, term)
	}

	return terms
}
