package geocode

import "strings"

// Result is a single autocomplete candidate.
type Result struct {
	Address  string  `json:"address"`
	District string  `json:"district"`
	City     string  `json:"city"`
	Country  string  `json:"country"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	IsCity   bool    `json:"is_city"`
}

// IsZero reports whether r is the empty selection.
func (r Result) IsZero() bool {
	return r == Result{}
}

// FormatResult renders a location for display: "city, country" for city
// results, "district, city, country" otherwise. Missing parts are left out
// along with their separator.
func FormatResult(r Result) string {
	parts := make([]string, 0, 3)
	if !r.IsCity && r.District != "" {
		parts = append(parts, r.District)
	}
	if r.City != "" {
		parts = append(parts, r.City)
	}
	if r.Country != "" {
		parts = append(parts, r.Country)
	}
	return strings.Join(parts, ", ")
}

func (r Result) String() string {
	return FormatResult(r)
}
