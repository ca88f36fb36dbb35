package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	autocompletePath = "/v1/geocode/autocomplete"
	// DefaultLimit is how many candidates a lookup keeps.
	DefaultLimit = 4
	maxErrorBody = 512
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("geocoding API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("geocoding API returned status %d: %s", e.StatusCode, e.Body)
}

type Options struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Timeout   time.Duration
	// Limit caps the number of candidates returned; <= 0 means DefaultLimit.
	Limit int
}

type Client struct {
	baseURL   string
	apiKey    string
	userAgent string
	limit     int
	client    *http.Client
}

func NewClient(opts Options) *Client {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		apiKey:    opts.APIKey,
		userAgent: opts.UserAgent,
		limit:     limit,
		client: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

type featureCollection struct {
	Features []struct {
		Properties struct {
			Formatted    string  `json:"formatted"`
			AddressLine1 string  `json:"address_line1"`
			City         string  `json:"city"`
			Country      string  `json:"country"`
			Lat          float64 `json:"lat"`
			Lon          float64 `json:"lon"`
			ResultType   string  `json:"result_type"`
		} `json:"properties"`
	} `json:"features"`
}

// Autocomplete returns up to the configured limit of candidates for query,
// in the order the provider ranked them.
func (c *Client) Autocomplete(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Set("text", query)
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+autocompletePath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching candidates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decoding candidates: %w", err)
	}

	n := len(fc.Features)
	if n > c.limit {
		n = c.limit
	}

	results := make([]Result, 0, n)
	for _, f := range fc.Features[:n] {
		p := f.Properties
		results = append(results, Result{
			Address:  p.Formatted,
			District: p.AddressLine1,
			City:     p.City,
			Country:  p.Country,
			Lat:      p.Lat,
			Lon:      p.Lon,
			IsCity:   p.ResultType == "city",
		})
	}
	return results, nil
}
