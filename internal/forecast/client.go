package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	oneCallPath  = "/data/2.5/onecall"
	maxErrorBody = 512
)

// DefaultExclude drops the parts of the One Call payload nothing reads.
var DefaultExclude = []string{"current", "minutely", "hourly", "alerts"}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("forecast API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("forecast API returned status %d: %s", e.StatusCode, e.Body)
}

type Options struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Timeout   time.Duration
	Exclude   []string
}

type Client struct {
	baseURL   string
	apiKey    string
	userAgent string
	exclude   string
	client    *http.Client
}

func NewClient(opts Options) *Client {
	exclude := opts.Exclude
	if len(exclude) == 0 {
		exclude = DefaultExclude
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		apiKey:    opts.APIKey,
		userAgent: opts.UserAgent,
		exclude:   strings.Join(exclude, ","),
		client: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

// Fetch requests the daily forecast for lat/lon in the given units.
func (c *Client) Fetch(ctx context.Context, lat, lon float64, units Units) (*Response, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("exclude", c.exclude)
	params.Set("appid", c.apiKey)
	params.Set("units", string(units))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+oneCallPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding forecast: %w", err)
	}
	return &out, nil
}
