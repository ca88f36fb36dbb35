package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	return &Config{
		Geocoding: GeocodingConfig{
			BaseURL: "http://127.0.0.1:0",
			APIKey:  "test-geo-key",
		},
		Forecast: ForecastConfig{
			BaseURL: "http://127.0.0.1:0",
			APIKey:  "test-owm-key",
			Exclude: defaultConfig().Forecast.Exclude,
		},
		HTTP: HTTPConfig{
			Timeout:   5 * time.Second,
			UserAgent: "fcst-test/1.0",
		},
		Search: SearchConfig{
			MinQueryLength: 2,
			MaxResults:     4,
		},
		Database: DatabaseConfig{
			Path:    ":memory:",
			Timeout: 1 * time.Second,
		},
		UI:   defaultConfig().UI,
		Map:  defaultConfig().Map,
		Keys: defaultConfig().Keys,
		Log:  LogConfig{Level: "off"},
	}
}
