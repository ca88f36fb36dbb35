package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pders01/fcst/internal/validation"
)

type Config struct {
	Geocoding GeocodingConfig `mapstructure:"geocoding"`
	Forecast  ForecastConfig  `mapstructure:"forecast"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Search    SearchConfig    `mapstructure:"search"`
	Database  DatabaseConfig  `mapstructure:"database"`
	UI        UIConfig        `mapstructure:"ui"`
	Map       MapConfig       `mapstructure:"map"`
	Keys      KeyConfig       `mapstructure:"keys"`
	Log       LogConfig       `mapstructure:"log"`
}

type GeocodingConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type ForecastConfig struct {
	BaseURL string   `mapstructure:"base_url"`
	APIKey  string   `mapstructure:"api_key"`
	Exclude []string `mapstructure:"exclude"`
}

type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

type SearchConfig struct {
	// MinQueryLength is the length a query must exceed before a lookup runs.
	MinQueryLength int           `mapstructure:"min_query_length"`
	MaxResults     int           `mapstructure:"max_results"`
	Debounce       time.Duration `mapstructure:"debounce"`
}

type DatabaseConfig struct {
	Path         string        `mapstructure:"path"`
	Timeout      time.Duration `mapstructure:"timeout"`
	HistoryIndex string        `mapstructure:"history_index"`
}

type UIConfig struct {
	Theme  string `mapstructure:"theme"`
	Metric bool   `mapstructure:"metric"`
}

// MapConfig picks where the "open map" key sends the current location.
type MapConfig struct {
	Provider string `mapstructure:"provider"`
	// Opener overrides the platform URL opener (open, xdg-open, ...).
	Opener string `mapstructure:"opener"`
	Zoom   int    `mapstructure:"zoom"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit         string `mapstructure:"quit"`
	ToggleSearch string `mapstructure:"toggle_search"`
	Submit       string `mapstructure:"submit"`
	ToggleUnit   string `mapstructure:"toggle_unit"`
	Back         string `mapstructure:"back"`
	OpenMap      string `mapstructure:"open_map"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".fcst.db")
	historyIndexPath := filepath.Join(homeDir, ".fcst", "history.bleve")

	return &Config{
		Geocoding: GeocodingConfig{
			BaseURL: "https://api.geoapify.com",
		},
		Forecast: ForecastConfig{
			BaseURL: "https://api.openweathermap.org",
			Exclude: []string{"current", "minutely", "hourly", "alerts"},
		},
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "fcst/1.0 (https://github.com/pders01/fcst)",
		},
		Search: SearchConfig{
			MinQueryLength: 2,
			MaxResults:     4,
			Debounce:       0,
		},
		Database: DatabaseConfig{
			Path:         dbPath,
			Timeout:      1 * time.Second,
			HistoryIndex: historyIndexPath,
		},
		UI: UIConfig{
			Theme:  "dusk",
			Metric: true,
		},
		Map: MapConfig{
			Provider: "openstreetmap",
			Zoom:     11,
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:         "q",
				ToggleSearch: "k",
				Submit:       "enter",
				ToggleUnit:   "u",
				Back:         "esc",
				OpenMap:      "o",
			},
		},
		Log: LogConfig{
			Level: "off",
		},
	}
}

// Load reads configuration from configPath (or the default locations),
// layering a .env file and FCST_* environment variables on top.
func Load(configPath string) (*Config, error) {
	// .env is optional; a missing file is the common case.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()

	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "fcst")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("FCST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	return &config, nil
}

// setDefaults registers every leaf key so FCST_* overrides of nested keys
// (FCST_GEOCODING_API_KEY and friends) resolve through AutomaticEnv.
func setDefaults(v *viper.Viper, cfg *Config) {
	for key, value := range toMap(cfg) {
		for leaf, leafValue := range value {
			v.SetDefault(key+"."+leaf, leafValue)
		}
	}
}

// toMap flattens cfg into TOML-friendly sections; durations become strings.
func toMap(cfg *Config) map[string]map[string]interface{} {
	return map[string]map[string]interface{}{
		"geocoding": {
			"base_url": cfg.Geocoding.BaseURL,
			"api_key":  cfg.Geocoding.APIKey,
		},
		"forecast": {
			"base_url": cfg.Forecast.BaseURL,
			"api_key":  cfg.Forecast.APIKey,
			"exclude":  cfg.Forecast.Exclude,
		},
		"http": {
			"timeout":    cfg.HTTP.Timeout.String(),
			"user_agent": cfg.HTTP.UserAgent,
		},
		"search": {
			"min_query_length": cfg.Search.MinQueryLength,
			"max_results":      cfg.Search.MaxResults,
			"debounce":         cfg.Search.Debounce.String(),
		},
		"database": {
			"path":          cfg.Database.Path,
			"timeout":       cfg.Database.Timeout.String(),
			"history_index": cfg.Database.HistoryIndex,
		},
		"ui": {
			"theme":  cfg.UI.Theme,
			"metric": cfg.UI.Metric,
		},
		"map": {
			"provider": cfg.Map.Provider,
			"opener":   cfg.Map.Opener,
			"zoom":     cfg.Map.Zoom,
		},
		"keys": {
			"modifier":               cfg.Keys.Modifier,
			"bindings.quit":          cfg.Keys.Bindings.Quit,
			"bindings.toggle_search": cfg.Keys.Bindings.ToggleSearch,
			"bindings.submit":        cfg.Keys.Bindings.Submit,
			"bindings.toggle_unit":   cfg.Keys.Bindings.ToggleUnit,
			"bindings.back":          cfg.Keys.Bindings.Back,
			"bindings.open_map":      cfg.Keys.Bindings.OpenMap,
		},
		"log": {
			"level": cfg.Log.Level,
			"path":  cfg.Log.Path,
		},
	}
}

// Validate reports configuration that would make every request fail.
func (c *Config) Validate() error {
	if err := validation.ValidateEndpoint(c.Geocoding.BaseURL); err != nil {
		return fmt.Errorf("geocoding.base_url: %w", err)
	}
	if err := validation.ValidateEndpoint(c.Forecast.BaseURL); err != nil {
		return fmt.Errorf("forecast.base_url: %w", err)
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be positive")
	}
	if c.Search.MinQueryLength < 0 {
		return fmt.Errorf("search.min_query_length must not be negative")
	}
	if c.Search.Debounce < 0 {
		return fmt.Errorf("search.debounce must not be negative")
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 19 {
		return fmt.Errorf("map.zoom must be between 0 and 19")
	}
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Database.HistoryIndex = expandPath(cfg.Database.HistoryIndex)
	cfg.Log.Path = expandPath(cfg.Log.Path)
}

func Save(config *Config, path string) error {
	v := viper.New()

	for key, value := range toMap(config) {
		for leaf, leafValue := range value {
			v.Set(key+"."+leaf, leafValue)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
