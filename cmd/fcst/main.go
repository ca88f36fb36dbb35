package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/fcst/internal/config"
	"github.com/pders01/fcst/internal/debuglog"
	"github.com/pders01/fcst/internal/forecast"
	"github.com/pders01/fcst/internal/geocode"
	"github.com/pders01/fcst/internal/history"
	"github.com/pders01/fcst/internal/maplink"
	"github.com/pders01/fcst/internal/state"
	"github.com/pders01/fcst/internal/storage"
	"github.com/pders01/fcst/internal/theme"
	"github.com/pders01/fcst/internal/tui"
)

// Version is overridden at build time via -ldflags.
var Version = "dev"

var (
	configPath string
	dbPath     string
	imperial   bool
	quiet      bool
	logLevel   string

	historyLimit  int
	historyClear  bool
	historyDelete string
	rawMarkdown   bool
)

var rootCmd = &cobra.Command{
	Use:           "fcst",
	Short:         "Search a city and read its 7-day forecast in the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runApp,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fcst %s\n", Version)
		fmt.Println("Terminal weather forecasts")
		fmt.Println("github.com/pders01/fcst")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a default config to ~/.config/fcst/config.toml",
	Run: func(cmd *cobra.Command, args []string) {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}
		path := filepath.Join(home, ".config", "fcst", "config.toml")
		if err := config.GenerateDefaultConfig(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated default configuration at: %s\n", path)
	},
}

var forecastCmd = &cobra.Command{
	Use:   "forecast <city>",
	Short: "Print the forecast for the best match of a city query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runForecast,
}

var historyCmd = &cobra.Command{
	Use:   "history [query]",
	Short: "List or search previously forecast locations",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default ~/.config/fcst/config.toml)")
	pf.StringVar(&dbPath, "db", "", "database path (overrides config)")
	pf.BoolVar(&imperial, "imperial", false, "use imperial units")
	pf.StringVar(&logLevel, "log-level", "", "log level: off, error, warn, info, debug")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "skip the startup banner")

	forecastCmd.Flags().BoolVar(&rawMarkdown, "markdown", false, "print markdown instead of rendering it")

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of entries")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "forget every recorded location")
	historyCmd.Flags().StringVar(&historyDelete, "delete", "", "forget the location with this ID")

	configCmd.AddCommand(configGenCmd)
	rootCmd.AddCommand(versionCmd, configCmd, forecastCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config, applies flag overrides and the theme, and
// starts logging. The returned func flushes the log.
func loadConfig() (*config.Config, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.Database.Path = expandTildePath(dbPath)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.Path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}

	registry, err := theme.NewRegistry(theme.DefaultUserPaths()...)
	if err != nil {
		debuglog.Warnf("loading themes: %v", err)
	} else {
		tui.ApplyTheme(registry.Resolve(cfg.UI.Theme))
	}

	return cfg, func() { _ = debuglog.Close() }, nil
}

func expandTildePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// unitPreference resolves the starting unit system: --imperial wins, then
// the persisted choice, then the config default.
func unitPreference(cfg *config.Config, store *storage.Store) bool {
	if imperial {
		return false
	}
	metric, ok, err := store.UnitMetric()
	if err != nil {
		debuglog.Warnf("reading unit preference: %v", err)
		return cfg.UI.Metric
	}
	if ok {
		return metric
	}
	return cfg.UI.Metric
}

func newGeocoder(cfg *config.Config) *geocode.Client {
	return geocode.NewClient(geocode.Options{
		BaseURL:   cfg.Geocoding.BaseURL,
		APIKey:    cfg.Geocoding.APIKey,
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTP.Timeout,
		Limit:     cfg.Search.MaxResults,
	})
}

func newForecaster(cfg *config.Config) *forecast.Client {
	return forecast.NewClient(forecast.Options{
		BaseURL:   cfg.Forecast.BaseURL,
		APIKey:    cfg.Forecast.APIKey,
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTP.Timeout,
		Exclude:   cfg.Forecast.Exclude,
	})
}

func newMapLauncher(cfg *config.Config) *maplink.Launcher {
	reg, err := maplink.NewRegistry(maplink.DefaultUserPaths()...)
	if err != nil {
		debuglog.Warnf("loading map providers: %v", err)
		return nil
	}
	return maplink.NewLauncher(reg, maplink.Options{
		Provider: cfg.Map.Provider,
		Opener:   cfg.Map.Opener,
		Zoom:     cfg.Map.Zoom,
	})
}

func runApp(cmd *cobra.Command, args []string) error {
	cfg, closeLog, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLog()

	if cfg.Geocoding.APIKey == "" || cfg.Forecast.APIKey == "" {
		debuglog.Warnf("API key missing; set FCST_GEOCODING_API_KEY and FCST_FORECAST_API_KEY")
	}

	store, err := storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	shared := state.New(unitPreference(cfg, store))
	persisted := shared.Metric()
	unsubscribe := shared.Subscribe(func(snap state.Snapshot) {
		if snap.Metric == persisted {
			return
		}
		persisted = snap.Metric
		if err := store.SetUnitMetric(snap.Metric); err != nil {
			debuglog.Warnf("saving unit preference: %v", err)
		}
	})
	defer unsubscribe()

	var opts []tui.Option
	idx, err := history.Open(store, cfg.Database.HistoryIndex)
	if err != nil {
		debuglog.Warnf("history disabled: %v", err)
	} else {
		defer idx.Close()
		opts = append(opts, tui.WithRecorder(idx))
	}

	if maps := newMapLauncher(cfg); maps != nil {
		opts = append(opts, tui.WithMapOpener(maps))
	}

	if !quiet {
		tui.ShowBanner(Version)
	}

	app := tui.NewApp(cfg, shared, newGeocoder(cfg), newForecaster(cfg), opts...)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running app: %w", err)
	}
	return nil
}

func runForecast(cmd *cobra.Command, args []string) error {
	cfg, closeLog, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	query := strings.Join(args, " ")
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	results, err := newGeocoder(cfg).Autocomplete(ctx, query)
	if err != nil {
		return fmt.Errorf("searching %q: %w", query, err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no location found for %q", query)
	}
	place := results[0]

	shared := state.New(unitPreference(cfg, store))
	units := forecast.UnitsFor(shared.Metric())

	resp, err := newForecaster(cfg).Fetch(ctx, place.Lat, place.Lon, units)
	if err != nil {
		return err
	}
	current, predictions, err := forecast.Build(resp, forecast.Place{
		Label: geocode.FormatResult(place),
		Lat:   place.Lat,
		Lon:   place.Lon,
	})
	if err != nil {
		return err
	}
	shared.Publish(current, predictions)

	if idx, err := history.Open(store, cfg.Database.HistoryIndex); err != nil {
		debuglog.Warnf("history disabled: %v", err)
	} else {
		if _, err := idx.Record(place); err != nil {
			debuglog.Warnf("recording %s: %v", place, err)
		}
		idx.Close()
	}

	md := tui.DashboardMarkdown(shared.Snapshot(), units)
	out := md
	if !rawMarkdown {
		rendered, err := tui.RenderMarkdown(md, tui.GlamourStyle, 80)
		if err != nil {
			debuglog.Warnf("rendering forecast: %v", err)
		} else {
			out = rendered
		}
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	if maps := newMapLauncher(cfg); maps != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "\nMap: %s\n", maps.Link(current.Lat, current.Lon, current.Location))
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, closeLog, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	idx, err := history.Open(store, cfg.Database.HistoryIndex)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer idx.Close()

	out := cmd.OutOrStdout()

	if historyClear {
		if err := idx.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(out, "History cleared")
		return nil
	}

	if historyDelete != "" {
		if err := idx.Forget(historyDelete); err != nil {
			return err
		}
		fmt.Fprintf(out, "Forgot %s\n", historyDelete)
		return nil
	}

	var locations []*storage.Location
	if len(args) == 1 {
		hits, err := idx.Search(args[0], historyLimit)
		if err != nil {
			return err
		}
		for _, hit := range hits {
			locations = append(locations, hit.Location)
		}
	} else {
		locations, err = idx.Recent(historyLimit)
		if err != nil {
			return err
		}
	}

	if len(locations) == 0 {
		fmt.Fprintln(out, "No locations recorded")
		return nil
	}
	for _, loc := range locations {
		fmt.Fprintf(out, "%-20s %-40s %dx  %s\n",
			loc.ID, loc.Label, loc.Count, loc.LastUsed.Format("2006-01-02 15:04"))
	}

	total, err := idx.DocCount()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d of %d locations\n", len(locations), total)
	return nil
}
