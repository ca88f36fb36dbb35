package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		outC <- buf.String()
	}()

	fn()

	w.Close()
	os.Stdout = old
	return <-outC
}

func TestVersionCommand(t *testing.T) {
	out := captureStdout(t, func() { versionCmd.Run(nil, nil) })

	// Version is "dev" unless set via ldflags.
	if !strings.Contains(out, "fcst dev") {
		t.Errorf("Expected version output to contain 'fcst dev', got: %s", out)
	}
	if !strings.Contains(out, "Terminal weather forecasts") {
		t.Errorf("Expected version output to contain 'Terminal weather forecasts', got: %s", out)
	}
	if !strings.Contains(out, "github.com/pders01/fcst") {
		t.Errorf("Expected version output to contain 'github.com/pders01/fcst', got: %s", out)
	}
}

func TestGenerateConfigCommand(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, ".config", "fcst", "config.toml")
	t.Setenv("HOME", tmpDir)

	out := captureStdout(t, func() { configGenCmd.Run(nil, nil) })

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		t.Errorf("Config file was not created at %s", configFile)
	}
	if !strings.Contains(out, "Generated default configuration at:") {
		t.Errorf("Expected success message, got: %s", out)
	}

	content, err := os.ReadFile(configFile)
	if err != nil {
		t.Fatalf("Failed to read generated config: %v", err)
	}
	for _, section := range []string{"[geocoding]", "[forecast]", "[search]", "[database]", "[keys]"} {
		if !strings.Contains(string(content), section) {
			t.Errorf("Generated config missing %s section", section)
		}
	}
}

func TestExpandTildePath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"tilde path", "~/test/path", filepath.Join(home, "test/path")},
		{"absolute path", "/absolute/path", "/absolute/path"},
		{"relative path", "relative/path", "relative/path"},
		{"bare tilde", "~", "~"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandTildePath(tt.input); got != tt.expected {
				t.Errorf("expandTildePath(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

const parisOneCall = `{
  "timezone": "Europe/Paris",
  "timezone_offset": 3600,
  "daily": [
    {"dt": 1700000000, "sunrise": 1699943400, "sunset": 1699977600,
     "temp": {"day": 12.5, "min": 8, "max": 14, "night": 9, "eve": 11, "morn": 8.5},
     "feels_like": {"day": 11, "night": 7, "eve": 10, "morn": 7.5},
     "humidity": 81, "wind_speed": 4.2,
     "weather": [{"id": 500, "main": "Rain", "description": "light rain", "icon": "10d"}]},
    {"dt": 1700086400, "sunrise": 1700029900, "sunset": 1700063900,
     "temp": {"day": 10, "min": 6, "max": 11, "night": 7, "eve": 9, "morn": 6},
     "feels_like": {"day": 9, "night": 5, "eve": 8, "morn": 5},
     "humidity": 70, "wind_speed": 3.1,
     "weather": [{"id": 800, "main": "Clear", "description": "clear sky", "icon": "01d"}]}
  ]
}`

// cliEnv points the CLI at fake geocoding and forecast servers and an
// isolated home directory.
type cliEnv struct {
	units   []string
	queries []string
	dir     string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	env := &cliEnv{dir: t.TempDir()}

	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.queries = append(env.queries, r.URL.Query().Get("text"))
		if strings.HasPrefix(r.URL.Query().Get("text"), "Nowhere") {
			fmt.Fprint(w, `{"features":[]}`)
			return
		}
		fmt.Fprint(w, `{"features":[{"properties":{"formatted":"Paris, France","address_line1":"Paris","city":"Paris","country":"France","lat":48.8566,"lon":2.3522,"result_type":"city"}}]}`)
	}))
	t.Cleanup(geo.Close)

	wx := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.units = append(env.units, r.URL.Query().Get("units"))
		fmt.Fprint(w, parisOneCall)
	}))
	t.Cleanup(wx.Close)

	t.Setenv("HOME", env.dir)
	t.Setenv("FCST_GEOCODING_BASE_URL", geo.URL)
	t.Setenv("FCST_GEOCODING_API_KEY", "geo-key")
	t.Setenv("FCST_FORECAST_BASE_URL", wx.URL)
	t.Setenv("FCST_FORECAST_API_KEY", "wx-key")
	t.Setenv("FCST_DATABASE_HISTORY_INDEX", filepath.Join(env.dir, "history.bleve"))

	t.Cleanup(func() {
		configPath, dbPath, logLevel = "", "", ""
		imperial, rawMarkdown, historyClear = false, false, false
		historyDelete = ""
		historyLimit = 10
	})
	return env
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args, "--db", filepath.Join(e.dir, "fcst.db")))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestForecastCommand_PrintsDashboard(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "forecast", "--markdown", "Paris")
	require.NoError(t, err)

	assert.Contains(t, out, "# Paris, France")
	assert.Contains(t, out, "light rain")
	assert.Contains(t, out, "12.5°C")
	assert.Contains(t, out, "## Next days")
	assert.Contains(t, out, "clear sky")
	assert.Contains(t, out, "Map: https://www.openstreetmap.org/?mlat=48.8566&mlon=2.3522")
	assert.Equal(t, []string{"metric"}, env.units)
}

func TestForecastCommand_Imperial(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "forecast", "--markdown", "--imperial", "Paris")
	require.NoError(t, err)

	assert.Equal(t, []string{"imperial"}, env.units)
	assert.Contains(t, out, "°F")
}

func TestForecastCommand_JoinsQueryWords(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "forecast", "--markdown", "Paris", "France")
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris France"}, env.queries)
}

func TestForecastCommand_NoMatch(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "forecast", "Nowhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no location found")
	assert.Empty(t, env.units, "no forecast request without a location")
}

func TestHistoryCommand_ListsRecordedLocations(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No locations recorded")

	_, err = env.run(t, "forecast", "--markdown", "Paris")
	require.NoError(t, err)

	out, err = env.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "Paris, France")
	assert.Contains(t, out, "48.8566,2.3522")
	assert.Contains(t, out, "1x")
	assert.Contains(t, out, "1 of 1 locations")

	out, err = env.run(t, "history", "par")
	require.NoError(t, err)
	assert.Contains(t, out, "Paris, France")

	out, err = env.run(t, "history", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "History cleared")

	historyClear = false
	out, err = env.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No locations recorded")
}

func TestHistoryCommand_DeleteByID(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "forecast", "--markdown", "Paris")
	require.NoError(t, err)

	out, err := env.run(t, "history", "--delete", "48.8566,2.3522")
	require.NoError(t, err)
	assert.Contains(t, out, "Forgot 48.8566,2.3522")

	historyDelete = ""
	out, err = env.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No locations recorded")

	_, err = env.run(t, "history", "--delete", "1.0000,1.0000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
