package maplink

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_BuiltinProviders(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	assert.Equal(t, []string{"apple", "google", "openstreetmap", "windy"}, reg.Names())

	osm, ok := reg.Provider("OpenStreetMap")
	require.True(t, ok, "lookup ignores case")
	assert.Equal(t, "OpenStreetMap", osm.Description)

	assert.Equal(t, osm, reg.Resolve("no-such-map"))
}

func TestRegistry_Openers(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	linux := reg.Openers("linux")
	assert.Equal(t, "xdg-open", linux.Commands[0])
	assert.Equal(t, []string{"open"}, linux.Args["gio"])

	windows := reg.Openers("windows")
	assert.Equal(t, []string{"rundll32"}, windows.Commands)
	assert.Equal(t, []string{"url.dll,FileProtocolHandler"}, windows.Args["rundll32"])

	assert.Empty(t, reg.Openers("plan9").Commands)
}

func TestRegistry_UserOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "maps.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[providers.osmand]
description = "OsmAnd web"
url = "https://osmand.net/map?pin={lat},{lon}#{zoom}/{lat}/{lon}"

[providers.google]
description = "Google (satellite)"
url = "https://www.google.com/maps/@{lat},{lon},{zoom}z/data=!3m1!1e3"

[providers.empty]
description = "no url, ignored"
`), 0o644))

	reg, err := NewRegistry(path, filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)

	assert.Contains(t, reg.Names(), "osmand")
	assert.NotContains(t, reg.Names(), "empty")

	google, ok := reg.Provider("google")
	require.True(t, ok)
	assert.Equal(t, "Google (satellite)", google.Description)
}

func TestRegistry_BrokenUserFileIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maps.toml")
	require.NoError(t, os.WriteFile(path, []byte("[providers\nurl="), 0o644))

	reg, err := NewRegistry(path)
	require.NoError(t, err)
	assert.Len(t, reg.Names(), 4)
}

func TestProvider_Link(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	tests := []struct {
		provider string
		zoom     int
		want     string
	}{
		{"openstreetmap", 0, "https://www.openstreetmap.org/?mlat=48.8566&mlon=2.3522#map=11/48.8566/2.3522"},
		{"openstreetmap", 7, "https://www.openstreetmap.org/?mlat=48.8566&mlon=2.3522#map=7/48.8566/2.3522"},
		{"google", 0, "https://www.google.com/maps/search/?api=1&query=48.8566,2.3522"},
		{"apple", 0, "https://maps.apple.com/?ll=48.8566,2.3522&q=Paris%2C+France&z=11"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			got := reg.Resolve(tt.provider).Link(48.85661, 2.35222, "Paris, France", tt.zoom)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLauncher_OpenUsesConfiguredOpener(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	l := NewLauncher(reg, Options{Provider: "google", Opener: "firefox --new-tab"})
	var started *exec.Cmd
	l.start = func(cmd *exec.Cmd) error {
		started = cmd
		return nil
	}

	link, err := l.Open(-33.8688, 151.2093, "Sydney")
	require.NoError(t, err)
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=-33.8688,151.2093", link)

	require.NotNil(t, started)
	assert.Equal(t, []string{"firefox", "--new-tab", link}, started.Args)
}

func TestNewLauncher_OpenerOverride(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	platform := NewLauncher(reg, Options{})

	tests := []struct {
		name     string
		opener   string
		wantCmd  string
		wantArgs []string
	}{
		{name: "command only", opener: "firefox", wantCmd: "firefox", wantArgs: []string{}},
		{name: "command with args", opener: "  gio  open ", wantCmd: "gio", wantArgs: []string{"open"}},
		{name: "empty uses platform opener", opener: "", wantCmd: platform.command, wantArgs: platform.args},
		{name: "blank uses platform opener", opener: "   ", wantCmd: platform.command, wantArgs: platform.args},
		{name: "tabs use platform opener", opener: "\t \n", wantCmd: platform.command, wantArgs: platform.args},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l *Launcher
			require.NotPanics(t, func() { l = NewLauncher(reg, Options{Opener: tt.opener}) })
			assert.Equal(t, tt.wantCmd, l.command)
			assert.Equal(t, tt.wantArgs, l.args)
		})
	}
}

func TestLauncher_StartFailure(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	l := NewLauncher(reg, Options{Opener: "xdg-open"})
	l.start = func(*exec.Cmd) error { return errors.New("exec format error") }

	_, err = l.Open(1, 2, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start xdg-open")
}

func TestLauncher_NoOpener(t *testing.T) {
	l := &Launcher{provider: Provider{URL: "https://example.com/{lat}/{lon}"}}

	link, err := l.Open(1.5, 2.25, "")
	assert.ErrorIs(t, err, ErrNoOpener)
	assert.Equal(t, "https://example.com/1.5000/2.2500", link)
}

func TestFindCommand(t *testing.T) {
	assert.Equal(t, "", findCommand("definitely-not-a-real-binary-xyz"))
	assert.Equal(t, "", findCommand())
}
