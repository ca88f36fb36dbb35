// Package theme loads the color themes used by the terminal UI.
package theme

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed themes.toml
var themesTOML []byte

const DefaultName = "dusk"

// Palette holds hex colors for each UI role.
type Palette struct {
	Primary    string `toml:"primary"`
	Secondary  string `toml:"secondary"`
	Accent     string `toml:"accent"`
	Background string `toml:"background"`
	Surface    string `toml:"surface"`
	Text       string `toml:"text"`
	Muted      string `toml:"muted"`
	Highlight  string `toml:"highlight"`
	Error      string `toml:"error"`
	Success    string `toml:"success"`
}

type Theme struct {
	Name        string `toml:"-"`
	Description string `toml:"description"`
	// Glamour is the glamour standard style used for markdown output.
	Glamour string  `toml:"glamour"`
	Palette Palette `toml:"palette"`
}

type themesFile struct {
	Themes map[string]Theme `toml:"themes"`
}

type Registry struct {
	themes map[string]Theme
}

// DefaultUserPaths lists where user theme files are looked up.
func DefaultUserPaths() []string {
	return []string{
		"~/.config/fcst/themes.toml",
		"./themes.toml",
	}
}

// NewRegistry loads the embedded themes, then merges any user theme files
// found at userPaths. User entries replace built-ins of the same name;
// palette colors a user entry leaves empty keep the built-in value.
func NewRegistry(userPaths ...string) (*Registry, error) {
	var file themesFile
	if err := toml.Unmarshal(themesTOML, &file); err != nil {
		return nil, fmt.Errorf("parsing themes.toml: %w", err)
	}

	r := &Registry{themes: make(map[string]Theme, len(file.Themes))}
	for name, t := range file.Themes {
		t.Name = name
		r.themes[name] = t
	}

	for _, path := range userPaths {
		r.loadUserFile(path)
	}
	return r, nil
}

func (r *Registry) loadUserFile(path string) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var file themesFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return
	}
	for name, t := range file.Themes {
		t.Name = name
		if base, ok := r.themes[name]; ok {
			t = merge(base, t)
		}
		r.themes[name] = t
	}
}

func merge(base, over Theme) Theme {
	out := base
	if over.Description != "" {
		out.Description = over.Description
	}
	if over.Glamour != "" {
		out.Glamour = over.Glamour
	}
	pick := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	pick(&out.Palette.Primary, over.Palette.Primary)
	pick(&out.Palette.Secondary, over.Palette.Secondary)
	pick(&out.Palette.Accent, over.Palette.Accent)
	pick(&out.Palette.Background, over.Palette.Background)
	pick(&out.Palette.Surface, over.Palette.Surface)
	pick(&out.Palette.Text, over.Palette.Text)
	pick(&out.Palette.Muted, over.Palette.Muted)
	pick(&out.Palette.Highlight, over.Palette.Highlight)
	pick(&out.Palette.Error, over.Palette.Error)
	pick(&out.Palette.Success, over.Palette.Success)
	return out
}

// Get returns the named theme.
func (r *Registry) Get(name string) (Theme, bool) {
	t, ok := r.themes[name]
	return t, ok
}

// Resolve returns the named theme, falling back to the default one.
func (r *Registry) Resolve(name string) Theme {
	if t, ok := r.themes[name]; ok {
		return t
	}
	return r.themes[DefaultName]
}

// Names lists available themes alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.themes))
	for name := range r.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
