package maplink

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed maps.toml
var mapsTOML []byte

const (
	DefaultProvider = "openstreetmap"
	DefaultZoom     = 11
)

// Provider is a map site addressed by a URL template.
type Provider struct {
	Description string `toml:"description"`
	URL         string `toml:"url"`
}

// Link expands the template for a coordinate.
func (p Provider) Link(lat, lon float64, label string, zoom int) string {
	if zoom <= 0 {
		zoom = DefaultZoom
	}
	return strings.NewReplacer(
		"{lat}", strconv.FormatFloat(lat, 'f', 4, 64),
		"{lon}", strconv.FormatFloat(lon, 'f', 4, 64),
		"{zoom}", strconv.Itoa(zoom),
		"{label}", url.QueryEscape(label),
	).Replace(p.URL)
}

// OpenerSet lists the commands tried, in order, to open a URL on one OS.
// Extra leading arguments per command live under args_<command>.
type OpenerSet struct {
	Commands []string            `toml:"commands"`
	Args     map[string][]string `toml:"-"`
}

type mapsFile struct {
	Providers map[string]Provider       `toml:"providers"`
	Openers   map[string]map[string]any `toml:"openers"`
}

// Registry holds the known providers and per-OS openers.
type Registry struct {
	providers map[string]Provider
	openers   map[string]OpenerSet
}

// DefaultUserPaths are checked for maps.toml overrides.
func DefaultUserPaths() []string {
	paths := []string{"./maps.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append([]string{filepath.Join(home, ".config", "fcst", "maps.toml")}, paths...)
	}
	return paths
}

// NewRegistry loads the embedded definitions, then merges userPaths over them.
func NewRegistry(userPaths ...string) (*Registry, error) {
	r := &Registry{
		providers: make(map[string]Provider),
		openers:   make(map[string]OpenerSet),
	}
	if err := r.merge(mapsTOML); err != nil {
		return nil, fmt.Errorf("parsing maps.toml: %w", err)
	}

	for _, path := range userPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		// Broken user files are skipped; the built-ins still work.
		_ = r.merge(data)
	}
	return r, nil
}

func (r *Registry) merge(data []byte) error {
	var f mapsFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return err
	}
	for name, p := range f.Providers {
		if p.URL == "" {
			continue
		}
		r.providers[strings.ToLower(name)] = p
	}
	for goos, raw := range f.Openers {
		r.openers[goos] = decodeOpeners(raw)
	}
	return nil
}

func decodeOpeners(raw map[string]any) OpenerSet {
	set := OpenerSet{Args: make(map[string][]string)}
	set.Commands = toStrings(raw["commands"])
	for k, v := range raw {
		if name, ok := strings.CutPrefix(k, "args_"); ok {
			set.Args[name] = toStrings(v)
		}
	}
	return set
}

func toStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (r *Registry) Provider(name string) (Provider, bool) {
	p, ok := r.providers[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Resolve returns the named provider or OpenStreetMap.
func (r *Registry) Resolve(name string) Provider {
	if p, ok := r.Provider(name); ok {
		return p
	}
	return r.providers[DefaultProvider]
}

// Openers returns the opener commands for goos.
func (r *Registry) Openers(goos string) OpenerSet {
	return r.openers[goos]
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
