package maplink

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoOpener is returned when no command can open URLs on this system.
var ErrNoOpener = errors.New("no application found to open URLs")

type Launcher struct {
	provider Provider
	command  string
	args     []string
	zoom     int

	// start launches the prepared command; swapped out in tests.
	start func(*exec.Cmd) error
}

type Options struct {
	// Provider names the map site; unknown names fall back to OpenStreetMap.
	Provider string
	// Opener overrides the platform opener, e.g. "firefox".
	Opener string
	Zoom   int
}

func NewLauncher(reg *Registry, opts Options) *Launcher {
	l := &Launcher{
		provider: reg.Resolve(opts.Provider),
		zoom:     opts.Zoom,
		start:    startDetached,
	}

	// A blank override falls through to the platform openers.
	if fields := strings.Fields(opts.Opener); len(fields) > 0 {
		l.command, l.args = fields[0], fields[1:]
		return l
	}

	set := reg.Openers(runtime.GOOS)
	if cmd := findCommand(set.Commands...); cmd != "" {
		l.command = cmd
		l.args = set.Args[cmd]
	}
	return l
}

// Link returns the provider URL for a location.
func (l *Launcher) Link(lat, lon float64, label string) string {
	return l.provider.Link(lat, lon, label, l.zoom)
}

// Open shows the location in the map provider and returns the URL opened.
func (l *Launcher) Open(lat, lon float64, label string) (string, error) {
	link := l.Link(lat, lon, label)
	if l.command == "" {
		return link, ErrNoOpener
	}

	args := append(append([]string{}, l.args...), link)
	if err := l.start(exec.Command(l.command, args...)); err != nil {
		return link, fmt.Errorf("failed to start %s: %w", l.command, err)
	}
	return link, nil
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
