package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/fcst/internal/config"
)

// keyMap holds the program-wide and dialog bindings built from config.
type keyMap struct {
	Toggle     key.Binding
	Submit     key.Binding
	ToggleUnit key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding
	Back       key.Binding
	Next       key.Binding
	Prev       key.Binding
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	OpenMap    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Submit, k.ToggleUnit, k.Next, k.Back}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Submit, k.ToggleUnit},
		{k.Next, k.Prev, k.Up, k.Down, k.Select},
		{k.Back, k.Quit, k.ForceQuit},
	}
}

// closedHelp is shown on the dashboard while the dialog is hidden.
type closedHelp struct{ keys keyMap }

func (c closedHelp) ShortHelp() []key.Binding {
	return []key.Binding{c.keys.Toggle, c.keys.OpenMap, c.keys.Quit}
}

func (c closedHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{c.ShortHelp()}
}

func newKeyMap(cfg *config.Config) keyMap {
	mod := strings.ToLower(strings.TrimSpace(cfg.Keys.Modifier))
	if mod == "" {
		mod = "ctrl"
	}
	b := cfg.Keys.Bindings
	label := displayModifier(mod)

	toggleKeys := uniq(mod+"+"+b.ToggleSearch, "alt+"+b.ToggleSearch)

	openMap := b.OpenMap
	if openMap == "" {
		openMap = "o"
	}

	submitKeys := []string{mod + "+" + b.Submit, "alt+" + b.Submit}
	if b.Submit == "enter" && mod == "ctrl" {
		// Terminals deliver Ctrl+Enter as a line feed.
		submitKeys = append(submitKeys, "ctrl+j")
	}

	return keyMap{
		Toggle: key.NewBinding(
			key.WithKeys(toggleKeys...),
			key.WithHelp(label+" "+strings.ToUpper(b.ToggleSearch), "search"),
		),
		Submit: key.NewBinding(
			key.WithKeys(uniq(submitKeys...)...),
			key.WithHelp(label+" ↵", "submit"),
		),
		ToggleUnit: key.NewBinding(
			key.WithKeys(uniq(mod+"+"+b.ToggleUnit, "alt+"+b.ToggleUnit)...),
			key.WithHelp(label+" "+strings.ToUpper(b.ToggleUnit), "°C/°F"),
		),
		Quit: key.NewBinding(
			key.WithKeys(b.Quit, "ctrl+c"),
			key.WithHelp(b.Quit, "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys(b.Back),
			key.WithHelp(b.Back, "close"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "select"),
		),
		OpenMap: key.NewBinding(
			key.WithKeys(openMap),
			key.WithHelp(openMap, "map"),
		),
	}
}

func displayModifier(mod string) string {
	switch mod {
	case "ctrl":
		return "Ctrl"
	case "alt":
		return "Alt"
	default:
		if mod == "" {
			return ""
		}
		return strings.ToUpper(mod[:1]) + mod[1:]
	}
}

func uniq(keys ...string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

type KeyHandler struct {
	app  *App
	keys keyMap
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	return &KeyHandler{
		app:  app,
		keys: newKeyMap(cfg),
	}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Program-wide bindings first; they work whether or not the dialog is open.
	switch {
	case key.Matches(msg, kh.keys.ForceQuit):
		return kh.app, tea.Quit
	case key.Matches(msg, kh.keys.Toggle):
		return kh.app, kh.app.toggleDialog()
	case key.Matches(msg, kh.keys.Submit):
		return kh.app, submitSearch
	}

	if !kh.app.open {
		return kh.handleClosedKeys(msg)
	}
	return kh.handleDialogKeys(msg)
}

func (kh *KeyHandler) handleClosedKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, kh.keys.Quit):
		return kh.app, tea.Quit
	case key.Matches(msg, kh.keys.OpenMap):
		return kh.app, kh.app.openMap()
	}
	return kh.app, nil
}

func (kh *KeyHandler) handleDialogKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app

	switch {
	case key.Matches(msg, kh.keys.Back):
		a.closeDialog()
		return a, nil
	case key.Matches(msg, kh.keys.ToggleUnit):
		if a.hasResults() {
			a.toggleUnits()
		}
		return a, nil
	case key.Matches(msg, kh.keys.Next):
		a.moveFocus(1)
		return a, nil
	case key.Matches(msg, kh.keys.Prev):
		a.moveFocus(-1)
		return a, nil
	}

	switch a.focus {
	case FocusInput:
		return kh.handleInputKeys(msg)
	case FocusResults:
		return kh.handleResultsKeys(msg)
	case FocusUnits:
		return kh.handleUnitsKeys(msg)
	case FocusSubmit:
		return kh.handleSubmitKeys(msg)
	default:
		return a, nil
	}
}

func (kh *KeyHandler) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	if key.Matches(msg, kh.keys.Down) || key.Matches(msg, kh.keys.Select) {
		if a.hasResults() {
			a.setFocus(FocusResults)
		}
		return a, nil
	}
	return a, a.updateQuery(msg)
}

func (kh *KeyHandler) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	switch {
	case key.Matches(msg, kh.keys.Select):
		a.selectHighlighted()
		return a, nil
	case key.Matches(msg, kh.keys.Up):
		if a.results.Index() == 0 {
			a.setFocus(FocusInput)
			return a, nil
		}
	case key.Matches(msg, kh.keys.Down):
		if a.results.Index() == len(a.results.Items())-1 {
			a.setFocus(FocusUnits)
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.results, cmd = a.results.Update(msg)
	return a, cmd
}

func (kh *KeyHandler) handleUnitsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	switch {
	case key.Matches(msg, kh.keys.Select), msg.String() == " ", msg.String() == "space", msg.String() == "left", msg.String() == "right":
		a.toggleUnits()
	case key.Matches(msg, kh.keys.Up):
		a.setFocus(FocusResults)
	case key.Matches(msg, kh.keys.Down):
		a.setFocus(FocusSubmit)
	}
	return a, nil
}

func (kh *KeyHandler) handleSubmitKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	switch {
	case key.Matches(msg, kh.keys.Select):
		return a, submitSearch
	case key.Matches(msg, kh.keys.Up):
		a.setFocus(FocusUnits)
	}
	return a, nil
}

// ToggleLabel is the human form of the dialog shortcut, e.g. "Ctrl K".
func (kh *KeyHandler) ToggleLabel() string {
	return kh.keys.Toggle.Help().Key
}

// GetHelpForCurrentView returns the binding list for the help line.
func (kh *KeyHandler) GetHelpForCurrentView() []key.Binding {
	if !kh.app.open {
		help := closedHelp{keys: kh.keys}.ShortHelp()
		if kh.app.maps == nil || !kh.app.shared.Snapshot().Published {
			help = []key.Binding{kh.keys.Toggle, kh.keys.Quit}
		}
		return help
	}
	help := []key.Binding{kh.keys.Submit, kh.keys.Next, kh.keys.Back}
	if kh.app.hasResults() {
		help = append([]key.Binding{kh.keys.Select, kh.keys.ToggleUnit}, help...)
	}
	return help
}
