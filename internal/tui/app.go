package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/fcst/internal/config"
	"github.com/pders01/fcst/internal/debuglog"
	"github.com/pders01/fcst/internal/forecast"
	"github.com/pders01/fcst/internal/geocode"
	"github.com/pders01/fcst/internal/maplink"
	"github.com/pders01/fcst/internal/state"
	"github.com/pders01/fcst/internal/validation"
)

const (
	dialogMinWidth = 40
	dialogMaxWidth = 72
)

type App struct {
	config     *config.Config
	shared     *state.Store
	geocoder   Geocoder
	forecaster Forecaster
	recorder   Recorder
	maps       MapOpener
	keyHandler *KeyHandler

	query   textinput.Model
	spinner spinner.Model
	results list.Model
	help    help.Model

	candidates []geocode.Result
	selected   geocode.Result
	loading    bool
	open       bool
	focus      Focus

	// lookupSeq identifies the newest lookup; older responses are dropped.
	lookupSeq   int
	debounce    time.Duration
	minQueryLen int

	// shownUnits are the units the published forecast was fetched in.
	shownUnits forecast.Units
	fetching   string

	status     string
	statusKind StatusKind

	width           int
	height          int
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

// Option configures optional App collaborators.
type Option func(*App)

// WithRecorder records every location a forecast is fetched for.
func WithRecorder(r Recorder) Option {
	return func(a *App) { a.recorder = r }
}

// WithMapOpener enables opening the published location in a map.
func WithMapOpener(m MapOpener) Option {
	return func(a *App) { a.maps = m }
}

func NewApp(cfg *config.Config, shared *state.Store, geocoder Geocoder, forecaster Forecaster, opts ...Option) *App {
	ti := textinput.New()
	ti.Placeholder = "Search for your city ..."
	ti.CharLimit = validation.MaxQueryLength
	ti.Prompt = "⌕ "

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(AccentColor)

	app := &App{
		config:      cfg,
		shared:      shared,
		geocoder:    geocoder,
		forecaster:  forecaster,
		query:       ti,
		spinner:     sp,
		help:        help.New(),
		debounce:    cfg.Search.Debounce,
		minQueryLen: cfg.Search.MinQueryLength,
		shownUnits:  forecast.UnitsFor(shared.Metric()),
	}

	results := list.New([]list.Item{}, resultDelegate{app: app}, dialogMinWidth, 0)
	results.SetShowTitle(false)
	results.SetShowStatusBar(false)
	results.SetShowHelp(false)
	results.SetShowPagination(false)
	results.SetFilteringEnabled(false)
	results.DisableQuitKeybindings()
	app.results = results

	for _, opt := range opts {
		opt(app)
	}

	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

func (a *App) Init() tea.Cmd {
	return tea.EnterAltScreen
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.results.SetWidth(a.dialogWidth() - 6)
		a.query.Width = a.dialogWidth() - 12

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case spinner.TickMsg:
		if !a.loading && a.fetching == "" {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case lookupDebounceMsg:
		if msg.seq != a.lookupSeq {
			return a, nil
		}
		a.startLookup()
		return a, tea.Batch(a.spinner.Tick, a.lookup(msg.seq, msg.query))

	case lookupResultMsg:
		return a, a.handleLookupResult(msg)

	case SubmitSearchMsg:
		return a, a.submit()

	case forecastResolvedMsg:
		return a, a.handleForecast(msg)

	case mapOpenedMsg:
		if msg.err != nil {
			debuglog.Warnf("opening map for %s: %v", msg.label, msg.err)
			kind := StatusError
			if errors.Is(msg.err, maplink.ErrNoOpener) {
				kind = StatusWarn
			}
			a.setStatus(MsgMapUnavailable(msg.link), kind)
			return a, nil
		}
		a.setStatus(MsgMapOpened(msg.label), StatusInfo)
	}

	return a, nil
}

// updateQuery forwards a key to the text input and reacts to a changed query.
func (a *App) updateQuery(msg tea.KeyMsg) tea.Cmd {
	prev := a.query.Value()
	var cmd tea.Cmd
	a.query, cmd = a.query.Update(msg)

	value := a.query.Value()
	if clean := validation.SanitizeQuery(value); clean != value {
		a.query.SetValue(clean)
		value = clean
	}
	if value == prev {
		return cmd
	}
	return tea.Batch(cmd, a.queryChanged(value))
}

// queryChanged starts a lookup for q, or clears the results when q is too short.
func (a *App) queryChanged(q string) tea.Cmd {
	a.lookupSeq++
	seq := a.lookupSeq

	if utf8.RuneCountInString(q) <= a.minQueryLen {
		a.loading = false
		a.clearResults()
		return nil
	}

	if a.debounce > 0 {
		return tea.Tick(a.debounce, func(time.Time) tea.Msg {
			return lookupDebounceMsg{seq: seq, query: q}
		})
	}

	a.startLookup()
	return tea.Batch(a.spinner.Tick, a.lookup(seq, q))
}

func (a *App) startLookup() {
	a.loading = true
	a.setStatus(MsgSearching, StatusInfo)
}

func (a *App) handleLookupResult(msg lookupResultMsg) tea.Cmd {
	if msg.seq != a.lookupSeq {
		debuglog.WithFields(map[string]interface{}{"query": msg.query, "seq": msg.seq}).
			Debugf("dropping stale lookup")
		return nil
	}
	a.loading = false

	if msg.err != nil {
		debuglog.WithFields(map[string]interface{}{"query": msg.query}).
			Errorf("location lookup failed: %v", msg.err)
		if a.hasResults() {
			a.setStatus(MsgResultsCount(len(a.candidates)), StatusInfo)
		} else {
			a.setStatus("", StatusInfo)
		}
		return nil
	}

	a.setResults(msg.results)
	if len(msg.results) == 0 {
		a.setStatus(MsgNoResults, StatusWarn)
	} else {
		a.setStatus(MsgResultsCount(len(msg.results)), StatusInfo)
	}
	return nil
}

// submit handles SubmitSearch: it resets the dialog and, when a city is
// selected, dispatches one forecast fetch for it.
func (a *App) submit() tea.Cmd {
	selected := a.selected

	a.query.Reset()
	a.open = false
	a.query.Blur()
	a.lookupSeq++
	a.loading = false
	a.clearResults()
	a.focus = FocusInput

	if selected.IsZero() {
		debuglog.Debugf("submit without a selected location")
		a.setStatus(MsgNoSelection, StatusWarn)
		return nil
	}

	units := forecast.UnitsFor(a.shared.Metric())
	cmd := a.resolve(selected, units)
	a.selected = geocode.Result{}

	a.fetching = geocode.FormatResult(selected)
	a.setStatus(MsgLoadingForecast(a.fetching), StatusInfo)
	return tea.Batch(a.spinner.Tick, cmd)
}

func (a *App) handleForecast(msg forecastResolvedMsg) tea.Cmd {
	if a.fetching == msg.place.Label {
		a.fetching = ""
	}

	if msg.err != nil {
		debuglog.WithFields(map[string]interface{}{
			"location": msg.place.Label,
			"units":    string(msg.units),
		}).Errorf("forecast fetch failed: %v", msg.err)
		a.setStatus("", StatusInfo)
		return nil
	}

	a.shared.Publish(msg.current, msg.predictions)
	a.shownUnits = msg.units
	a.setStatus(MsgForecastUpdated(msg.place.Label), StatusSuccess)
	debuglog.Infof("published forecast for %s (%d following days)", msg.place.Label, len(msg.predictions))

	return a.recordLocation(msg.result)
}

func (a *App) toggleDialog() tea.Cmd {
	if a.open {
		a.closeDialog()
		return nil
	}
	a.open = true
	a.setFocus(FocusInput)
	return textinput.Blink
}

func (a *App) closeDialog() {
	a.open = false
	a.query.Blur()
}

func (a *App) toggleUnits() {
	metric := a.shared.ToggleMetric()
	a.setStatus(MsgUnits(metric), StatusInfo)
}

func (a *App) hasResults() bool {
	return len(a.candidates) > 0
}

func (a *App) setResults(results []geocode.Result) {
	a.candidates = results
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = resultItem{result: r}
	}
	a.results.SetItems(items)
	a.results.SetHeight(len(items))
	a.results.Select(0)
}

func (a *App) clearResults() {
	a.candidates = nil
	a.results.SetItems([]list.Item{})
	a.results.SetHeight(0)
	if a.focus != FocusInput {
		a.setFocus(FocusInput)
	}
}

func (a *App) selectHighlighted() {
	if item, ok := a.results.SelectedItem().(resultItem); ok {
		a.selected = item.result
		a.setStatus("Selected "+geocode.FormatResult(item.result), StatusInfo)
	}
}

func (a *App) setFocus(f Focus) {
	a.focus = f
	if f == FocusInput {
		a.query.Focus()
	} else {
		a.query.Blur()
	}
}

// moveFocus cycles focus; everything but the input is hidden without results.
func (a *App) moveFocus(delta int) {
	if !a.hasResults() {
		a.setFocus(FocusInput)
		return
	}
	order := []Focus{FocusInput, FocusResults, FocusUnits, FocusSubmit}
	idx := 0
	for i, f := range order {
		if f == a.focus {
			idx = i
		}
	}
	idx = (idx + delta + len(order)) % len(order)
	a.setFocus(order[idx])
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
}

func (a *App) dialogWidth() int {
	w := a.width * 2 / 3
	if w > dialogMaxWidth {
		w = dialogMaxWidth
	}
	if w < dialogMinWidth {
		w = dialogMinWidth
	}
	if a.width > 0 && w > a.width {
		w = a.width
	}
	return w
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > 100 {
		wordWrapWidth = 100
	}
	if wordWrapWidth < 40 {
		wordWrapWidth = 40
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := newRenderer(GlamourStyle, wordWrapWidth)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) View() string {
	contentHeight := a.height - 3
	if contentHeight < 0 {
		contentHeight = 0
	}

	var content string
	if a.open {
		content = renderCentered(a.width, contentHeight, a.renderDialog())
	} else {
		content = a.renderDashboard(contentHeight)
	}

	separatorWidth := a.width - 2
	if separatorWidth < 0 {
		separatorWidth = 0
	}
	separator := SeparatorStyle.Render("─" + strings.Repeat("─", separatorWidth))

	return lipgloss.JoinVertical(lipgloss.Top, a.renderTrigger(), content, separator, a.renderStatusBar())
}

// renderTrigger is the one-line bar that opens the dialog.
func (a *App) renderTrigger() string {
	label := "Search"
	if a.open {
		label = "Close"
	}
	trigger := TitleStyle.Render(label + "   " + a.keyHandler.ToggleLabel())

	snap := a.shared.Snapshot()
	if !snap.Published {
		return trigger
	}
	location := truncateMiddle(snap.Current.Location, a.width-lipgloss.Width(trigger)-4)
	return lipgloss.JoinHorizontal(lipgloss.Top, trigger, "  ", ModalHighlightStyle.Render(location))
}

func (a *App) renderDashboard(height int) string {
	snap := a.shared.Snapshot()
	if !snap.Published {
		return renderCentered(a.width, height, GetWelcomeMessage(a.keyHandler.ToggleLabel()))
	}

	md := DashboardMarkdown(snap, a.shownUnits)
	r, err := a.getRenderer()
	if err != nil {
		debuglog.Errorf("creating markdown renderer: %v", err)
		return ContentWrapper(a.width, height).Render(md)
	}
	out, err := r.Render(md)
	if err != nil {
		debuglog.Errorf("rendering dashboard: %v", err)
		return ContentWrapper(a.width, height).Render(md)
	}
	return ContentWrapper(a.width, height).Render(strings.TrimRight(out, "\n"))
}

func (a *App) renderDialog() string {
	width := a.dialogWidth() - 6

	title := renderHeader("› search", "City, district or address", width)

	input := renderInputFrame(a.query.View(), a.focus == FocusInput, width-4)
	if a.loading {
		input = lipgloss.JoinHorizontal(lipgloss.Center, input, " ", a.spinner.View())
	}

	rows := []string{title, "", input}

	if a.hasResults() {
		units := a.renderUnitToggle()
		submit := renderButton("Submit", a.focus == FocusSubmit)
		rows = append(rows, "", a.results.View(), "", units, "", submit)
	}

	rows = append(rows, "", a.help.ShortHelpView(a.keyHandler.GetHelpForCurrentView()))

	return ModalStyle.Width(width + 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a *App) renderUnitToggle() string {
	metric := a.shared.Metric()
	option := func(label string, on bool) string {
		if on {
			return ModalHighlightStyle.Render("● " + label)
		}
		return renderMuted("○ " + label)
	}
	toggle := option("°C", metric) + "  " + option("°F", !metric)
	if a.focus == FocusUnits {
		return SelectedItemStyle.Render(" units ") + " " + toggle
	}
	return ModalTextStyle.Render(" units ") + " " + toggle
}

func (a *App) renderStatusBar() string {
	var left string
	switch {
	case a.fetching != "":
		left = a.spinner.View() + " " + StatusStyle(a.statusKind).Render(a.status)
	case a.status != "":
		left = StatusStyle(a.statusKind).Render(a.status)
	}

	helpView := a.help.ShortHelpView(a.keyHandler.GetHelpForCurrentView())
	if a.open {
		helpView = renderMuted(fmt.Sprintf("%s • %s", CompactLogo, strings.ToLower(string(forecast.UnitsFor(a.shared.Metric())))))
	}

	line := helpView
	if left != "" {
		line = left + "  " + helpView
	}
	return StatusBarStyle.Width(a.width).MaxHeight(1).Render(line)
}

// resultItem is one location candidate in the dialog list.
type resultItem struct {
	result geocode.Result
}

func (i resultItem) FilterValue() string { return geocode.FormatResult(i.result) }

// resultDelegate renders candidates on one line with a check mark on the
// selected one.
type resultDelegate struct {
	app *App
}

func (d resultDelegate) Height() int                             { return 1 }
func (d resultDelegate) Spacing() int                            { return 0 }
func (d resultDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d resultDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ri, ok := item.(resultItem)
	if !ok {
		return
	}

	mark := "  "
	if d.app.selected == ri.result && !ri.result.IsZero() {
		mark = CheckedItemStyle.Render("✓ ")
	}

	label := truncateEnd(geocode.FormatResult(ri.result), m.Width()-4)
	if index == m.Index() && d.app.focus == FocusResults {
		label = SelectedItemStyle.Render(label)
	} else {
		label = ModalTextStyle.Render(label)
	}
	fmt.Fprint(w, mark+label)
}
