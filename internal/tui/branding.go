package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/fcst/internal/theme"
)

const AppName = "fcst"

// ASCII art logo lines for fcst - canonical definition
var LogoLines = []string{
	"▄█████ ▄█████ ▄█████ ████████",
	"██     ██     ██        ██",
	"█████  ██     ▀████▄    ██",
	"██     ██         ██    ██",
	"██     ▀█████ █████▀    ██",
}

const CompactLogo = `fcst ›`

// Banner gradient colors
var BannerColors []lipgloss.Color

// Palette roles, set from the active theme.
var (
	PrimaryColor   lipgloss.Color
	SecondaryColor lipgloss.Color
	AccentColor    lipgloss.Color

	BackgroundColor lipgloss.Color
	SurfaceColor    lipgloss.Color
	TextColor       lipgloss.Color
	MutedColor      lipgloss.Color

	HighlightColor lipgloss.Color
	ErrorColor     lipgloss.Color
	SuccessColor   lipgloss.Color

	// GlamourStyle is the glamour standard style matching the theme.
	GlamourStyle string
)

// Styled components
var (
	LogoStyle           lipgloss.Style
	TitleStyle          lipgloss.Style
	HeaderStyle         lipgloss.Style
	StatusBarStyle      lipgloss.Style
	SelectedItemStyle   lipgloss.Style
	CheckedItemStyle    lipgloss.Style
	HelpStyle           lipgloss.Style
	ModalStyle          lipgloss.Style
	ModalTextStyle      lipgloss.Style
	ModalHighlightStyle lipgloss.Style
	SeparatorStyle      lipgloss.Style
	StatusInfoStyle     lipgloss.Style
	StatusSuccessStyle  lipgloss.Style
	StatusWarnStyle     lipgloss.Style
	StatusErrorStyle    lipgloss.Style

	// Empty style for resetting
	EmptyStyle = lipgloss.NewStyle()
)

var activeTheme theme.Theme

func init() {
	reg, err := theme.NewRegistry()
	if err != nil {
		panic(err)
	}
	ApplyTheme(reg.Resolve(theme.DefaultName))
}

// ActiveTheme returns the theme the styles were last built from.
func ActiveTheme() theme.Theme {
	return activeTheme
}

// ApplyTheme rebuilds every color and style from t.
func ApplyTheme(t theme.Theme) {
	activeTheme = t
	p := t.Palette

	PrimaryColor = lipgloss.Color(p.Primary)
	SecondaryColor = lipgloss.Color(p.Secondary)
	AccentColor = lipgloss.Color(p.Accent)
	BackgroundColor = lipgloss.Color(p.Background)
	SurfaceColor = lipgloss.Color(p.Surface)
	TextColor = lipgloss.Color(p.Text)
	MutedColor = lipgloss.Color(p.Muted)
	HighlightColor = lipgloss.Color(p.Highlight)
	ErrorColor = lipgloss.Color(p.Error)
	SuccessColor = lipgloss.Color(p.Success)
	GlamourStyle = t.Glamour

	BannerColors = []lipgloss.Color{PrimaryColor, HighlightColor, AccentColor, SecondaryColor, PrimaryColor}

	LogoStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)

	TitleStyle = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(SurfaceColor).
		Bold(true).
		Padding(0, 2)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Padding(0, 1)

	SelectedItemStyle = lipgloss.NewStyle().
		Foreground(BackgroundColor).
		Background(AccentColor).
		Bold(true)

	CheckedItemStyle = lipgloss.NewStyle().
		Foreground(SuccessColor).
		Bold(true)

	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(SecondaryColor).
		Padding(1, 2)

	ModalTextStyle = lipgloss.NewStyle().
		Foreground(TextColor)

	ModalHighlightStyle = lipgloss.NewStyle().
		Foreground(HighlightColor).
		Bold(true)

	SeparatorStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusInfoStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusSuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessColor)

	StatusWarnStyle = lipgloss.NewStyle().
		Foreground(HighlightColor)

	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)
}

// StatusStyle picks the status line style for kind.
func StatusStyle(kind StatusKind) lipgloss.Style {
	switch kind {
	case StatusSuccess:
		return StatusSuccessStyle
	case StatusWarn:
		return StatusWarnStyle
	case StatusError:
		return StatusErrorStyle
	default:
		return StatusInfoStyle
	}
}

// ContentWrapper returns a style for wrapping content with width and height constraints
func ContentWrapper(width, height int) lipgloss.Style {
	return EmptyStyle.Width(width).Height(height).MaxHeight(height)
}

func GetWelcomeMessage(toggleKey string) string {
	return GetCompactBanner(fmt.Sprintf("Press %s to search for a city", toggleKey))
}

func GetCompactBanner(message string) string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	logo := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		logo,
		"",
		HelpStyle.Render(message),
	)
}

// Banner renders the boxed startup banner.
func Banner(version string) string {
	lines := make([]string, len(LogoLines)+1)
	copy(lines, LogoLines)
	lines[len(LogoLines)] = ""

	versionTag := version
	if versionTag != "" && versionTag != "dev" {
		if versionTag[0] != 'v' && versionTag[0] != 'V' {
			versionTag = "v" + versionTag
		}
		lines = append(lines, fmt.Sprintf("    Terminal Weather Forecasts %s", versionTag))
	} else {
		lines = append(lines, "    Terminal Weather Forecasts")
	}

	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}

		colorIdx := i % len(BannerColors)
		style := lipgloss.NewStyle().
			Foreground(BannerColors[colorIdx]).
			Bold(i < len(LogoLines))

		coloredLines = append(coloredLines, style.Render(line))
	}

	borderChars := lipgloss.Border{
		Top:         "═",
		Bottom:      "═",
		Left:        "║",
		Right:       "║",
		TopLeft:     "╔",
		TopRight:    "╗",
		BottomLeft:  "╚",
		BottomRight: "╝",
	}

	borderStyle := lipgloss.NewStyle().
		Border(borderChars).
		BorderForeground(SecondaryColor).
		Padding(1, 3).
		MarginTop(1)

	banner := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)
	output := borderStyle.Render(banner)

	centered := lipgloss.NewStyle().
		Width(70).
		Align(lipgloss.Center).
		Render(output)

	separator := lipgloss.NewStyle().
		Width(70).
		Align(lipgloss.Center).
		MarginBottom(1).
		Render(lipgloss.NewStyle().Foreground(AccentColor).Render("☀ ☁ ☂ ☁ ☀"))

	return centered + "\n" + separator + "\n"
}

func ShowBanner(version string) {
	fmt.Print(Banner(version))
}
