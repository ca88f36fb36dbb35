package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/pders01/fcst/internal/forecast"
	"github.com/pders01/fcst/internal/state"
)

func newRenderer(style string, wordWrap int) (*glamour.TermRenderer, error) {
	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	return glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(wordWrap),
	)
}

// RenderMarkdown renders md with the given glamour style; an empty style
// picks one from the terminal background.
func RenderMarkdown(md, style string, wordWrap int) (string, error) {
	r, err := newRenderer(style, wordWrap)
	if err != nil {
		return "", wrapErr("creating markdown renderer", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", wrapErr("rendering markdown", err)
	}
	return out, nil
}

func unitSuffixes(units forecast.Units) (temp, speed string) {
	if units == forecast.Imperial {
		return "°F", "mph"
	}
	return "°C", "m/s"
}

func formatReading(r forecast.Reading, suffix string) string {
	if !r.HasParts() {
		return fmt.Sprintf("%.1f%s", r.Value(), suffix)
	}
	if r.Min == 0 && r.Max == 0 {
		return fmt.Sprintf("%.1f%s (night %.1f%s)", r.Day, suffix, r.Night, suffix)
	}
	return fmt.Sprintf("%.1f%s (%.1f to %.1f)", r.Day, suffix, r.Min, r.Max)
}

// DashboardMarkdown renders the published forecast as markdown.
func DashboardMarkdown(snap state.Snapshot, units forecast.Units) string {
	temp, speed := unitSuffixes(units)
	c := snap.Current

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.Location)
	fmt.Fprintf(&b, "*%s · %s*\n\n", c.Date, c.Time)
	if c.Condition != "" {
		fmt.Fprintf(&b, "**%s**\n\n", c.Condition)
	}

	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Temperature | %s |\n", formatReading(c.Temp, temp))
	fmt.Fprintf(&b, "| Feels like | %s |\n", formatReading(c.FeelsLike, temp))
	fmt.Fprintf(&b, "| Humidity | %.0f%% |\n", c.Humidity)
	fmt.Fprintf(&b, "| Wind | %.1f %s |\n", c.WindSpeed, speed)
	fmt.Fprintf(&b, "| Sunrise | %s |\n", c.Sunrise)
	fmt.Fprintf(&b, "| Sunset | %s |\n", c.Sunset)

	if len(snap.Predictions) > 0 {
		b.WriteString("\n## Next days\n\n")
		b.WriteString("| Date | Temp | Feels like | Conditions |\n|---|---|---|---|\n")
		for _, p := range snap.Predictions {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				p.Date, formatReading(p.Temp, temp), formatReading(p.FeelsLike, temp), p.Condition)
		}
	}

	return b.String()
}
