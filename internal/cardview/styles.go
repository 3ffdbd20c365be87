// Package cardview draws chart scenes on a terminal braille canvas.
package cardview

import "github.com/charmbracelet/lipgloss"

var (
	colorText      = lipgloss.Color("#F0F0F0")
	colorMuted     = lipgloss.Color("#6E6E6E")
	colorAccent    = lipgloss.Color("#C89A3A")
	colorTooltipBg = lipgloss.Color("#27272A")
)

// Styles holds the lipgloss styles for one card.
type Styles struct {
	Title          lipgloss.Style
	Description    lipgloss.Style
	Series         lipgloss.Style
	Highlight      lipgloss.Style
	Tooltip        lipgloss.Style
	Label          lipgloss.Style
	ActivePeriod   lipgloss.Style
	InactivePeriod lipgloss.Style
}

// NewStyles builds styles around the series color.
func NewStyles(color string) Styles {
	series := lipgloss.Color(color)
	return Styles{
		Title:       lipgloss.NewStyle().Foreground(colorText).Bold(true),
		Description: lipgloss.NewStyle().Foreground(colorMuted),
		Series:      lipgloss.NewStyle().Foreground(series),
		Highlight:   lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		Tooltip: lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorTooltipBg),
		Label: lipgloss.NewStyle().Foreground(colorMuted),
		ActivePeriod: lipgloss.NewStyle().
			Foreground(colorText).
			Background(series).
			Bold(true),
		InactivePeriod: lipgloss.NewStyle().Foreground(colorMuted),
	}
}
