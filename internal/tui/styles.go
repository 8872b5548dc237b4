package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type theme struct {
	Title   lipgloss.Style
	Accent  lipgloss.Style
	Muted   lipgloss.Style
	Alert   lipgloss.Style
	Label   lipgloss.Style
	Active  lipgloss.Style
	Card    lipgloss.Style
	Drift   lipgloss.Style
	Consist lipgloss.Style
	Emotion lipgloss.Style
}

func defaultTheme() theme {
	return theme{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135")),
		Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color("135")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Alert:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
		Active:  lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true),
		Card:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1),
		Drift:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		Consist: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Emotion: lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true),
	}
}

// meter renders a fixed-width score bar for a ratio in [0,1].
func meter(ratio float64, width int, style lipgloss.Style) string {
	if width <= 0 {
		return ""
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio*float64(width) + 0.5)
	return style.Render(strings.Repeat("█", filled)) + strings.Repeat("░", width-filled)
}
