// Package tui renders the spot tables in the terminal with Bubble Tea.
package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Theme keeps all styling in one place.
type Theme struct {
	Doc      lipgloss.Style
	Title    lipgloss.Style
	Section  lipgloss.Style
	Border   lipgloss.Style
	Feedback lipgloss.Style
	Dim      lipgloss.Style
	Table    table.Styles
}

func NewDefaultTheme() Theme {
	purple := lipgloss.Color("#874BFD")

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	return Theme{
		Doc: lipgloss.NewStyle().Margin(0, 1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(purple).
			Padding(0, 1),
		Section: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#61AFEF")),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(purple),
		Feedback: lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Table:    ts,
	}
}
