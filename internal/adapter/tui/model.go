package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/couchcryptid/skcc-skimmer-feed/internal/domain"
)

// Lines used by everything except the two tables: title, two section
// headings, feedback, updated-at, help, and the table borders.
const chromeHeight = 12

type snapshotMsg domain.Snapshot

var columns = []table.Column{
	{Title: "Age", Width: 4},
	{Title: "Call", Width: 8},
	{Title: "SKCC", Width: 10},
	{Title: "Name", Width: 11},
	{Title: "QTH", Width: 4},
	{Title: "Frequency / Status", Width: 28},
	{Title: "Need", Width: 24},
}

// Model is the Bubble Tea model for the spot tables.
type Model struct {
	title string
	theme Theme

	width  int
	height int

	rbn   table.Model
	sked  table.Model
	focus domain.Source

	feedback  string
	updatedAt string
}

// New creates a model showing an empty snapshot.
func New(title string) Model {
	theme := NewDefaultTheme()
	newTable := func(focused bool) table.Model {
		return table.New(
			table.WithColumns(columns),
			table.WithHeight(8),
			table.WithFocused(focused),
			table.WithStyles(theme.Table),
		)
	}
	return Model{
		title:    title,
		theme:    theme,
		rbn:      newTable(true),
		sked:     newTable(false),
		focus:    domain.SourceRBN,
		feedback: "Starting...",
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.toggleFocus()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case snapshotMsg:
		m.apply(domain.Snapshot(msg))
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == domain.SourceRBN {
		m.rbn, cmd = m.rbn.Update(msg)
	} else {
		m.sked, cmd = m.sked.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	updated := "Updated at --:--:--"
	if m.updatedAt != "" {
		updated = "Updated at " + m.updatedAt
	}

	parts := []string{
		m.theme.Title.Render(m.title),
		m.theme.Section.Render("RBN spots"),
		m.theme.Border.Render(m.rbn.View()),
		m.theme.Section.Render("Sked page"),
		m.theme.Border.Render(m.sked.View()),
		m.theme.Feedback.Render(m.feedback),
		m.theme.Dim.Render(updated),
		m.theme.Dim.Render("[q] Quit • [tab] Switch table • [↑/↓] Scroll"),
	}
	return m.theme.Doc.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m *Model) apply(snap domain.Snapshot) {
	m.rbn.SetRows(rows(snap.RBN))
	m.sked.SetRows(rows(snap.Sked))
	m.feedback = snap.Feedback
	if !snap.UpdatedAt.IsZero() {
		m.updatedAt = snap.UpdatedAt.Local().Format("15:04:05")
	}
}

func (m *Model) toggleFocus() {
	if m.focus == domain.SourceRBN {
		m.focus = domain.SourceSked
		m.rbn.Blur()
		m.sked.Focus()
		return
	}
	m.focus = domain.SourceRBN
	m.sked.Blur()
	m.rbn.Focus()
}

// resize splits the available height between the tables, RBN first.
func (m *Model) resize() {
	avail := m.height - chromeHeight
	if avail < 4 {
		avail = 4
	}
	rbnHeight := avail / 2
	m.rbn.SetHeight(rbnHeight)
	m.sked.SetHeight(avail - rbnHeight)
}

func rows(views []domain.SpotView) []table.Row {
	out := make([]table.Row, len(views))
	for i, v := range views {
		out[i] = table.Row{
			strconv.Itoa(v.AgeMinutes),
			v.Call,
			v.SKCC(),
			v.Name,
			v.Location,
			v.Detail(),
			v.Need,
		}
	}
	return out
}
