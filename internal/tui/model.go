package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"blockwatch/internal/analysis"
)

// TickMsg triggers a counter refresh.
type TickMsg time.Time

// AlertMsg carries a freshly rendered alert line.
type AlertMsg string

// ErrorMsg carries a per-datagram failure.
type ErrorMsg string

type DashboardModel struct {
	stats      *analysis.PipelineStats
	snapshot   analysis.Snapshot
	rate       float64
	table      table.Model
	listenAddr string
	lastAlert  string
	lastError  string
}

func NewDashboardModel(stats *analysis.PipelineStats, listenAddr string) DashboardModel {
	columns := []table.Column{
		{Title: "Outcome", Width: 12},
		{Title: "Datagrams", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
		table.WithHeight(len(analysis.Outcomes)+3),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m := DashboardModel{
		stats:      stats,
		listenAddr: listenAddr,
		table:      t,
	}
	m.refresh()
	return m
}

func (m DashboardModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
