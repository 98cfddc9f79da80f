package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"blockwatch/internal/analysis"
)

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case TickMsg:
		m.rate = m.stats.GetRate()
		m.refresh()
		return m, tickCmd()

	case AlertMsg:
		m.lastAlert = string(msg)
		return m, nil

	case ErrorMsg:
		m.lastError = string(msg)
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// refresh copies the counters into the model and the table.
func (m *DashboardModel) refresh() {
	m.snapshot = m.stats.Snapshot()
	if m.snapshot.LastAlert != "" {
		m.lastAlert = m.snapshot.LastAlert
	}

	rows := make([]table.Row, 0, len(analysis.Outcomes)+1)
	rows = append(rows, table.Row{"received", strconv.FormatInt(m.snapshot.Received, 10)})
	for _, o := range analysis.Outcomes {
		rows = append(rows, table.Row{string(o), strconv.FormatInt(m.snapshot.Outcomes[o], 10)})
	}
	m.table.SetRows(rows)
}
