package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF7DB")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Margin(0, 1)

	alertStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5F87"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAF00"))
)

func (m DashboardModel) View() string {
	title := titleStyle.Render(fmt.Sprintf("blockwatch - Listening on %s", m.listenAddr))

	rate := fmt.Sprintf("Rate: %s\nUptime: %s\nUnknown location: %d",
		formatRate(m.rate), formatUptime(m.snapshot.Uptime()), m.snapshot.GeoUnknown)
	rateBox := infoStyle.Render(rate)

	countersBox := infoStyle.Render("Datagrams\n" + m.table.View())

	last := "Waiting for blocked traffic..."
	if m.lastAlert != "" {
		last = alertStyle.Render(m.lastAlert)
	}
	lastBox := infoStyle.Render("Last alert:\n" + last)

	row1 := lipgloss.JoinHorizontal(lipgloss.Top, countersBox, rateBox)
	parts := []string{title, row1, lastBox}
	if m.lastError != "" {
		parts = append(parts, errorStyle.Render("Error: "+m.lastError))
	}
	body := lipgloss.JoinVertical(lipgloss.Left, parts...)

	return body + "\nPress q to quit."
}

func formatRate(perSecond float64) string {
	if perSecond >= 1e3 {
		return fmt.Sprintf("%.2f k/s", perSecond/1e3)
	}
	return fmt.Sprintf("%.2f /s", perSecond)
}

func formatUptime(d time.Duration) string {
	return d.Truncate(time.Second).String()
}
