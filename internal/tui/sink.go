package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"blockwatch/internal/models"
)

// Sender is the part of *tea.Program the sink needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Sink routes alerts and errors into the dashboard instead of stdout, which
// the dashboard owns while it runs.
type Sink struct {
	program Sender
}

func NewSink(program Sender) *Sink {
	return &Sink{program: program}
}

func (s *Sink) Name() string { return "tui" }

func (s *Sink) Emit(_ context.Context, alert models.Alert) error {
	s.program.Send(AlertMsg(alert.Text))
	return nil
}

func (s *Sink) Error(msg string) {
	s.program.Send(ErrorMsg(msg))
}
