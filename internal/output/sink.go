// Package output delivers rendered alerts to their destinations.
package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"blockwatch/internal/metrics"
	"blockwatch/internal/models"
)

// Sink receives every alert the pipeline produces.
type Sink interface {
	Emit(ctx context.Context, alert models.Alert) error
	Name() string
}

// ErrorReporter prints per-datagram failures for the operator.
type ErrorReporter interface {
	Error(msg string)
}

var (
	alertStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5F87"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAF00"))
)

// Console writes one line per alert to the operator's terminal.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

// NewConsole writes to out. When color is set, lines are styled with
// lipgloss; lipgloss drops the styling when out is not a terminal.
func NewConsole(out io.Writer, color bool) *Console {
	return &Console{out: out, color: color}
}

func (c *Console) Name() string { return "console" }

// Emit prints the alert text exactly as rendered.
func (c *Console) Emit(_ context.Context, alert models.Alert) error {
	line := alert.Text
	if c.color {
		line = alertStyle.Render(line)
	}
	return c.println(line)
}

// Error prints "Error: msg".
func (c *Console) Error(msg string) {
	line := "Error: " + msg
	if c.color {
		line = errorStyle.Render(line)
	}
	_ = c.println(line)
}

func (c *Console) println(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.out, line)
	return err
}

// Multi fans an alert out to several sinks. Every sink is tried; failures
// are counted per sink and joined.
type Multi []Sink

func (m Multi) Name() string { return "multi" }

func (m Multi) Emit(ctx context.Context, alert models.Alert) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, alert); err != nil {
			metrics.SinkErrors.WithLabelValues(s.Name()).Inc()
			errs = append(errs, fmt.Errorf("%s sink: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
