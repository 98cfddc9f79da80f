// Package notify produces the audible cue that accompanies an alert.
//
// Notification is cosmetic. A Notifier swallows every failure (missing
// sound file, no audio device, command not installed) so that it can
// never affect alert delivery.
package notify

import (
	"context"
	"io"
	"os/exec"
	"strings"
	"time"

	"blockwatch/internal/metrics"
)

// Notifier is triggered once per alert. Notify blocks until the cue has
// finished playing.
type Notifier interface {
	Notify(ctx context.Context)
}

// Nop does nothing. Used when notifications are disabled.
type Nop struct{}

func (Nop) Notify(context.Context) {}

// Bell rings the terminal bell by writing BEL to the terminal.
type Bell struct {
	Out io.Writer
}

func (b Bell) Notify(context.Context) {
	defer func() { _ = recover() }()
	if _, err := b.Out.Write([]byte{'\a'}); err != nil {
		metrics.Notifications.WithLabelValues("bell", "failed").Inc()
		return
	}
	metrics.Notifications.WithLabelValues("bell", "ok").Inc()
}

// Command runs an external player such as paplay, afplay or notify-send and
// waits for it to exit.
type Command struct {
	name    string
	args    []string
	timeout time.Duration
}

// NewCommand splits a command line on whitespace. It returns nil for an
// empty command line.
func NewCommand(commandLine string, timeout time.Duration) *Command {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil
	}
	return &Command{name: fields[0], args: fields[1:], timeout: timeout}
}

func (c *Command) Notify(ctx context.Context) {
	defer func() { _ = recover() }()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := exec.CommandContext(ctx, c.name, c.args...).Run(); err != nil {
		metrics.Notifications.WithLabelValues("command", "failed").Inc()
		return
	}
	metrics.Notifications.WithLabelValues("command", "ok").Inc()
}

// Multi plays every notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context) {
	for _, n := range m {
		n.Notify(ctx)
	}
}

// Options selects the notifiers to build.
type Options struct {
	Enabled        bool
	Bell           bool
	Command        string
	CommandTimeout time.Duration
	Terminal       io.Writer // Bell target, never the alert stream (see Terminal)
}

// New builds the notifier chain described by opts.
func New(opts Options) Notifier {
	if !opts.Enabled {
		return Nop{}
	}

	var chain Multi
	if opts.Bell && opts.Terminal != nil {
		chain = append(chain, Bell{Out: opts.Terminal})
	}
	if cmd := NewCommand(opts.Command, opts.CommandTimeout); cmd != nil {
		chain = append(chain, cmd)
	}

	switch len(chain) {
	case 0:
		return Nop{}
	case 1:
		return chain[0]
	default:
		return chain
	}
}
