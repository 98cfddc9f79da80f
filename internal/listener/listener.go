// Package listener owns the UDP socket and the receive loop.
package listener

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/thejerf/suture/v4"

	"blockwatch/internal/config"
	"blockwatch/internal/logging"
	"blockwatch/internal/models"
	"blockwatch/internal/output"
)

// Handler processes one datagram. It runs on the receive goroutine, so the
// next datagram is not read until it returns.
type Handler interface {
	Handle(ctx context.Context, ev models.RawEvent) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev models.RawEvent) error

func (f HandlerFunc) Handle(ctx context.Context, ev models.RawEvent) error {
	return f(ctx, ev)
}

// Listener reads datagrams and feeds them to a Handler one at a time.
// It implements suture.Service. Cancelling the Serve context closes the
// socket, so a Listener serves at most once.
type Listener struct {
	conn    net.PacketConn
	handler Handler
	errs    output.ErrorReporter
	bufSize int
}

// New binds the UDP socket. Binding happens here rather than in Serve so a
// port conflict is reported before anything else starts.
func New(cfg config.ListenConfig, handler Handler, errs output.ErrorReporter) (*Listener, error) {
	conn, err := net.ListenPacket("udp", cfg.Addr())
	if err != nil {
		return nil, fmt.Errorf("bind udp %s: %w", cfg.Addr(), err)
	}

	size := cfg.ReadBuffer
	if size <= 0 {
		size = 65535
	}

	logging.Info().Str("addr", conn.LocalAddr().String()).Msg("listening for firewall events")
	return &Listener{conn: conn, handler: handler, errs: errs, bufSize: size}, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// Serve runs the receive loop until ctx is cancelled.
func (l *Listener) Serve(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = l.conn.Close()
		case <-stop:
		}
	}()

	buf := make([]byte, l.bufSize)
	for {
		n, addr, err := l.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("%w: %w", suture.ErrDoNotRestart, err)
			}
			logging.Warn().Err(err).Msg("udp read failed")
			continue
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])
		l.dispatch(ctx, models.RawEvent{Payload: payload, Source: addr, Received: time.Now()})
	}
}

func (l *Listener) dispatch(ctx context.Context, ev models.RawEvent) {
	Dispatch(ctx, l.handler, l.errs, ev)
}

// Dispatch runs h on one datagram and reports any failure, including a
// panic, to errs. It never panics itself.
func Dispatch(ctx context.Context, h Handler, errs output.ErrorReporter, ev models.RawEvent) {
	defer func() {
		if r := recover(); r != nil {
			report(errs, fmt.Sprintf("%v", r))
		}
	}()

	if err := h.Handle(ctx, ev); err != nil {
		report(errs, err.Error())
	}
}

func report(errs output.ErrorReporter, msg string) {
	if errs != nil {
		errs.Error(msg)
	}
	logging.Debug().Str("error", msg).Msg("datagram handling failed")
}

// Close releases the socket without serving.
func (l *Listener) Close() error {
	return l.conn.Close()
}

func (l *Listener) String() string {
	return "udp-listener"
}
