package listener

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockwatch/internal/config"
	"blockwatch/internal/models"
)

type recordingReporter struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordingReporter) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingReporter) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

func loopback() config.ListenConfig {
	return config.ListenConfig{Address: "127.0.0.1", Port: 0, ReadBuffer: 65535}
}

func send(t *testing.T, addr net.Addr, payload string) {
	t.Helper()
	conn, err := net.Dial("udp", addr.String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte(payload))
	require.NoError(t, err)
}

func startServe(t *testing.T, l *Listener) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Serve(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

func TestServe_DeliversInOrder(t *testing.T) {
	got := make(chan string, 3)
	l, err := New(loopback(), HandlerFunc(func(_ context.Context, ev models.RawEvent) error {
		got <- string(ev.Payload)
		return nil
	}), nil)
	require.NoError(t, err)
	startServe(t, l)

	for _, p := range []string{"one", "two", "three"} {
		send(t, l.Addr(), p)
		select {
		case s := <-got:
			assert.Equal(t, p, s)
		case <-time.After(2 * time.Second):
			t.Fatalf("datagram %q not delivered", p)
		}
	}
}

func TestServe_SurvivesPanicAndError(t *testing.T) {
	rep := &recordingReporter{}
	got := make(chan string, 4)

	l, err := New(loopback(), HandlerFunc(func(_ context.Context, ev models.RawEvent) error {
		switch p := string(ev.Payload); p {
		case "panic":
			panic("bad datagram")
		case "error":
			return errors.New("sink unavailable")
		default:
			got <- p
			return nil
		}
	}), rep)
	require.NoError(t, err)
	startServe(t, l)

	send(t, l.Addr(), "panic")
	send(t, l.Addr(), "error")
	send(t, l.Addr(), "after")

	select {
	case s := <-got:
		assert.Equal(t, "after", s)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not continue after failures")
	}

	msgs := rep.all()
	require.Len(t, msgs, 2)
	assert.Equal(t, "bad datagram", msgs[0])
	assert.Equal(t, "sink unavailable", msgs[1])
}

func TestServe_StopsOnCancel(t *testing.T) {
	l, err := New(loopback(), HandlerFunc(func(context.Context, models.RawEvent) error { return nil }), nil)
	require.NoError(t, err)

	cancel, done := startServe(t, l)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestNew_BindFailure(t *testing.T) {
	first, err := New(loopback(), HandlerFunc(func(context.Context, models.RawEvent) error { return nil }), nil)
	require.NoError(t, err)
	defer first.Close()

	port := first.Addr().(*net.UDPAddr).Port
	cfg := loopback()
	cfg.Port = port

	_, err = New(cfg, nil, nil)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "bind udp"))
}
