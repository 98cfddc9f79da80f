package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/thejerf/suture/v4"
)

type mockService struct {
	name    string
	starts  atomic.Int32
	failFor int32
	err     error // returned instead of blocking, when set
}

func (m *mockService) Serve(ctx context.Context) error {
	n := m.starts.Add(1)
	if m.err != nil {
		return m.err
	}
	if n <= m.failFor {
		return errors.New("transient failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string { return m.name }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestTree_StartsAndStops(t *testing.T) {
	tree := NewTree(quietLogger(), time.Second)

	ingest := &mockService{name: "ingest"}
	telemetry := &mockService{name: "telemetry"}
	tree.AddIngestService(ingest)
	tree.AddTelemetryService(telemetry)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	errCh := tree.ServeBackground(ctx)
	select {
	case <-errCh:
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop")
	}

	assert.EqualValues(t, 1, ingest.starts.Load())
	assert.EqualValues(t, 1, telemetry.starts.Load())
}

func TestTree_RestartsFailedService(t *testing.T) {
	tree := NewTree(quietLogger(), time.Second)

	ingest := &mockService{name: "ingest"}
	flaky := &mockService{name: "flaky-metrics", failFor: 2}
	tree.AddIngestService(ingest)
	tree.AddTelemetryService(flaky)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	assert.Eventually(t, func() bool { return flaky.starts.Load() >= 3 }, 3*time.Second, 10*time.Millisecond)
	assert.EqualValues(t, 1, ingest.starts.Load(), "telemetry failures must not restart ingestion")

	cancel()
	<-errCh
}

func TestTree_DoNotRestart(t *testing.T) {
	tree := NewTree(quietLogger(), time.Second)

	closed := &mockService{name: "closed-listener", err: fmt.Errorf("%w: socket closed", suture.ErrDoNotRestart)}
	tree.AddIngestService(closed)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	assert.Eventually(t, func() bool { return closed.starts.Load() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.EqualValues(t, 1, closed.starts.Load())

	cancel()
	<-errCh
}
