// Package supervisor runs blockwatch's long-lived services under suture.
//
// The UDP listener sits in its own subtree so that a crashing metrics server
// is restarted without ever touching ingestion. Restart policy is suture's
// default; a service that must not come back returns suture.ErrDoNotRestart.
package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

type Tree struct {
	root      *suture.Supervisor
	ingest    *suture.Supervisor
	telemetry *suture.Supervisor
}

// NewTree builds the tree. shutdownTimeout bounds how long each service gets
// to return after cancellation; zero keeps suture's 10s.
func NewTree(logger *slog.Logger, shutdownTimeout time.Duration) *Tree {
	hook := (&sutureslog.Handler{Logger: logger}).MustHook()

	root := suture.New("blockwatch", suture.Spec{EventHook: hook, Timeout: shutdownTimeout})
	t := &Tree{
		root:      root,
		ingest:    suture.New("ingest", suture.Spec{Timeout: shutdownTimeout}),
		telemetry: suture.New("telemetry", suture.Spec{Timeout: shutdownTimeout}),
	}
	root.Add(t.ingest)
	root.Add(t.telemetry)
	return t
}

func (t *Tree) AddIngestService(svc suture.Service) suture.ServiceToken {
	return t.ingest.Add(svc)
}

func (t *Tree) AddTelemetryService(svc suture.Service) suture.ServiceToken {
	return t.telemetry.Add(svc)
}

// Serve blocks until ctx is cancelled or the root gives up.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}
