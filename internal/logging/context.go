package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const eventIDKey contextKey = "event_id"

// NewEventID returns a short id used to correlate the log lines of one datagram.
func NewEventID() string {
	return uuid.New().String()[:8]
}

// ContextWithEventID returns a context carrying id.
func ContextWithEventID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, eventIDKey, id)
}

// EventIDFromContext returns the event id, or "" if none is set.
func EventIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(eventIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns the global logger with the context's event id attached.
//
//	logging.Ctx(ctx).Warn().Err(err).Msg("geolocation lookup failed")
func Ctx(ctx context.Context) *zerolog.Logger {
	l := Logger()
	if id := EventIDFromContext(ctx); id != "" {
		l = l.With().Str("event_id", id).Logger()
	}
	return &l
}
