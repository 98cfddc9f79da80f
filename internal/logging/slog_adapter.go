package logging

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
)

// slogHandler lets sutureslog report supervisor events through zerolog.
// Supervisor events only carry strings, ints and bools; anything else is
// written with Interface.
type slogHandler struct {
	logger zerolog.Logger
	prefix string // open groups, "a.b."
}

// NewSlogLogger returns an slog.Logger that writes through the global logger.
func NewSlogLogger() *slog.Logger {
	return slog.New(&slogHandler{logger: WithComponent("supervisor")})
}

func (h *slogHandler) Enabled(_ context.Context, level slog.Level) bool {
	zl := zerologLevel(level)
	return zl >= h.logger.GetLevel() && zl >= zerolog.GlobalLevel()
}

func (h *slogHandler) Handle(_ context.Context, r slog.Record) error {
	e := h.logger.WithLevel(zerologLevel(r.Level))
	r.Attrs(func(a slog.Attr) bool {
		e = addAttr(e, h.prefix, a)
		return true
	})
	e.Msg(r.Message)
	return nil
}

// WithAttrs bakes attrs into the zerolog context under the groups open now.
func (h *slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	zctx := h.logger.With()
	for _, a := range attrs {
		if a.Value.Kind() == slog.KindGroup {
			for _, ga := range a.Value.Group() {
				zctx = zctx.Interface(h.prefix+a.Key+"."+ga.Key, ga.Value.Any())
			}
			continue
		}
		zctx = zctx.Interface(h.prefix+a.Key, a.Value.Any())
	}
	return &slogHandler{logger: zctx.Logger(), prefix: h.prefix}
}

func (h *slogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &slogHandler{logger: h.logger, prefix: h.prefix + name + "."}
}

func addAttr(e *zerolog.Event, prefix string, a slog.Attr) *zerolog.Event {
	key := prefix + a.Key
	switch a.Value.Kind() {
	case slog.KindString:
		return e.Str(key, a.Value.String())
	case slog.KindInt64:
		return e.Int64(key, a.Value.Int64())
	case slog.KindBool:
		return e.Bool(key, a.Value.Bool())
	case slog.KindGroup:
		for _, ga := range a.Value.Group() {
			e = addAttr(e, key+".", ga)
		}
		return e
	default:
		return e.Interface(key, a.Value.Any())
	}
}

// zerologLevel maps slog's four levels; supervisor events never use others.
func zerologLevel(level slog.Level) zerolog.Level {
	switch {
	case level < slog.LevelInfo:
		return zerolog.DebugLevel
	case level < slog.LevelWarn:
		return zerolog.InfoLevel
	case level < slog.LevelError:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
