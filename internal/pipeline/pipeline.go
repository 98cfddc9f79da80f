// Package pipeline turns one received datagram into at most one alert.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"blockwatch/internal/analysis"
	"blockwatch/internal/geo"
	"blockwatch/internal/logging"
	"blockwatch/internal/models"
	"blockwatch/internal/notify"
	"blockwatch/internal/output"
	"blockwatch/internal/parser"
)

// Pipeline runs filter, parse, classify, locate, render, emit and notify
// for each datagram, in that order.
type Pipeline struct {
	locator  geo.Locator
	sink     output.Sink
	notifier notify.Notifier
	stats    *analysis.PipelineStats
	now      func() time.Time
}

// New builds a pipeline. A nil notifier disables notification and nil stats
// get a private counter set.
func New(locator geo.Locator, sink output.Sink, notifier notify.Notifier, stats *analysis.PipelineStats) *Pipeline {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if stats == nil {
		stats = analysis.NewPipelineStats()
	}
	return &Pipeline{
		locator:  locator,
		sink:     sink,
		notifier: notifier,
		stats:    stats,
		now:      time.Now,
	}
}

// Stats returns the counters this pipeline updates.
func (p *Pipeline) Stats() *analysis.PipelineStats {
	return p.stats
}

// Handle processes one datagram. Non-block, unparsable and private traffic
// is dropped silently. The returned error is meant for the operator.
func (p *Pipeline) Handle(ctx context.Context, ev models.RawEvent) (err error) {
	p.stats.Received()
	ctx = logging.ContextWithEventID(ctx, logging.NewEventID())

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while handling datagram: %v", r)
		}
		if err != nil {
			p.stats.Record(analysis.OutcomeError)
		}
	}()

	if !parser.IsBlock(ev.Payload) {
		p.stats.Record(analysis.OutcomeFiltered)
		return nil
	}

	block, ok := parser.Parse(ev.Payload)
	if !ok {
		p.stats.Record(analysis.OutcomeUnparsed)
		return nil
	}

	if !analysis.IsPublic(block.Source) {
		p.stats.Record(analysis.OutcomePrivate)
		return nil
	}

	location := p.locator.Locate(ctx, block.Source)
	if location == models.UnknownLocation {
		p.stats.GeoUnknown()
	}

	alert := analysis.NewAlert(block, location, p.now())
	logging.Ctx(ctx).Debug().
		Str("source", block.Source.String()).
		Int("port", block.DstPort).
		Str("protocol", string(block.Protocol)).
		Str("location", location).
		Msg("alert")

	emitErr := p.sink.Emit(ctx, alert)
	p.stats.SetLastAlert(alert.Text)
	p.notifier.Notify(ctx)

	if emitErr != nil {
		return fmt.Errorf("deliver alert: %w", emitErr)
	}
	p.stats.Record(analysis.OutcomeAlerted)
	return nil
}
