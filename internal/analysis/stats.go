package analysis

import (
	"sync"
	"time"
)

// Outcome is the final disposition of one datagram.
type Outcome string

const (
	OutcomeFiltered Outcome = "filtered" // no block marker
	OutcomeUnparsed Outcome = "unparsed" // block line without address or port
	OutcomePrivate  Outcome = "private"  // source not publicly routable
	OutcomeAlerted  Outcome = "alerted"
	OutcomeError    Outcome = "error"
)

// Outcomes lists every outcome in display order.
var Outcomes = []Outcome{OutcomeFiltered, OutcomeUnparsed, OutcomePrivate, OutcomeAlerted, OutcomeError}

// Snapshot is a point-in-time copy of the pipeline counters.
type Snapshot struct {
	Received   int64
	Outcomes   map[Outcome]int64
	GeoUnknown int64
	LastAlert  string
	Started    time.Time
}

// Uptime returns how long the stats have been collected.
func (s Snapshot) Uptime() time.Duration {
	return time.Since(s.Started)
}

// PipelineStats counts what happened to each datagram. Nothing in the
// pipeline reads these back to make decisions.
type PipelineStats struct {
	mu            sync.Mutex
	started       time.Time
	received      int64
	outcomes      map[Outcome]int64
	geoUnknown    int64
	lastAlert     string
	windowPackets int64
	lastTick      time.Time
}

// NewPipelineStats creates an empty counter set.
func NewPipelineStats() *PipelineStats {
	now := time.Now()
	return &PipelineStats{
		started:  now,
		lastTick: now,
		outcomes: make(map[Outcome]int64, len(Outcomes)),
	}
}

// Received counts an incoming datagram.
func (s *PipelineStats) Received() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received++
	s.windowPackets++
}

// Record counts the outcome of a datagram.
func (s *PipelineStats) Record(o Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[o]++
}

// GeoUnknown counts an alert whose location could not be resolved.
func (s *PipelineStats) GeoUnknown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geoUnknown++
}

// SetLastAlert remembers the most recent alert line for display.
func (s *PipelineStats) SetLastAlert(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAlert = text
}

// Snapshot returns a copy of all counters.
func (s *PipelineStats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	outcomes := make(map[Outcome]int64, len(s.outcomes))
	for k, v := range s.outcomes {
		outcomes[k] = v
	}
	return Snapshot{
		Received:   s.received,
		Outcomes:   outcomes,
		GeoUnknown: s.geoUnknown,
		LastAlert:  s.lastAlert,
		Started:    s.started,
	}
}

// GetRate returns the datagram rate (per second) since the last call.
func (s *PipelineStats) GetRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	duration := now.Sub(s.lastTick).Seconds()
	if duration == 0 {
		return 0
	}

	rate := float64(s.windowPackets) / duration

	// Reset window
	s.windowPackets = 0
	s.lastTick = now

	return rate
}
