// Package metrics exposes blockwatch counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"blockwatch/internal/analysis"
)

var (
	GeoLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blockwatch_geo_lookups_total",
			Help: "Geolocation lookups by result",
		},
		[]string{"result"}, // success, failure, rejected, rate_limited
	)

	BreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blockwatch_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions by breaker and target state",
		},
		[]string{"breaker", "to"},
	)

	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blockwatch_notifications_total",
			Help: "Notifications attempted by notifier kind and result",
		},
		[]string{"kind", "result"},
	)

	SinkErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blockwatch_sink_errors_total",
			Help: "Alert sink failures by sink",
		},
		[]string{"sink"},
	)
)

// pipelineCollector reads PipelineStats at scrape time so the pipeline keeps
// a single set of counters.
type pipelineCollector struct {
	stats      *analysis.PipelineStats
	received   *prometheus.Desc
	outcomes   *prometheus.Desc
	geoUnknown *prometheus.Desc
}

// NewPipelineCollector returns a collector over stats.
func NewPipelineCollector(stats *analysis.PipelineStats) prometheus.Collector {
	return &pipelineCollector{
		stats: stats,
		received: prometheus.NewDesc("blockwatch_datagrams_received_total",
			"Datagrams read from the socket", nil, nil),
		outcomes: prometheus.NewDesc("blockwatch_datagrams_total",
			"Datagrams by final outcome", []string{"outcome"}, nil),
		geoUnknown: prometheus.NewDesc("blockwatch_alerts_unknown_location_total",
			"Alerts emitted without a resolved location", nil, nil),
	}
}

func (c *pipelineCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.received
	ch <- c.outcomes
	ch <- c.geoUnknown
}

func (c *pipelineCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.stats.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.received, prometheus.CounterValue, float64(snap.Received))
	for _, o := range analysis.Outcomes {
		ch <- prometheus.MustNewConstMetric(c.outcomes, prometheus.CounterValue, float64(snap.Outcomes[o]), string(o))
	}
	ch <- prometheus.MustNewConstMetric(c.geoUnknown, prometheus.CounterValue, float64(snap.GeoUnknown))
}

// RegisterPipeline registers the pipeline collector with the default registry.
func RegisterPipeline(stats *analysis.PipelineStats) error {
	return prometheus.Register(NewPipelineCollector(stats))
}
