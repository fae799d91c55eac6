package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// AnalysesTotal counts finished analyses by mode (sync|stream) and result.
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "specter",
		Subsystem: "analyzer",
		Name:      "analyses_total",
		Help:      "Total number of image analyses, labeled by mode and result.",
	}, []string{"mode", "result"})

	// UpstreamDurationSeconds is the time spent inside the model call.
	UpstreamDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "specter",
		Subsystem: "analyzer",
		Name:      "upstream_duration_seconds",
		Help:      "Time spent waiting for the generative model, labeled by result.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"result"})

	DegradedRepliesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "specter",
		Subsystem: "analyzer",
		Name:      "degraded_replies_total",
		Help:      "Total number of model replies that could not be decoded and fell back to a degraded result.",
	})

	SkippedAttributesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "specter",
		Subsystem: "analyzer",
		Name:      "skipped_attributes_total",
		Help:      "Total number of attribute items dropped by strict validation.",
	})

	// StreamEventsTotal counts emitted stream events by kind.
	StreamEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "specter",
		Subsystem: "analyzer",
		Name:      "stream_events_total",
		Help:      "Total number of streaming events emitted, labeled by kind.",
	}, []string{"kind"})
)

// Register registers analyzer metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			AnalysesTotal,
			UpstreamDurationSeconds,
			DegradedRepliesTotal,
			SkippedAttributesTotal,
			StreamEventsTotal,
		)
	})
}
