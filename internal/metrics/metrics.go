package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "formatter_events_enqueued_total",
		Help: "Total number of events placed on the processing queue.",
	})

	EventsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "formatter_events_processed_total",
		Help: "Total number of events fully formatted.",
	})

	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "formatter_events_dropped_total",
		Help: "Total number of events rejected due to a full queue.",
	})

	RenderErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "formatter_render_errors_total",
		Help: "Total number of events whose instruction rendering failed.",
	})

	MatcherSteps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "formatter_matcher_steps_total",
		Help: "Total matcher-chain steps, labelled by outcome.",
	}, []string{"outcome"}) // "matched" | "skipped"

	SinkErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "formatter_sink_errors_total",
		Help: "Total number of output events the sink failed to accept.",
	})

	ProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "formatter_event_processing_duration_ms",
		Help:    "End-to-end event formatting latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "formatter_queue_utilization_ratio",
		Help: "Current event queue utilization (0–1).",
	})
)
