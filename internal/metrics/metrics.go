package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Moderation
	ModerationRequests *prometheus.CounterVec
	ModerationDuration *prometheus.HistogramVec
	ModerationRejected *prometheus.CounterVec

	// Push channel
	PushEvents *prometheus.CounterVec

	// Transcript archive
	ArchiveWrites *prometheus.CounterVec
}

// New registers the client metrics on reg. A nil reg gives working,
// unregistered metrics.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ModerationRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "room_moderation_requests_total",
				Help: "Moderation requests by operation and outcome",
			},
			[]string{"operation", "outcome"}, // "success" or "error"
		),
		ModerationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "room_moderation_request_duration_seconds",
				Help:    "Moderation request latency",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"operation"},
		),
		ModerationRejected: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "room_moderation_rejected_total",
				Help: "Moderation requests refused because the same one was pending",
			},
			[]string{"operation"},
		),
		PushEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "room_push_events_total",
				Help: "Push channel events received",
			},
			[]string{"command"},
		),
		ArchiveWrites: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "room_archive_writes_total",
				Help: "Transcript archive writes",
			},
			[]string{"outcome"},
		),
	}
}
