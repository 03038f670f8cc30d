package pit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// addTotal counts Add calls by outcome: added, ignored, rejected.
	addTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jsonpit_add_total",
		Help: "Total item writes by result",
	}, []string{"result"})

	// saveTotal counts Save calls by outcome: written, skipped, error.
	saveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jsonpit_save_total",
		Help: "Total saves by result",
	}, []string{"result"})

	saveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jsonpit_save_duration_seconds",
		Help:    "Save duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	})

	reloadTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jsonpit_reload_total",
		Help: "Total reloads of persisted state",
	})
)
