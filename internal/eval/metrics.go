package eval

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evalRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gametree_eval_requests_total",
		Help: "Evaluation requests by source and outcome.",
	}, []string{"source", "outcome"})

	evalInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gametree_eval_in_flight",
		Help: "Evaluation requests currently in flight.",
	})

	evalDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gametree_eval_duration_seconds",
		Help:    "Wall time of scoring-oracle calls.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})
)
