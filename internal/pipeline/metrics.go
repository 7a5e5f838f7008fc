package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "linkaiin",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"stage"},
	)

	agentRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linkaiin",
			Name:      "agent_runs_total",
			Help:      "Total agent invocations",
		},
		[]string{"agent", "status"},
	)

	imageFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linkaiin",
			Name:      "image_fallbacks_total",
			Help:      "Image acquisition outcomes by fallback level",
		},
		[]string{"level"},
	)
)
