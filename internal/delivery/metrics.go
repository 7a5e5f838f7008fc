package delivery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linkaiin",
			Name:      "deliveries_total",
			Help:      "Delivery attempts by channel and outcome",
		},
		[]string{"channel", "status"},
	)

	validationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linkaiin",
			Name:      "validation_failures_total",
			Help:      "Requests rejected before the pipeline ran",
		},
		[]string{"kind"},
	)
)
