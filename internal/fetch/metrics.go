package fetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchesStarted counts page requests issued by controllers.
	FetchesStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skylight_fetches_started_total",
			Help: "Total number of page fetches started",
		},
	)

	// FetchesSettled counts settled fetches by outcome
	// ("items", "done", "error", "canceled").
	FetchesSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skylight_fetches_settled_total",
			Help: "Total number of page fetches settled, by outcome",
		},
		[]string{"outcome"},
	)

	// FetchesInFlight is the number of fetches currently awaited.
	FetchesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "skylight_fetches_in_flight",
			Help: "Number of page fetches currently awaited",
		},
	)
)
