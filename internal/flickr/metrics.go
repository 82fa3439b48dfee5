package flickr

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APICalls counts REST calls by method and outcome ("ok", "error").
	APICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skylight_api_calls_total",
			Help: "Total number of REST API calls",
		},
		[]string{"method", "outcome"},
	)

	// APICallDuration tracks REST call latency.
	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skylight_api_call_duration_seconds",
			Help:    "REST API call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// CacheLookups counts response cache lookups by result ("hit", "miss", "error").
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skylight_cache_lookups_total",
			Help: "Total number of response cache lookups",
		},
		[]string{"result"},
	)
)

func observeCall(method string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	APICalls.WithLabelValues(method, outcome).Inc()
	APICallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}
