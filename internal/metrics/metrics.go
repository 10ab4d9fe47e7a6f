package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "floatai_fetch_total",
			Help: "Total backend resource fetches",
		},
		[]string{"resource", "outcome"},
	)

	FallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "floatai_fallback_total",
			Help: "Fetches that resolved to their fallback payload",
		},
		[]string{"resource"},
	)

	WelcomeAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "floatai_welcome_attempts_total",
			Help: "Welcome load attempts including retries",
		},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "floatai_api_request_duration_seconds",
			Help:    "Dashboard API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	ProfilesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "floatai_profiles_ingested_total",
			Help: "Profile rows written by the GDAC ingest",
		},
		[]string{"source"},
	)
)
