package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_dashboard_provider_requests_total",
			Help: "Total upstream provider requests",
		},
		[]string{"provider", "endpoint", "status"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weather_dashboard_provider_latency_seconds",
			Help:    "Upstream provider latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "endpoint"},
	)

	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_dashboard_validation_failures_total",
			Help: "Upstream payloads rejected by schema validation",
		},
		[]string{"schema"},
	)

	ProxyRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_dashboard_proxy_requests_total",
			Help: "Requests through the weather.gov proxy by outcome",
		},
		[]string{"outcome"},
	)

	HistoryDaysStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weather_dashboard_history_days_stored_total",
			Help: "Forecast days written to the history cache",
		},
	)

	HistoryWindowFills = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_dashboard_history_window_fills_total",
			Help: "Display window slots by the source that filled them",
		},
		[]string{"source"},
	)
)
