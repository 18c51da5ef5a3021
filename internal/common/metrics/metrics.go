// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxy_http_requests_total",
			Help: "Total number of inbound HTTP requests",
		},
		[]string{"route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "proxy_http_request_duration_seconds",
			Help: "Duration of inbound request handling in seconds",
		},
		[]string{"route"},
	)

	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxy_upstream_calls_total",
			Help: "Total number of calls to the diagnosis engine",
		},
		[]string{"endpoint", "outcome"},
	)

	UpstreamCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "proxy_upstream_call_duration_seconds",
			Help: "Duration of diagnosis engine calls in seconds",
		},
		[]string{"endpoint"},
	)

	ParseCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxy_parse_cache_events_total",
			Help: "Parse response cache hits and misses",
		},
		[]string{"event"},
	)
)
