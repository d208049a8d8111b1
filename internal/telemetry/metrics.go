// Package telemetry holds the Prometheus collectors. They register against
// the default registry and are served on /metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPRequestsTotal is labelled by chi route pattern, never the raw path,
// so guild ids and log keys do not become label values.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "logviewer_http_requests_total",
		Help: "HTTP requests by method, route pattern and status code.",
	},
	[]string{"method", "route", "status"},
)

var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "logviewer_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route pattern.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// GateOutcomesTotal counts request gate results: ok, invalid_identifier,
// tenant_not_onboarded, document_not_found, store_unavailable,
// unauthenticated, unauthorized.
var GateOutcomesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "logviewer_gate_outcomes_total",
		Help: "Log access attempts by outcome.",
	},
	[]string{"outcome"},
)
