// Package metrics exposes prometheus instrumentation for the API server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts API requests by route and status class
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "effort_estimate",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests processed, by route and status.",
	}, []string{"route", "status"})

	// RequestDuration observes API request latency by route
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "effort_estimate",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency, by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	// EstimatesComputed counts finalized estimations by driver source
	EstimatesComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "effort_estimate",
		Name:      "estimates_computed_total",
		Help:      "Finalized estimations computed, by winning driver source.",
	}, []string{"driver_source"})

	// CollaboratorFailures counts failed AI collaborator calls by kind
	CollaboratorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "effort_estimate",
		Name:      "collaborator_failures_total",
		Help:      "AI collaborator calls that returned a failure envelope.",
	}, []string{"kind"})
)

// Handler returns the /metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
