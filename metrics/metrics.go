package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartclass_http_requests_total",
			Help: "Number of handled HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smartclass_http_request_duration_seconds",
			Help:    "Time taken to handle HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	GateRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartclass_gate_rejections_total",
			Help: "Requests rejected by the access control gate",
		},
		[]string{"reason"},
	)

	Settlements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartclass_settlements_total",
			Help: "Payment settlements by outcome",
		},
		[]string{"outcome"},
	)

	EventsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartclass_events_publish_failures_total",
			Help: "Domain events a publisher failed to deliver",
		},
		[]string{"publisher"},
	)
)

// Register adds every collector to the default registry.
func Register() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, GateRejections, Settlements, EventsDropped)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
