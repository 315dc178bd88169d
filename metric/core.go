package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Set holds the robot's collectors, registered in a private registry.
type Set struct {
	registry *prometheus.Registry

	EventsReceived      *prometheus.CounterVec
	RequestsTotal       *prometheus.CounterVec
	RequestsFailed      *prometheus.CounterVec
	OperationsSubmitted prometheus.Counter
	SubmitDuration      *prometheus.HistogramVec
	AuthFailures        prometheus.Counter
}

// NewSet builds and registers the robot's collectors together with the Go
// runtime and process collectors.
func NewSet() *Set {
	s := &Set{
		registry: prometheus.NewRegistry(),

		EventsReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "waverobot",
				Subsystem: "events",
				Name:      "received_total",
				Help:      "Events received in inbound bundles, by event type",
			},
			[]string{"type"},
		),

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "waverobot",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Inbound HTTP requests, by route",
			},
			[]string{"route"},
		),

		RequestsFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "waverobot",
				Subsystem: "http",
				Name:      "requests_failed_total",
				Help:      "Inbound HTTP requests that failed, by route",
			},
			[]string{"route"},
		),

		OperationsSubmitted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "waverobot",
				Subsystem: "rpc",
				Name:      "operations_submitted_total",
				Help:      "Operations submitted to active gateways",
			},
		),

		SubmitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "waverobot",
				Subsystem: "rpc",
				Name:      "submit_duration_seconds",
				Help:      "Duration of gateway submissions",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"gateway", "status"},
		),

		AuthFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "waverobot",
				Subsystem: "auth",
				Name:      "failures_total",
				Help:      "Inbound requests rejected by OAuth validation",
			},
		),
	}

	s.registry.MustRegister(
		s.EventsReceived,
		s.RequestsTotal,
		s.RequestsFailed,
		s.OperationsSubmitted,
		s.SubmitDuration,
		s.AuthFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return s
}

// Handler returns the /metrics endpoint handler for this set's registry.
func (s *Set) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (s *Set) Registry() *prometheus.Registry { return s.registry }

// RecordEventReceived counts one inbound event of the given type.
func (s *Set) RecordEventReceived(eventType string) {
	if s == nil {
		return
	}
	s.EventsReceived.WithLabelValues(eventType).Inc()
}

// RecordRequest counts one inbound HTTP request on a route, and its
// failure when ok is false.
func (s *Set) RecordRequest(route string, ok bool) {
	if s == nil {
		return
	}
	s.RequestsTotal.WithLabelValues(route).Inc()
	if !ok {
		s.RequestsFailed.WithLabelValues(route).Inc()
	}
}

// RecordAuthFailure counts one rejected inbound request.
func (s *Set) RecordAuthFailure() {
	if s == nil {
		return
	}
	s.AuthFailures.Inc()
}

// AddOperationsSubmitted counts operations sent to a gateway.
func (s *Set) AddOperationsSubmitted(n int) {
	if s == nil {
		return
	}
	s.OperationsSubmitted.Add(float64(n))
}

// ObserveSubmit records the duration and outcome of one gateway
// submission.
func (s *Set) ObserveSubmit(gateway string, d time.Duration, ok bool) {
	if s == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	s.SubmitDuration.WithLabelValues(gateway, status).Observe(d.Seconds())
}
