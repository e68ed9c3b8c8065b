package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the scholarly infrastructure
// layer. Provider metrics are labelled by provider and operation; gateway
// metrics by route, method, and status. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	// ProviderCallsTotal counts completed provider calls, labeled by provider and operation.
	ProviderCallsTotal *prometheus.CounterVec

	// ProviderCallsFailed counts failed provider calls, labeled by provider, operation, and error type.
	ProviderCallsFailed *prometheus.CounterVec

	// ProviderCallDuration observes provider call duration in seconds.
	ProviderCallDuration *prometheus.HistogramVec

	// ProviderNoMatch counts calls that completed without a matching record.
	ProviderNoMatch *prometheus.CounterVec

	// ProviderRateLimited counts 429 responses from providers.
	ProviderRateLimited *prometheus.CounterVec

	// ProviderThrottled counts requests held back by the local politeness limiter.
	ProviderThrottled *prometheus.CounterVec

	// GatewayRequestsTotal counts gateway HTTP requests, labeled by route, method, and status.
	GatewayRequestsTotal *prometheus.CounterVec

	// GatewayRequestDuration observes gateway request duration in seconds.
	GatewayRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance registered with the default
// Prometheus registry. The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates a Metrics instance registered with reg.
func NewMetricsWithRegistry(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Providers
		ProviderCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "Total number of provider calls completed",
		}, []string{"provider", "operation"}),
		ProviderCallsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_failed_total",
			Help:      "Total number of provider calls that failed",
		}, []string{"provider", "operation", "error_type"}),
		ProviderCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_duration_seconds",
			Help:      "Duration of provider calls in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider", "operation"}),
		ProviderNoMatch: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_no_match_total",
			Help:      "Total number of provider calls that found no matching record",
		}, []string{"provider", "operation"}),
		ProviderRateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_rate_limited_total",
			Help:      "Total number of rate-limited responses from providers",
		}, []string{"provider"}),
		ProviderThrottled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_throttled_total",
			Help:      "Total number of provider requests that waited for the local rate limiter",
		}, []string{"provider"}),

		// Gateway
		GatewayRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Total number of gateway HTTP requests",
		}, []string{"route", "method", "status"}),
		GatewayRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "Duration of gateway HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// RecordProviderCall records a completed provider call.
func (m *Metrics) RecordProviderCall(provider, operation string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.ProviderCallsTotal.WithLabelValues(provider, operation).Inc()
	m.ProviderCallDuration.WithLabelValues(provider, operation).Observe(durationSeconds)
}

// RecordProviderCallFailed records a failed provider call.
func (m *Metrics) RecordProviderCallFailed(provider, operation, errorType string) {
	if m == nil {
		return
	}
	m.ProviderCallsFailed.WithLabelValues(provider, operation, errorType).Inc()
}

// RecordProviderNoMatch records a call that found nothing.
func (m *Metrics) RecordProviderNoMatch(provider, operation string) {
	if m == nil {
		return
	}
	m.ProviderNoMatch.WithLabelValues(provider, operation).Inc()
}

// RecordProviderRateLimited records a rate limit response from a provider.
func (m *Metrics) RecordProviderRateLimited(provider string) {
	if m == nil {
		return
	}
	m.ProviderRateLimited.WithLabelValues(provider).Inc()
}

// RecordProviderThrottled records a request that had to wait for the
// local rate limiter.
func (m *Metrics) RecordProviderThrottled(provider string) {
	if m == nil {
		return
	}
	m.ProviderThrottled.WithLabelValues(provider).Inc()
}

// RecordGatewayRequest records one served gateway request.
func (m *Metrics) RecordGatewayRequest(route, method string, status int, durationSeconds float64) {
	if m == nil {
		return
	}
	m.GatewayRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.GatewayRequestDuration.WithLabelValues(route, method).Observe(durationSeconds)
}
