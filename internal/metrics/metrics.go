// Recserve - Go Client for Recommendation Serving Layers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recserve

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the serving layer client:
// - Request latency and error rates per API operation
// - Circuit breaker state and transitions

var (
	// RequestDuration tracks serving layer request latency per operation.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "serving_request_duration_seconds",
			Help:    "Duration of serving layer API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// RequestErrors counts failed serving layer requests per operation.
	RequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serving_request_errors_total",
			Help: "Total number of failed serving layer API requests",
		},
		[]string{"operation", "kind"}, // kind: "transport", "status", "not_found", "unavailable", "decode"
	)

	// RateLimitRetries counts HTTP 429 retry attempts.
	RateLimitRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "serving_rate_limit_retries_total",
			Help: "Total number of retries triggered by HTTP 429 responses",
		},
	)

	// CircuitBreakerState tracks breaker state (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "serving_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// CircuitBreakerTransitions counts breaker state transitions.
	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serving_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// CircuitBreakerRequests counts requests by breaker outcome.
	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serving_circuit_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker",
		},
		[]string{"name", "outcome"}, // outcome: "success", "failure", "rejected"
	)
)
