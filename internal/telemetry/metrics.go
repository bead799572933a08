/*
Copyright (C) 2026 Resonance Stream

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package telemetry provides Prometheus metrics and OpenTelemetry tracing.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// APIRequestsTotal counts HTTP requests by method, endpoint, and status.
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resonance_api_requests_total",
		Help: "Total HTTP API requests",
	}, []string{"method", "endpoint", "status"})

	// APIRequestDuration observes HTTP request latency.
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "resonance_api_request_duration_seconds",
		Help:    "HTTP API request duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	// APIActiveConnections gauges in-flight HTTP requests.
	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "resonance_api_active_connections",
		Help: "In-flight HTTP API requests",
	})

	// SearchStaleDrops counts seed-track search responses discarded because
	// a newer query settled while they were in flight.
	SearchStaleDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resonance_seed_search_stale_drops_total",
		Help: "Seed-track search responses dropped by the stale-response guard",
	})

	// MatchingRequestsTotal counts matching engine submissions by outcome.
	MatchingRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resonance_matching_requests_total",
		Help: "Matching engine submissions",
	}, []string{"outcome"})

	// CacheHits counts cache lookups by entity and outcome.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resonance_cache_lookups_total",
		Help: "Cache lookups",
	}, []string{"entity", "outcome"})
)

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
