package main

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

var serverStartTime = time.Now()

// HTTP metrics
var (
	httpRequestsTotal atomic.Int64
	httpErrorsTotal   atomic.Int64
)

// Pipeline metrics
var (
	decksBuiltTotal       atomic.Int64
	deckRootNotFoundTotal atomic.Int64
	deckNoImagesTotal     atomic.Int64
	deckFetchFailedTotal  atomic.Int64
)

// Relay metrics
var (
	relayEventsTotal  atomic.Int64
	droppedEventCount atomic.Int64
)

// Cache metrics
var (
	cacheHitsTotal   atomic.Int64
	cacheMissesTotal atomic.Int64
)

// SSE connection metrics
var (
	sseConnectionsActive atomic.Int64
)

// metricsHandler serves Prometheus-compatible metrics
func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	// Build info metric
	fmt.Fprintf(w, "# HELP slidestr_build_info Build and configuration information\n")
	fmt.Fprintf(w, "# TYPE slidestr_build_info gauge\n")
	fmt.Fprintf(w, "slidestr_build_info{cache_backend=%q,go_version=%q} 1\n\n", cacheBackendType, runtime.Version())

	// Process metrics
	fmt.Fprintf(w, "# HELP process_start_time_seconds Unix timestamp of process start\n")
	fmt.Fprintf(w, "# TYPE process_start_time_seconds gauge\n")
	fmt.Fprintf(w, "process_start_time_seconds %d\n\n", serverStartTime.Unix())

	fmt.Fprintf(w, "# HELP process_uptime_seconds Time since process started\n")
	fmt.Fprintf(w, "# TYPE process_uptime_seconds gauge\n")
	fmt.Fprintf(w, "process_uptime_seconds %.0f\n\n", time.Since(serverStartTime).Seconds())

	// Go runtime metrics
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	fmt.Fprintf(w, "# HELP go_goroutines Number of active goroutines\n")
	fmt.Fprintf(w, "# TYPE go_goroutines gauge\n")
	fmt.Fprintf(w, "go_goroutines %d\n\n", runtime.NumGoroutine())

	fmt.Fprintf(w, "# HELP go_memstats_alloc_bytes Currently allocated memory in bytes\n")
	fmt.Fprintf(w, "# TYPE go_memstats_alloc_bytes gauge\n")
	fmt.Fprintf(w, "go_memstats_alloc_bytes %d\n\n", memStats.Alloc)

	fmt.Fprintf(w, "# HELP go_memstats_sys_bytes Total memory obtained from the OS\n")
	fmt.Fprintf(w, "# TYPE go_memstats_sys_bytes gauge\n")
	fmt.Fprintf(w, "go_memstats_sys_bytes %d\n\n", memStats.Sys)

	// HTTP metrics
	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", httpRequestsTotal.Load())

	fmt.Fprintf(w, "# HELP http_errors_total Total number of HTTP 5xx errors\n")
	fmt.Fprintf(w, "# TYPE http_errors_total counter\n")
	fmt.Fprintf(w, "http_errors_total %d\n\n", httpErrorsTotal.Load())

	// Pipeline metrics
	fmt.Fprintf(w, "# HELP slidestr_decks_built_total Slide decks built successfully\n")
	fmt.Fprintf(w, "# TYPE slidestr_decks_built_total counter\n")
	fmt.Fprintf(w, "slidestr_decks_built_total %d\n\n", decksBuiltTotal.Load())

	fmt.Fprintf(w, "# HELP slidestr_deck_failures_total Pipeline failures by reason\n")
	fmt.Fprintf(w, "# TYPE slidestr_deck_failures_total counter\n")
	fmt.Fprintf(w, "slidestr_deck_failures_total{reason=\"root_not_found\"} %d\n", deckRootNotFoundTotal.Load())
	fmt.Fprintf(w, "slidestr_deck_failures_total{reason=\"no_images\"} %d\n", deckNoImagesTotal.Load())
	fmt.Fprintf(w, "slidestr_deck_failures_total{reason=\"fetch_failed\"} %d\n\n", deckFetchFailedTotal.Load())

	// Relay metrics
	fmt.Fprintf(w, "# HELP slidestr_relay_events_total Events received from relays\n")
	fmt.Fprintf(w, "# TYPE slidestr_relay_events_total counter\n")
	fmt.Fprintf(w, "slidestr_relay_events_total %d\n\n", relayEventsTotal.Load())

	fmt.Fprintf(w, "# HELP slidestr_events_dropped_total Events dropped due to full channels\n")
	fmt.Fprintf(w, "# TYPE slidestr_events_dropped_total counter\n")
	fmt.Fprintf(w, "slidestr_events_dropped_total %d\n\n", droppedEventCount.Load())

	// Connection pool metrics
	activeConns, maxConns := relayPool.GetConnectionStats()
	fmt.Fprintf(w, "# HELP slidestr_relay_connections_active Number of active relay connections\n")
	fmt.Fprintf(w, "# TYPE slidestr_relay_connections_active gauge\n")
	fmt.Fprintf(w, "slidestr_relay_connections_active %d\n\n", activeConns)

	fmt.Fprintf(w, "# HELP slidestr_relay_connections_max Maximum relay connections allowed\n")
	fmt.Fprintf(w, "# TYPE slidestr_relay_connections_max gauge\n")
	fmt.Fprintf(w, "slidestr_relay_connections_max %d\n\n", maxConns)

	// SSE metrics
	fmt.Fprintf(w, "# HELP sse_connections_active Number of active SSE connections\n")
	fmt.Fprintf(w, "# TYPE sse_connections_active gauge\n")
	fmt.Fprintf(w, "sse_connections_active %d\n\n", sseConnectionsActive.Load())

	// Cache metrics
	cacheHits := cacheHitsTotal.Load()
	cacheMisses := cacheMissesTotal.Load()

	fmt.Fprintf(w, "# HELP cache_hits_total Total cache hits\n")
	fmt.Fprintf(w, "# TYPE cache_hits_total counter\n")
	fmt.Fprintf(w, "cache_hits_total %d\n\n", cacheHits)

	fmt.Fprintf(w, "# HELP cache_misses_total Total cache misses\n")
	fmt.Fprintf(w, "# TYPE cache_misses_total counter\n")
	fmt.Fprintf(w, "cache_misses_total %d\n\n", cacheMisses)

	// Cache hit ratio (useful for alerting)
	var hitRatio float64
	if total := cacheHits + cacheMisses; total > 0 {
		hitRatio = float64(cacheHits) / float64(total)
	}
	fmt.Fprintf(w, "# HELP cache_hit_ratio Cache hit ratio (0-1)\n")
	fmt.Fprintf(w, "# TYPE cache_hit_ratio gauge\n")
	fmt.Fprintf(w, "cache_hit_ratio %.4f\n", hitRatio)
}
