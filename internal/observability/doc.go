// Package observability provides logging, metrics, and context helpers for
// the scholarly infrastructure layer.
//
// # Overview
//
// The observability package provides:
//
//   - Structured logging with zerolog
//   - Prometheus metrics for provider calls and gateway requests
//   - Context helpers for propagating request identifiers
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger = observability.WithProviderContext(logger, "EuropePMC", "title_search")
//
// # Metrics
//
// Initialize metrics:
//
//	metrics := observability.NewMetrics("scholapi")
//	metrics.RecordProviderCall("EuropePMC", "title_search", 0.42)
//
// # Standard Fields
//
// Common fields used across the service:
//
//   - provider: display name of the provider
//   - operation: title_search, publication_lookup, full_text_search, get_handle, get_meta
//   - query: the title, identifier, term, or handle being looked up
//   - elapsed_ms: wall-clock time of one provider call
//   - request_id: gateway correlation identifier
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability
