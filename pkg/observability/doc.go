// Package observability exposes Prometheus instrumentation for the decision
// engine: per-turn timing and counters over the decisions it emits.
package observability
