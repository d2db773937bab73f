// Package logging assembles structured slog loggers and formatting helpers used
// across the DeskBuddy orchestrator.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and defines the standard attribute keys (component, run_id,
// event_type) so launch, status, and bootstrap code emit records with the same
// shape. The package also provides a no-op logger for tests and wiring code
// that cannot fail.
package logging
