// Package logging assembles structured slog loggers and formatting helpers
// used across the rotation pipeline.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so run code can automatically tag log
// lines with run identifiers, list slugs, and stage names. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so components emit
// data with the same shape and routing guarantees as the rest of the system.
package logging
