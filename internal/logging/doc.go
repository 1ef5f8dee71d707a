// Package logging assembles structured slog loggers and formatting helpers
// used across texlapse.
//
// It owns the console/JSON handlers, centralizes level plumbing, and exposes
// context-aware helpers so pipeline code can automatically tag log lines with
// run identifiers, commit hashes, and stage names. The package also provides
// a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
