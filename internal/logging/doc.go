// Package logging assembles the structured slog loggers used across ctkirep.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes helpers for tagging loggers with component names and ingestion
// run identifiers. A no-op logger is available for tests and wiring code that
// cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape.
package logging
