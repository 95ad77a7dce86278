// Package logging assembles structured slog loggers used across scriptforge.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with the project and batch being generated. The package also provides
// a no-op logger for tests and wiring code that cannot fail.
package logging
