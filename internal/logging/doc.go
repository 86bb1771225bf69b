// Package logging assembles structured slog loggers and formatting helpers used
// across cdshelf.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers so catalog code tags log lines with
// record IDs and operation names consistently. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
package logging
