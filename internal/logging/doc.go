// Package logging assembles structured slog loggers and formatting helpers used
// across capturedesk.
//
// It owns the console/JSON handlers, level and output plumbing, and the
// context helpers that tag log lines with request correlation IDs. A no-op
// logger is provided for tests and wiring code that cannot fail.
package logging
