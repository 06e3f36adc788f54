// Package logging builds the slog loggers used by every cymap process.
//
// Two output formats are supported: a compact console format for interactive
// use and JSON for service logs. The "auto" format picks console when stdout
// is a terminal. Attr helpers and standardized field keys keep log output
// uniform across the scanner, worker, poller, and dashboard.
package logging
