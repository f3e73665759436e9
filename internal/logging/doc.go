// Package logging wires slog with the console and JSON handlers used across
// the daemon and CLI, plus the shared attribute helpers and field keys.
package logging
