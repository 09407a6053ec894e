// Package logging wires log/slog with the console and JSON handlers used by
// every memograph command, plus attribute helpers and context-derived fields.
package logging
