// Package logging builds the process-wide slog logger from configuration:
// level and format parsing with json and text handlers. Components receive
// the logger by injection and fall back to slog.Default when given nil.
package logging
