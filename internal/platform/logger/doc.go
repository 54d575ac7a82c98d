// Package logger provides structured logging for the application.
//
// It builds a log/slog JSON logger from configuration and carries a
// request-scoped logger through context.Context so that workers, stores and
// handlers all emit records tagged with the same trace ID.
package logger
