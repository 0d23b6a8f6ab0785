package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

// =============================================================================
// Logger Construction
// =============================================================================

// newLogger creates a charm logger writing to w at the given level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// =============================================================================
// Context Logger
// =============================================================================

type ctxKey int

const loggerKey ctxKey = 0

// withLogger stores a logger in the context.
func withLogger(ctx context.Context, logger *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// loggerFromContext retrieves the logger from the context, falling back to
// the package default.
func loggerFromContext(ctx context.Context) *log.Logger {
	if logger, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return logger
	}
	return log.Default()
}
