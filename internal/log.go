package internal

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	charm "github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mattn/go-isatty"
)

var _logHandler *charm.Logger

// Log returns a logger scoped to the request ID if present in the context.
func Log(ctx context.Context) *slog.Logger {
	return slog.Default().With("trace", ctx.Value(middleware.RequestIDKey))
}

// SetLogLevel adjusts the default handler's verbosity.
func SetLogLevel(level charm.Level) {
	_logHandler.SetLevel(level)
}

// WithTrace attaches a request ID to the context so log lines from background
// work can be correlated.
func WithTrace(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, middleware.RequestIDKey, id)
}

// set up our default log handler and formatting.
func init() {
	styles := charm.DefaultStyles()
	styles.Keys["err"] = lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Bold(true)
	styles.Keys["path"] = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	styles.Values["trace"] = lipgloss.NewStyle().Faint(true)

	_logHandler = charm.NewWithOptions(os.Stdout, charm.Options{
		ReportTimestamp: true,
		TimeFormat:      time.StampMilli,
		Level:           charm.InfoLevel,
	})
	_logHandler.SetStyles(styles)

	// Output JSON in containers.
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		_logHandler.SetFormatter(
			charm.JSONFormatter,
		)
		_logHandler.SetTimeFormat(time.RFC3339)
	}

	logger := slog.New(_logHandler)
	slog.SetDefault(logger)
}
