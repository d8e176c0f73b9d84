package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

var logger = zerolog.Nop()

// Init configures the process logger. Pretty output is meant for local
// development; otherwise one JSON object is written per line.
func Init(level string, pretty bool) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	SetOutput(out, lvl)
	return nil
}

// SetOutput replaces the process logger; tests use it to capture output.
func SetOutput(w io.Writer, lvl zerolog.Level) {
	logger = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Logger returns the process logger for code without a request context.
func Logger() *zerolog.Logger {
	return &logger
}

// WithContext tags the logger with the request id set by the router, if any.
func WithContext(ctx context.Context) zerolog.Logger {
	reqID := middleware.GetReqID(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With().Str("requestId", reqID).Logger()
}

// Info starts an info event tagged with the request id from ctx.
func Info(ctx context.Context) *zerolog.Event {
	l := WithContext(ctx)
	return l.Info()
}

// Warn starts a warn event tagged with the request id from ctx.
func Warn(ctx context.Context) *zerolog.Event {
	l := WithContext(ctx)
	return l.Warn()
}

// Error starts an error event tagged with the request id from ctx.
func Error(ctx context.Context) *zerolog.Event {
	l := WithContext(ctx)
	return l.Error()
}

// Debug starts a debug event tagged with the request id from ctx.
func Debug(ctx context.Context) *zerolog.Event {
	l := WithContext(ctx)
	return l.Debug()
}
