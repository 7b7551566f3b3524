// Package logger provides structured logging on top of zerolog.
package logger

import (
	"context"
	"fmt"
	"os"
	"strings"

	"CourseBridge/pkg/correlation"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with printf-style level methods and
// context-aware variants that attach the correlation ID.
type Logger struct {
	logger *zerolog.Logger
}

// New creates a Logger with the given level (debug, info, warn, error).
func New(level string) *Logger {
	var l zerolog.Level

	switch strings.ToLower(level) {
	case "error":
		l = zerolog.ErrorLevel
	case "warn", "warning":
		l = zerolog.WarnLevel
	case "info":
		l = zerolog.InfoLevel
	case "debug":
		l = zerolog.DebugLevel
	case "disabled":
		l = zerolog.Disabled
	default:
		l = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(l)

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	return &Logger{logger: &logger}
}

func (l *Logger) Debug(format string, args ...any) {
	l.log(l.logger.Debug(), format, args...)
}

func (l *Logger) Info(format string, args ...any) {
	l.log(l.logger.Info(), format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.log(l.logger.Warn(), format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.log(l.logger.Error(), format, args...)
}

// Fatal logs the error and terminates the process.
func (l *Logger) Fatal(err error) {
	l.logger.Fatal().Msg(err.Error())
}

func (l *Logger) DebugCtx(ctx context.Context, format string, args ...any) {
	l.log(withCorrelation(ctx, l.logger.Debug()), format, args...)
}

func (l *Logger) InfoCtx(ctx context.Context, format string, args ...any) {
	l.log(withCorrelation(ctx, l.logger.Info()), format, args...)
}

func (l *Logger) WarnCtx(ctx context.Context, format string, args ...any) {
	l.log(withCorrelation(ctx, l.logger.Warn()), format, args...)
}

func (l *Logger) ErrorCtx(ctx context.Context, format string, args ...any) {
	l.log(withCorrelation(ctx, l.logger.Error()), format, args...)
}

func (l *Logger) log(event *zerolog.Event, format string, args ...any) {
	if len(args) == 0 {
		event.Msg(format)
		return
	}
	event.Msg(fmt.Sprintf(format, args...))
}

func withCorrelation(ctx context.Context, event *zerolog.Event) *zerolog.Event {
	if corrID := correlation.FromContext(ctx); corrID != "" {
		event = event.Str("correlation_id", corrID)
	}
	return event
}
