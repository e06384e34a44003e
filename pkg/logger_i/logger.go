package logger_i

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/akolanti/DocRAG/internal/config"
)

// Logger resolves slog.Default on every call, so package level loggers
// created before Init still pick up the configured handler.
type Logger struct {
	attrs []any
}

// Init installs the process wide handler, json for prod style deployments and text otherwise.
func Init(settings config.LogSettings) {
	options := &slog.HandlerOptions{
		Level: parseLevel(settings.Level),
	}

	var handler slog.Handler
	if settings.JSON {
		handler = slog.NewJSONHandler(os.Stdout, options)
	} else {
		handler = slog.NewTextHandler(os.Stdout, options)
	}
	slog.SetDefault(slog.New(handler))
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(level)))); err != nil {
		return config.LOG_LEVEL_PROD
	}
	return l
}

func NewLogger(section string) *Logger {
	return &Logger{
		attrs: []any{"component", section},
	}
}

func (l *Logger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(slog.LevelError, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, msg, args...)
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	base := slog.Default()
	if !base.Enabled(context.Background(), level) {
		return
	}
	base.With(l.attrs...).Log(context.Background(), level, msg, args...)
}

func (l *Logger) With(args ...any) *Logger {
	attrs := make([]any, 0, len(l.attrs)+len(args))
	attrs = append(attrs, l.attrs...)
	return &Logger{
		attrs: append(attrs, args...),
	}
}

// WithTrace tags the logger with the trace id carried by ctx, if any.
func (l *Logger) WithTrace(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	if trace, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok && trace != "" {
		return l.With(config.TRACE_ID_KEY, trace)
	}
	return l
}
