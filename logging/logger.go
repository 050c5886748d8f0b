package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled
// from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger defines the minimal logging interface for Hive. This allows users
// to provide their own logger implementation or use the built-in adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NoOpLogger discards all log messages. Useful for testing or when logging
// is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}

// LoggerConfig controls output format and verbosity of the built-in logger.
type LoggerConfig struct {
	// Level is the minimum level emitted.
	Level LogLevel
	// Format selects "json" or "text" output.
	Format string
	// Output is the destination writer. Defaults to stderr.
	Output io.Writer
	// AddSource attaches file:line information to records.
	AddSource bool
}

// DefaultLoggerConfig returns a text logger at info level writing to stderr.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:  LogLevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// HiveLogger is a structured logger with contextual helpers for the
// orchestration domain. The zero value is not usable; construct via
// NewLogger.
type HiveLogger struct {
	logger    *slog.Logger
	component string
	runID     string
}

// NewLogger creates a HiveLogger from the given configuration.
func NewLogger(cfg LoggerConfig) *HiveLogger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     cfg.Level.slogLevel(),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	return &HiveLogger{logger: slog.New(handler)}
}

// WithComponent returns a derived logger tagged with a component name.
func (l *HiveLogger) WithComponent(component string) *HiveLogger {
	clone := *l
	clone.component = component
	return &clone
}

// WithRun returns a derived logger tagged with an orchestration run id.
func (l *HiveLogger) WithRun(runID string) *HiveLogger {
	clone := *l
	clone.runID = runID
	return &clone
}

func (l *HiveLogger) buildAttrs() []slog.Attr {
	var attrs []slog.Attr
	if l.component != "" {
		attrs = append(attrs, slog.String("component", l.component))
	}
	if l.runID != "" {
		attrs = append(attrs, slog.String("run_id", l.runID))
	}
	return attrs
}

func (l *HiveLogger) log(level slog.Level, msg string, args ...any) {
	attrs := l.buildAttrs()
	rec := l.logger
	for _, a := range attrs {
		rec = rec.With(a)
	}
	rec.Log(context.Background(), level, msg, args...)
}

// Debug logs a debug message.
func (l *HiveLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }

// Info logs an informational message.
func (l *HiveLogger) Info(msg string, args ...any) { l.log(slog.LevelInfo, msg, args...) }

// Warn logs a warning message.
func (l *HiveLogger) Warn(msg string, args ...any) { l.log(slog.LevelWarn, msg, args...) }

// Error logs an error message.
func (l *HiveLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }

// LogDelegation records one delegation round trip between two agents.
func (l *HiveLogger) LogDelegation(from, to, taskType string, dur time.Duration, success bool, err error) {
	attrs := l.buildAttrs()
	attrs = append(attrs,
		slog.String("from", from),
		slog.String("to", to),
		slog.String("task_type", taskType),
		slog.Duration("duration", dur),
		slog.Bool("success", success),
	)
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	level := slog.LevelDebug
	msg := "Delegation completed"
	if !success {
		level = slog.LevelWarn
		msg = "Delegation failed"
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogSubtask records the terminal outcome of one subtask execution.
func (l *HiveLogger) LogSubtask(subtaskID, agentID string, dur time.Duration, success bool, errMsg string) {
	attrs := l.buildAttrs()
	attrs = append(attrs,
		slog.String("subtask_id", subtaskID),
		slog.String("agent_id", agentID),
		slog.Duration("duration", dur),
		slog.Bool("success", success),
	)
	if errMsg != "" {
		attrs = append(attrs, slog.String("error", errMsg))
	}

	level := slog.LevelDebug
	msg := "Subtask completed"
	if !success {
		level = slog.LevelWarn
		msg = "Subtask failed"
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogRun records aggregate metrics of one orchestrated run.
func (l *HiveLogger) LogRun(operation string, subtasks int, dur time.Duration, status string) {
	attrs := l.buildAttrs()
	attrs = append(attrs,
		slog.String("operation", operation),
		slog.Int("subtask_count", subtasks),
		slog.Duration("duration", dur),
		slog.String("status", status),
	)

	level := slog.LevelInfo
	msg := "Run completed"
	if status == "failed" {
		level = slog.LevelError
		msg = "Run failed"
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// StartTimer returns a closure that logs the elapsed duration when invoked.
func (l *HiveLogger) StartTimer(op string) func() {
	start := time.Now()
	return func() { l.Info("Operation completed", "operation", op, "duration", time.Since(start)) }
}

// NewSlogLogger creates a new HiveLogger with the specified configuration.
func NewSlogLogger(level LogLevel, format string, addSource bool) *HiveLogger {
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	if format != "" {
		cfg.Format = format
	}
	cfg.AddSource = addSource
	return NewLogger(cfg)
}
