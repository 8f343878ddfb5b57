package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jgtann/gdp-dashboard/internal/config"
)

type contextKey string

// TraceIDContextKey stores the trace ID read by the log handler
const TraceIDContextKey contextKey = "trace_id"

// processLog is the server's logger and the file it may own
var processLog struct {
	mu     sync.Mutex
	once   sync.Once
	logger *slog.Logger
	err    error
	file   *os.File
}

// InitializeLogger builds the server logger from cfg and installs it as the
// slog default. Later calls return the first result.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	processLog.once.Do(func() {
		w, file, err := logOutput(cfg)
		if err != nil {
			processLog.err = err
			return
		}
		logger := newJSONLogger(w, cfg.Level, cfg.Development)

		processLog.mu.Lock()
		processLog.logger, processLog.file = logger, file
		processLog.mu.Unlock()
		slog.SetDefault(logger)
	})
	return processLog.logger, processLog.err
}

// GetLogger returns the server logger, or slog.Default before InitializeLogger
func GetLogger() *slog.Logger {
	processLog.mu.Lock()
	defer processLog.mu.Unlock()
	if processLog.logger == nil {
		return slog.Default()
	}
	return processLog.logger
}

// NewLogger builds a standalone JSON logger writing to w. The CLI uses it
// to keep stdout free for command output.
func NewLogger(w io.Writer, level string) *slog.Logger {
	return newJSONLogger(w, level, false)
}

func newJSONLogger(w io.Writer, level string, addSource bool) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: addSource,
		Level:     parseLogLevel(level),
	})
	return slog.New(&traceHandler{Handler: handler})
}

// logOutput resolves the "console", "file" or "both" output. The returned
// file is nil for console output.
func logOutput(cfg config.LoggingConfig) (io.Writer, *os.File, error) {
	output := strings.ToLower(cfg.Output)
	if output != "file" && output != "both" {
		return os.Stdout, nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, nil, fmt.Errorf("create log directory for %s: %w", cfg.FilePath, err)
	}
	file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", cfg.FilePath, err)
	}
	if output == "both" {
		return io.MultiWriter(os.Stdout, file), file, nil
	}
	return file, file, nil
}

// traceHandler adds the context's trace_id to every record
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID := GetTraceID(ctx); traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

// parseLogLevel maps a config level to slog; unknown levels are info
func parseLogLevel(level string) slog.Level {
	var l slog.Level
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// WithTraceID stores traceID for log correlation
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID returns the stored trace ID, falling back to the active
// OpenTelemetry span
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if traceID, _ := ctx.Value(TraceIDContextKey).(string); traceID != "" {
		return traceID
	}
	return TraceIDFromContext(ctx)
}

// CloseLogFile closes the log file opened by InitializeLogger, if any
func CloseLogFile() error {
	processLog.mu.Lock()
	defer processLog.mu.Unlock()
	if processLog.file == nil {
		return nil
	}
	err := processLog.file.Close()
	processLog.file = nil
	return err
}

// ResetLoggerForTesting forgets the server logger so a test can initialize
// it again
func ResetLoggerForTesting() {
	_ = CloseLogFile()
	processLog.mu.Lock()
	processLog.logger, processLog.err = nil, nil
	processLog.once = sync.Once{}
	processLog.mu.Unlock()
}
