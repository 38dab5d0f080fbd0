package logging

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ToolResult mirrors the fields of a dispatched tool call worth
// auditing, independent of pkg/types to keep this package's import
// graph shallow.
type ToolResult struct {
	CorrelationID string
	ToolName      string
	InputRaw      string
	Output        string
	IsError       bool
	Duration      time.Duration
}

// AuditLogger is an append-only, always-info-level record of
// tool-related events: tool dispatches (LogToolDispatch), estop
// engagements, and context truncations. Each event is recorded only
// where a caller invokes the matching method.
type AuditLogger struct {
	zl *zap.Logger
}

// NewAuditLogger builds an audit logger rotated at path.
func NewAuditLogger(path string) *AuditLogger {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(rotator), zapcore.InfoLevel)
	return &AuditLogger{zl: zap.New(core)}
}

// NewCorrelationID mints a fresh correlation id for one agent turn.
func NewCorrelationID() string { return uuid.NewString() }

// LogToolDispatch records one completed tool call.
func (a *AuditLogger) LogToolDispatch(r ToolResult) {
	result := "success"
	if r.IsError {
		result = "error"
	}
	a.zl.Info("tool_dispatch",
		zap.String("correlation_id", r.CorrelationID),
		zap.String("tool", r.ToolName),
		zap.String("input", r.InputRaw),
		zap.String("output", r.Output),
		zap.String("result", result),
		zap.Duration("duration", r.Duration),
	)
}

// LogEstop records the engagement of the robotics estop latch.
func (a *AuditLogger) LogEstop(correlationID string) {
	a.zl.Info("estop_engaged", zap.String("correlation_id", correlationID))
}

// LogTruncation records a context-window truncation pass.
func (a *AuditLogger) LogTruncation(correlationID string, droppedMessages int) {
	a.zl.Info("context_truncated",
		zap.String("correlation_id", correlationID),
		zap.Int("dropped_messages", droppedMessages),
	)
}

// Sync flushes the underlying zap core.
func (a *AuditLogger) Sync() error { return a.zl.Sync() }

type correlationIDKey struct{}

// ContextWithCorrelationID attaches id to ctx so audit hooks further
// down the call graph (the ReAct loop, the robotics tool table) can record it
// without an extra parameter threaded through every signature between
// the ReAct loop and the point of use.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationIDFromContext returns the id set by ContextWithCorrelationID,
// or "" if none was set.
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}
