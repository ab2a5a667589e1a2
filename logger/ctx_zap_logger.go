package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CtxZapLogger wraps a zap.Logger bound to one module. The module is fixed
// at creation time; call sites only pass a context, from which the active
// trace id is extracted when tracing is enabled.
type CtxZapLogger struct {
	base   *zap.Logger
	module string
	config *ManagerConfig
}

// DebugCtx logs at debug level with context enrichment.
func (l *CtxZapLogger) DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Debug(msg, l.enrichFields(ctx, fields)...)
}

// Debug logs at debug level without a context.
func (l *CtxZapLogger) Debug(msg string, fields ...zap.Field) {
	l.DebugCtx(context.Background(), msg, fields...)
}

// InfoCtx logs at info level with context enrichment.
func (l *CtxZapLogger) InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Info(msg, l.enrichFields(ctx, fields)...)
}

// Info logs at info level without a context.
func (l *CtxZapLogger) Info(msg string, fields ...zap.Field) {
	l.InfoCtx(context.Background(), msg, fields...)
}

// WarnCtx logs at warn level with context enrichment.
func (l *CtxZapLogger) WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Warn(msg, l.enrichFields(ctx, fields)...)
}

// Warn logs at warn level without a context.
func (l *CtxZapLogger) Warn(msg string, fields ...zap.Field) {
	l.WarnCtx(context.Background(), msg, fields...)
}

// ErrorCtx logs at error level with context enrichment.
func (l *CtxZapLogger) ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Error(msg, l.enrichFields(ctx, fields)...)
}

// Error logs at error level without a context.
func (l *CtxZapLogger) Error(msg string, fields ...zap.Field) {
	l.ErrorCtx(context.Background(), msg, fields...)
}

// With returns a logger carrying preset fields.
func (l *CtxZapLogger) With(fields ...zap.Field) *CtxZapLogger {
	return &CtxZapLogger{
		base:   l.base.With(fields...),
		module: l.module,
		config: l.config,
	}
}

// Module returns the module this logger is bound to.
func (l *CtxZapLogger) Module() string {
	return l.module
}

// GetZapLogger exposes the underlying zap.Logger for third-party
// integrations that want a plain zap instance.
func (l *CtxZapLogger) GetZapLogger() *zap.Logger {
	return l.base
}

func (l *CtxZapLogger) enrichFields(ctx context.Context, fields []zap.Field) []zap.Field {
	enriched := make([]zap.Field, 0, len(fields)+2)

	if l.config != nil && l.config.AppName != "" {
		enriched = append(enriched, zap.String("app_name", l.config.AppName))
	}

	if l.config != nil && l.config.EnableTraceID {
		if traceID := traceIDFromContext(ctx); traceID != "" {
			enriched = append(enriched, zap.String(l.config.TraceIDFieldName, traceID))
		}
	}

	return append(enriched, fields...)
}

// traceIDFromContext extracts the otel trace id from the active span.
func traceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.HasTraceID() {
		return ""
	}
	return spanCtx.TraceID().String()
}
