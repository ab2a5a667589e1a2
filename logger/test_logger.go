package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// NewTestLogger creates a logger backed by an in-memory observer core.
// Tests assert against the returned ObservedLogs:
//
//	log, logs := logger.NewTestLogger()
//	admin := cache.NewAdmin(store, cfg, log)
//	...
//	require.Equal(t, 1, logs.FilterMessage("cache cleared").Len())
func NewTestLogger() (*CtxZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := DefaultManagerConfig()
	return &CtxZapLogger{
		base:   zap.New(core),
		module: "test",
		config: &cfg,
	}, logs
}

// NewNopLogger creates a logger that drops everything. Useful where a
// logger is required but its output is irrelevant.
func NewNopLogger() *CtxZapLogger {
	cfg := DefaultManagerConfig()
	return &CtxZapLogger{
		base:   zap.NewNop(),
		module: "nop",
		config: &cfg,
	}
}
