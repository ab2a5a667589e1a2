// Package logger provides module-bound, context-aware zap loggers.
// Each module gets its own logger from the Manager; the wrapper enriches
// records with app_name and the active trace id.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Manager creates and caches one CtxZapLogger per module.
type Manager struct {
	baseConfig ManagerConfig
	loggers    map[string]*CtxZapLogger
	writers    []*lumberjack.Logger
	mu         sync.RWMutex
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// NewManager creates an independent Manager. Zero-valued config fields are
// filled with defaults.
func NewManager(cfg ManagerConfig) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		baseConfig: cfg,
		loggers:    make(map[string]*CtxZapLogger),
	}
}

// InitManager initializes the global manager. Only the first call wins.
func InitManager(cfg ManagerConfig) {
	managerOnce.Do(func() {
		globalManager = NewManager(cfg)
	})
}

// GetLogger returns the global manager's logger for a module, initializing
// the global manager with defaults when nothing was configured.
func GetLogger(moduleName string) *CtxZapLogger {
	if globalManager == nil {
		InitManager(DefaultManagerConfig())
	}
	return globalManager.GetLogger(moduleName)
}

// CloseAll flushes and closes the global manager's loggers. Safe to call
// when the global manager was never initialized.
func CloseAll() error {
	if globalManager == nil {
		return nil
	}
	return globalManager.Close()
}

// GetLogger returns the logger for a module, creating it on first use.
// The returned logger already carries the module field.
func (m *Manager) GetLogger(moduleName string) *CtxZapLogger {
	m.mu.RLock()
	if l, ok := m.loggers[moduleName]; ok {
		m.mu.RUnlock()
		return l
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check under the write lock.
	if l, ok := m.loggers[moduleName]; ok {
		return l
	}

	base := m.createLogger(moduleName).
		With(zap.String("module", moduleName)).
		WithOptions(zap.AddCallerSkip(1))

	l := &CtxZapLogger{
		base:   base,
		module: moduleName,
		config: &m.baseConfig,
	}
	m.loggers[moduleName] = l
	return l
}

// Sync flushes all cached loggers.
func (m *Manager) Sync() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.loggers {
		_ = l.base.Sync()
	}
}

// Close flushes loggers and closes rotated file writers.
func (m *Manager) Close() error {
	m.Sync()

	m.mu.Lock()
	defer m.mu.Unlock()
	var lastErr error
	for _, w := range m.writers {
		if err := w.Close(); err != nil {
			lastErr = err
		}
	}
	m.writers = nil
	return lastErr
}

func (m *Manager) createLogger(moduleName string) *zap.Logger {
	cfg := m.baseConfig
	level := ParseLevel(cfg.Level)
	encoder := createEncoder(cfg.Encoding)

	var cores []zapcore.Core

	if cfg.EnableConsole {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level))
	}

	if cfg.EnableFile {
		lj := &lumberjack.Logger{
			Filename:   cfg.filePath(moduleName),
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		m.writers = append(m.writers, lj)
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(lj), level))
	}

	if len(cores) == 0 {
		return zap.NewNop()
	}

	opts := []zap.Option{}
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(zapcore.NewTee(cores...), opts...)
}

func createEncoder(encoding string) zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if encoding == "console" {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encCfg)
	}
	return zapcore.NewJSONEncoder(encCfg)
}
