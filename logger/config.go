package logger

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
)

// ManagerConfig is the shared configuration for every module logger the
// Manager hands out.
type ManagerConfig struct {
	// BaseLogDir is the root directory for log files (default "logs").
	BaseLogDir string `mapstructure:"base_log_dir"`

	// Level is the minimum level: debug, info, warn, error.
	Level string `mapstructure:"level"`

	// AppName is injected into every record as the app_name field.
	AppName string `mapstructure:"app_name"`

	// Encoding is json or console.
	Encoding string `mapstructure:"encoding"`

	// EnableConsole mirrors records to stdout.
	EnableConsole bool `mapstructure:"enable_console"`

	// EnableFile writes records to {BaseLogDir}/{module}.log with rotation.
	EnableFile bool `mapstructure:"enable_file"`

	// Rotation settings, passed through to lumberjack.
	MaxSize    int  `mapstructure:"max_size"` // MB per file
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"` // days
	Compress   bool `mapstructure:"compress"`

	EnableCaller bool `mapstructure:"enable_caller"`

	// EnableTraceID extracts the active span's trace id from the context
	// and attaches it as the trace_id field.
	EnableTraceID bool `mapstructure:"enable_trace_id"`

	// TraceIDFieldName overrides the trace id field name (default "trace_id").
	TraceIDFieldName string `mapstructure:"trace_id_field_name"`
}

// DefaultManagerConfig returns the configuration used when nothing is set.
func DefaultManagerConfig() ManagerConfig {
	cfg := ManagerConfig{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued fields in place.
func (c *ManagerConfig) ApplyDefaults() {
	if c.BaseLogDir == "" {
		c.BaseLogDir = "logs"
	}
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Encoding == "" {
		c.Encoding = "json"
	}
	if c.MaxSize <= 0 {
		c.MaxSize = 100
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = 10
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 30
	}
	if c.TraceIDFieldName == "" {
		c.TraceIDFieldName = "trace_id"
	}
}

// filePath returns the log file path for a module.
func (c *ManagerConfig) filePath(moduleName string) string {
	return filepath.Join(c.BaseLogDir, moduleName+".log")
}

// ParseLevel converts a level string to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
