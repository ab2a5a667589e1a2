package application

import (
	"context"

	"github.com/CleanExpo/zenith-cache/component"
	"github.com/CleanExpo/zenith-cache/logger"
)

// LoggerComponent initializes the global logger manager from the
// "logger" configuration section.
type LoggerComponent struct {
	coreLogger *logger.CtxZapLogger
}

func NewLoggerComponent() *LoggerComponent {
	return &LoggerComponent{}
}

func (l *LoggerComponent) Name() string {
	return component.ComponentLogger
}

func (l *LoggerComponent) DependsOn() []string {
	return []string{component.ComponentConfig}
}

func (l *LoggerComponent) Init(ctx context.Context, loader component.ConfigLoader) error {
	cfg := logger.DefaultManagerConfig()
	if loader.IsSet("logger") {
		if err := loader.Unmarshal("logger", &cfg); err != nil {
			return err
		}
		cfg.ApplyDefaults()
	}
	logger.InitManager(cfg)
	l.coreLogger = logger.GetLogger("app")
	return nil
}

func (l *LoggerComponent) Start(ctx context.Context) error {
	return nil
}

func (l *LoggerComponent) Stop(ctx context.Context) error {
	return logger.CloseAll()
}

// GetLogger returns the application logger.
func (l *LoggerComponent) GetLogger() *logger.CtxZapLogger {
	return l.coreLogger
}
