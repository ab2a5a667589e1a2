package component

// Component name constants.
const (
	ComponentConfig = "config"
	ComponentLogger = "logger"
	ComponentRedis  = "redis"
	ComponentEvent  = "event"
	ComponentCache  = "cache"
)
