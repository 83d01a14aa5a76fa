package observability

import (
	appconfig "github.com/smallpress/folio/internal/config"
)

// Config carries the observability settings derived from app config.
type Config struct {
	ServiceName string
	Environment string
	Version     string
	LogLevel    string
	LogFormat   string
}

func LoadConfig(cfg appconfig.Config) Config {
	return Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
		Version:     cfg.AppVersion,
		LogLevel:    cfg.LogLevel,
		LogFormat:   cfg.LogFormat,
	}
}

func (c Config) Debug() bool {
	return c.Environment != "production"
}
