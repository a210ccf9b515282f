package app

import (
	"github.com/studyforge/studyforge-backend/internal/pkg/logger"
	"github.com/studyforge/studyforge-backend/internal/platform/envutil"
)

type Config struct {
	Port        string
	LogMode     string
	MetricsAddr string

	ServiceVersion string
	Environment    string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:           envutil.String("PORT", "8080"),
		LogMode:        envutil.String("LOG_MODE", "development"),
		MetricsAddr:    envutil.String("METRICS_ADDR", ":9091"),
		ServiceVersion: envutil.String("SERVICE_VERSION", "dev"),
		Environment:    envutil.String("ENVIRONMENT", "development"),
	}
	log.Info("config loaded", "port", cfg.Port, "environment", cfg.Environment)
	return cfg
}
