// Package logger configures the process-wide logrus instance: level from
// config, JSON output in production/staging, colored text elsewhere.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/warp/rota-engine/config"
)

// Log is the shared logger instance.
var Log = logrus.New()

// Init applies configuration to the shared logger.
func Init(cfg *config.AppConfig) {
	Log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		Log.Warnf("invalid log level %q, defaulting to info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	switch cfg.Environment {
	case "production", "staging":
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
}

// Get returns the configured shared logger.
func Get() *logrus.Logger {
	return Log
}
