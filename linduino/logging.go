package main

import (
	"fmt"
	"io"

	"github.com/itohio/golinduino/pkg/config"
	"github.com/sirupsen/logrus"
)

// configureLogger applies the logging section to log. verbose forces debug level.
func configureLogger(log *logrus.Logger, out io.Writer, cfg config.LoggingConfig, verbose bool) error {
	log.SetOutput(out)

	levelName := cfg.Level
	if levelName == "" {
		levelName = "info"
	}
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	if verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	switch cfg.Format {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format %q: want text or json", cfg.Format)
	}
	return nil
}
