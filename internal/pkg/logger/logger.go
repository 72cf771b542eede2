package logger

import (
	"io"
	"os"
	"strings"

	"github.com/ds124wfegd/electrorescue/config"
	"github.com/sirupsen/logrus"
)

// Init configures the global logrus logger.
func Init(cfg config.LoggingConfig, out io.Writer) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.Warnf("Invalid log level '%s', using 'info' instead. Error: %v", cfg.Level, err)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		logrus.SetFormatter(new(logrus.JSONFormatter))
	}

	if out == nil {
		out = os.Stdout
	}
	logrus.SetOutput(out)
}
