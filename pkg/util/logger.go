package util

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ConfigureLogging sets the level and output format of the shared logger.
func ConfigureLogging(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "log level %q", level)
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stdout)

	if strings.EqualFold(format, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// LogError logs an error with context
func LogError(message string, err error) {
	if err != nil {
		logrus.WithError(err).Error(message)
	}
}

// LogInfo logs an informational message
func LogInfo(message string) {
	logrus.Info(message)
}

// LogWarning logs a warning message
func LogWarning(message string) {
	logrus.Warn(message)
}

func LogFields(fields logrus.Fields) *logrus.Entry {
	return logrus.WithFields(fields)
}
