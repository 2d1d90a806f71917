// Package logging builds the logrus loggers used by drrms-migrate.
package logging

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "warn"

// New returns a text logger writing to out at the given level.
func New(level string, out io.Writer) (*logrus.Logger, error) {
	if level == "" {
		level = DefaultLevel
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return logger, nil
}

// Discard returns a logger that drops every entry.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return logger
}

// WithRun tags every entry of a single runner invocation with a fresh run_id.
func WithRun(logger logrus.FieldLogger, command string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"run_id":  uuid.NewString(),
		"command": command,
	})
}
