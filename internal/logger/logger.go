// Package logger holds the process-wide logrus logger.
package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

func init() {
	log = logrus.New()
	log.Formatter = &logrus.TextFormatter{
		DisableLevelTruncation: true,
		PadLevelText:           true,
		TimestampFormat:        "2006/01/02 15:04:05",
		FullTimestamp:          true,
	}
}

// NewLogger returns the shared logger. Every package keeps its own reference
// (customLog) so output settings apply everywhere at once.
func NewLogger() *logrus.Logger {
	return log
}

// SetLevel parses level ("debug", "info", ...) and applies it. Unknown levels
// leave the current level in place and are reported as a warning.
func SetLevel(level string) {
	if level == "" {
		return
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		log.Warnf("Unknown log level %q, keeping %s", level, log.GetLevel())
		return
	}
	log.SetLevel(parsed)
}

// SetOutput redirects log output, mostly to silence tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}
