package observability

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogFormat selects the logrus formatter
type LogFormat string

const (
	TextFormat LogFormat = "text"
	JSONFormat LogFormat = "json"
)

// ParseLevel converts a level name such as "debug" or "warn" into a logrus level
func ParseLevel(s string) (logrus.Level, error) {
	if s == "" {
		return logrus.InfoLevel, nil
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(s))
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}

// ParseFormat validates a log format name
func ParseFormat(s string) (LogFormat, error) {
	switch LogFormat(strings.ToLower(s)) {
	case "", TextFormat:
		return TextFormat, nil
	case JSONFormat:
		return JSONFormat, nil
	default:
		return "", fmt.Errorf("invalid log format %q (expected text or json)", s)
	}
}

// NewLogger creates the process logger. Output defaults to stderr so that
// stdout stays free for command output.
func NewLogger(level logrus.Level, format LogFormat, output io.Writer) *logrus.Logger {
	if output == nil {
		output = os.Stderr
	}

	log := logrus.New()
	log.SetOutput(output)
	log.SetLevel(level)

	switch format {
	case JSONFormat:
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    true,
			DisableSorting:   false,
			QuoteEmptyFields: true,
		})
	}

	return log
}

// NopLogger returns a logger that discards everything. Components use it
// when constructed without a logger.
func NopLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
