package logger

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

type Format string

const (
	TextFormat Format = "text"
	JSONFormat Format = "json"
)

// Setup configures the standard logrus logger. An empty or unparsable level
// falls back to info.
func Setup(level string, format Format, out io.Writer) log.Level {
	if out == nil {
		out = os.Stderr
	}
	log.SetOutput(out)

	switch Format(strings.ToLower(string(format))) {
	case JSONFormat:
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)

	return lvl
}

// SetupFromEnv reads LOG_LEVEL and LOG_FORMAT.
func SetupFromEnv() log.Level {
	return Setup(os.Getenv("LOG_LEVEL"), Format(os.Getenv("LOG_FORMAT")), os.Stderr)
}
