package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New creates the process logger. Level comes from LOG_LEVEL (default info);
// pretty console output is used when the writer is a terminal-ish stream and
// LOG_FORMAT is not "json".
func New(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	level := parseLevel(os.Getenv("LOG_LEVEL"))

	if strings.ToLower(os.Getenv("LOG_FORMAT")) != "json" {
		w = zerolog.ConsoleWriter{Out: w}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return zerolog.ErrorLevel
	case "WARN":
		return zerolog.WarnLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "TRACE":
		return zerolog.TraceLevel
	case "", "INFO":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}
