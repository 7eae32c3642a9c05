package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var (
	defaultLogger *zerolog.Logger
)

// Init initializes the global logger. Text output goes through the console
// writer, json output is written as-is.
func Init(level string, json bool) {
	var w io.Writer = os.Stdout
	if !json {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	l := NewWithWriter(w).Level(parseLevel(level))
	defaultLogger = &l
}

// NewWithWriter creates a logger writing to w
func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// SetOutput replaces the global logger, mostly for tests
func SetOutput(w io.Writer) {
	l := NewWithWriter(w)
	defaultLogger = &l
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get returns the default logger
func Get() *zerolog.Logger {
	if defaultLogger == nil {
		Init("info", false)
	}
	return defaultLogger
}

// Info logs at info level. args are key/value pairs.
func Info(msg string, args ...any) {
	Get().Info().Fields(args).Msg(msg)
}

// Debug logs at debug level
func Debug(msg string, args ...any) {
	Get().Debug().Fields(args).Msg(msg)
}

// Warn logs at warn level
func Warn(msg string, args ...any) {
	Get().Warn().Fields(args).Msg(msg)
}

// Error logs at error level
func Error(msg string, args ...any) {
	Get().Error().Fields(args).Msg(msg)
}

// Fatal logs at fatal level and exits
func Fatal(msg string, args ...any) {
	Get().Fatal().Fields(args).Msg(msg)
}

// With returns a logger with the given attributes
func With(args ...any) zerolog.Logger {
	return Get().With().Fields(args).Logger()
}
