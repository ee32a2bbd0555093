// Package log provides the structured logger used across the platform. It
// wraps zerolog behind a small API of leveled, formatted and key/value
// logging functions so callers never deal with the backend directly.
package log

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	logTestWriterName = "logtest"
)

var (
	log zerolog.Logger
	// logTestWriter can be swapped by tests and benchmarks before calling
	// Init with logTestWriterName as output.
	logTestWriter io.Writer = io.Discard

	// panicOnInvalidChars triggers a panic when a log message carries bytes
	// outside the printable range. Enabled with LOG_PANIC_ON_INVALIDCHARS=true,
	// meant to catch unsanitized binary data reaching the logs in tests.
	panicOnInvalidChars = os.Getenv("LOG_PANIC_ON_INVALIDCHARS") == "true"

	level string
)

func init() {
	// sane defaults when a package logs before Init is called
	Init(LogLevelInfo, "stderr", nil)
}

// Init initializes the logger with the given level and output, one of
// "stdout", "stderr" or a file path. The optional errorOutput duplicates
// warning-and-above messages to an extra writer.
func Init(logLevel, output string, errorOutput io.Writer) {
	var out io.Writer
	switch output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	case logTestWriterName:
		out = logTestWriter
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			panic(fmt.Sprintf("cannot open log output %q: %v", output, err))
		}
		out = f
	}
	out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339Nano}
	if errorOutput != nil {
		out = zerolog.MultiLevelWriter(out, levelWriter{errorOutput})
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log = zerolog.New(out).With().Timestamp().Logger()

	level = logLevel
	switch logLevel {
	case LogLevelDebug:
		log = log.Level(zerolog.DebugLevel)
	case LogLevelInfo:
		log = log.Level(zerolog.InfoLevel)
	case LogLevelWarn:
		log = log.Level(zerolog.WarnLevel)
	case LogLevelError:
		log = log.Level(zerolog.ErrorLevel)
	default:
		panic(fmt.Sprintf("invalid log level: %q", logLevel))
	}
}

// Level returns the level the logger was initialized with.
func Level() string {
	return level
}

// Logger returns the underlying zerolog logger.
func Logger() *zerolog.Logger {
	return &log
}

type levelWriter struct {
	w io.Writer
}

func (lw levelWriter) Write(p []byte) (int, error) {
	return lw.w.Write(p)
}

func (lw levelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < zerolog.WarnLevel {
		return len(p), nil
	}
	return lw.w.Write(p)
}

func checkInvalidChars(s string) string {
	if !panicOnInvalidChars {
		return s
	}
	for _, r := range s {
		if r == 0xFFFD {
			panic(fmt.Sprintf("log message with invalid chars: %q", s))
		}
	}
	return s
}

func withFields(ev *zerolog.Event, keyvalues ...any) *zerolog.Event {
	for i := 0; i+1 < len(keyvalues); i += 2 {
		key, ok := keyvalues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keyvalues[i])
		}
		ev = ev.Interface(key, keyvalues[i+1])
	}
	return ev
}

func Debug(args ...any) {
	log.Debug().Msg(checkInvalidChars(fmt.Sprint(args...)))
}

func Info(args ...any) {
	log.Info().Msg(checkInvalidChars(fmt.Sprint(args...)))
}

func Warn(args ...any) {
	log.Warn().Msg(checkInvalidChars(fmt.Sprint(args...)))
}

func Error(args ...any) {
	log.Error().Msg(checkInvalidChars(fmt.Sprint(args...)))
}

func Debugf(format string, args ...any) {
	log.Debug().Msg(checkInvalidChars(fmt.Sprintf(format, args...)))
}

func Infof(format string, args ...any) {
	log.Info().Msg(checkInvalidChars(fmt.Sprintf(format, args...)))
}

func Warnf(format string, args ...any) {
	log.Warn().Msg(checkInvalidChars(fmt.Sprintf(format, args...)))
}

func Errorf(format string, args ...any) {
	log.Error().Msg(checkInvalidChars(fmt.Sprintf(format, args...)))
}

// Fatalf logs a message and exits with status 1.
func Fatalf(format string, args ...any) {
	log.Fatal().Msg(checkInvalidChars(fmt.Sprintf(format, args...)))
}

// Debugw logs a message with alternating key/value pairs.
func Debugw(msg string, keyvalues ...any) {
	withFields(log.Debug(), keyvalues...).Msg(checkInvalidChars(msg))
}

// Infow logs a message with alternating key/value pairs.
func Infow(msg string, keyvalues ...any) {
	withFields(log.Info(), keyvalues...).Msg(checkInvalidChars(msg))
}

// Warnw logs a message with alternating key/value pairs.
func Warnw(msg string, keyvalues ...any) {
	withFields(log.Warn(), keyvalues...).Msg(checkInvalidChars(msg))
}

// Errorw logs an error with an optional message.
func Errorw(err error, msg string) {
	if msg == "" && err != nil {
		msg = err.Error()
	}
	log.Error().Err(err).Msg(checkInvalidChars(msg))
}
