// Package logger provides structured logging for the dlog node. It wraps
// zerolog behind a small fluent API so packages do not depend on the logging
// backend directly.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// LoggingConfig controls the log level, encoding and destination.
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"`
	Output     string `yaml:"output" json:"output"`
	FilePrefix string `yaml:"file_prefix" json:"file_prefix"`
}

// Logger is the unit of logging handed to services. Fields attached via
// WithField/WithError are carried into every event emitted from the copy.
type Logger struct {
	zl zerolog.Logger
}

// New builds a logger from an explicit configuration.
func New(cfg LoggingConfig) *Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer
	switch strings.ToLower(strings.TrimSpace(cfg.Output)) {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	case "file":
		prefix := cfg.FilePrefix
		if prefix == "" {
			prefix = "dlogd"
		}
		f, ferr := os.OpenFile(prefix+".log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if ferr != nil {
			out = os.Stderr
		} else {
			out = f
		}
	default:
		out = os.Stderr
	}

	if strings.EqualFold(cfg.Format, "console") || strings.EqualFold(cfg.Format, "text") {
		out = zerolog.ConsoleWriter{Out: out}
	}

	zl := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// NewDefault returns an info-level JSON logger tagged with a component name.
func NewDefault(component string) *Logger {
	l := New(LoggingConfig{})
	return l.WithField("component", component)
}

// WithField returns a copy of the logger with an additional field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

// WithError returns a copy of the logger carrying the error as a field.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{zl: l.zl.With().Err(err).Logger()}
}

func (l *Logger) Debug(msg string) { l.zl.Debug().Msg(msg) }
func (l *Logger) Info(msg string)  { l.zl.Info().Msg(msg) }
func (l *Logger) Warn(msg string)  { l.zl.Warn().Msg(msg) }
func (l *Logger) Error(msg string) { l.zl.Error().Msg(msg) }

func (l *Logger) Debugf(format string, args ...interface{}) { l.zl.Debug().Msgf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.zl.Info().Msgf(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.zl.Warn().Msgf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.zl.Error().Msgf(format, args...) }

// Fatalf logs at fatal level and exits the process.
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.zl.Fatal().Msg(fmt.Sprintf(format, args...))
}
