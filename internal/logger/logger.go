// Package logger wraps logrus behind a small interface so packages can log
// structured fields without depending on a concrete logging library.
package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger is the logging surface used across the codebase.
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string, err error)
	WithField(key string, value any) Logger
	WithFields(fields map[string]any) Logger
}

type logrusLogger struct {
	entry *logrus.Entry
}

// New creates a logrus-backed logger at the given level. Unknown levels
// fall back to info.
func New(level string) Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: false})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)

	return &logrusLogger{entry: logrus.NewEntry(l)}
}

// NewWithOutput creates a logger writing to the given destination. Tests
// use it to capture or discard output.
func NewWithOutput(level string, out io.Writer) Logger {
	l := logrus.New()
	l.SetOutput(out)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)

	return &logrusLogger{entry: logrus.NewEntry(l)}
}

func (l *logrusLogger) Debug(msg string) {
	l.entry.Debug(msg)
}

func (l *logrusLogger) Info(msg string) {
	l.entry.Info(msg)
}

func (l *logrusLogger) Warn(msg string) {
	l.entry.Warn(msg)
}

func (l *logrusLogger) Error(msg string, err error) {
	l.entry.WithError(err).Error(msg)
}

func (l *logrusLogger) WithField(key string, value any) Logger {
	return &logrusLogger{entry: l.entry.WithField(key, value)}
}

func (l *logrusLogger) WithFields(fields map[string]any) Logger {
	return &logrusLogger{entry: l.entry.WithFields(fields)}
}
