// Package logging wraps logrus behind the small interface the rest of the
// daemon logs through.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is what every component receives. Child loggers carry extra fields
// (usually "component") on every entry.
type Logger interface {
	Info(...interface{})
	Debug(...interface{})
	Error(...interface{})
	Warn(...interface{})

	Infof(string, ...interface{})
	Debugf(string, ...interface{})
	Errorf(string, ...interface{})
	Warnf(string, ...interface{})

	ChildLogger(fields map[string]interface{}) Logger
}

type logger struct {
	*logrus.Entry
}

// New builds a text logger writing to stderr at the given level.
func New(level string) (Logger, error) {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter is New with an explicit output.
func NewWithWriter(level string, out io.Writer) (Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	l := &logrus.Logger{
		Formatter: &logrus.TextFormatter{DisableTimestamp: true},
		Level:     lvl,
		Out:       out,
		Hooks:     make(logrus.LevelHooks),
	}

	return &logger{Entry: l.WithFields(logrus.Fields{})}, nil
}

// FromLogrus adapts an existing logrus logger, e.g. the null logger used in tests.
func FromLogrus(l *logrus.Logger) Logger {
	return &logger{Entry: logrus.NewEntry(l)}
}

// Discard returns a logger that drops everything.
func Discard() Logger {
	l := logrus.New()
	l.Out = io.Discard
	return FromLogrus(l)
}

func (l *logger) ChildLogger(fields map[string]interface{}) Logger {
	return &logger{Entry: l.Entry.WithFields(fields)}
}

// Component is shorthand for ChildLogger with a single "component" field.
func Component(l Logger, name string) Logger {
	return l.ChildLogger(map[string]interface{}{"component": name})
}
