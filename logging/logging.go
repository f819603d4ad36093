// Package logging contains the structured logger used by the planners and command line tools.
package logging

import (
	"os"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Logger is the logging interface used throughout the module. The "w" variants take alternating keys and values.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	SetLevel(level Level)
	GetLevel() Level

	// Sublogger returns a logger named "<name>.<subname>" that starts at the level of this one and shares its
	// appenders and fields.
	Sublogger(subname string) Logger

	// WithFields returns a logger that adds the given keys and values to every entry.
	WithFields(keysAndValues ...interface{}) Logger

	AddAppender(appender Appender)
	Sync() error
}

// NewLogger returns a logger that writes Info and above to stdout in UTC.
func NewLogger(name string) Logger {
	return newImpl(name, INFO, true, NewWriterAppender(os.Stdout))
}

// NewDebugLogger returns a logger that writes everything to stdout in UTC.
func NewDebugLogger(name string) Logger {
	return newImpl(name, DEBUG, true, NewWriterAppender(os.Stdout))
}

// NewTestLogger returns a logger that writes everything to the test object in local time.
func NewTestLogger(tb testing.TB) Logger {
	logger, _ := NewObservedTestLogger(tb)
	return logger
}

// NewObservedTestLogger is like NewTestLogger but also keeps every entry in memory for assertions.
func NewObservedTestLogger(tb testing.TB) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.LevelEnablerFunc(zapcore.DebugLevel.Enabled))
	return newImpl("", DEBUG, false, NewTestAppender(tb), core), logs
}
