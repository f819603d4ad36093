package logging

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

// TimeFormat is the time layout of every appender in this package.
const TimeFormat = "2006-01-02T15:04:05.000Z0700"

// Appender is an output for log entries. This is a subset of the `zapcore.Core` interface, so an observer core can
// be used as one.
type Appender interface {
	Write(zapcore.Entry, []zapcore.Field) error
	Sync() error
}

// WriterAppender writes one tab separated line per entry.
type WriterAppender struct {
	out io.Writer
}

// NewWriterAppender returns an appender writing to w.
func NewWriterAppender(w io.Writer) WriterAppender {
	return WriterAppender{out: w}
}

// Write outputs the log entry to the underlying writer. The line is written even when the fields fail to encode.
func (appender WriterAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	line, err := formatEntry(entry, fields)
	if _, writeErr := fmt.Fprintln(appender.out, line); err == nil {
		err = writeErr
	}
	return err
}

// Sync is a no-op.
func (appender WriterAppender) Sync() error {
	return nil
}

type testAppender struct {
	tb testing.TB
}

// NewTestAppender returns an appender that logs through tb.Log, so lines are attributed to the running test.
func NewTestAppender(tb testing.TB) Appender {
	return &testAppender{tb}
}

func (tapp *testAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	tapp.tb.Helper()
	line, err := formatEntry(entry, fields)
	tapp.tb.Log(line)
	return err
}

func (tapp *testAppender) Sync() error {
	return nil
}

// formatEntry renders time, level, logger name, caller, message and the fields as a json object.
func formatEntry(entry zapcore.Entry, fields []zapcore.Field) (string, error) {
	parts := []string{entry.Time.Format(TimeFormat), strings.ToUpper(entry.Level.String())}
	if entry.LoggerName != "" {
		parts = append(parts, entry.LoggerName)
	}
	if entry.Caller.Defined {
		parts = append(parts, entry.Caller.TrimmedPath())
	}
	parts = append(parts, entry.Message)
	if len(fields) == 0 {
		return strings.Join(parts, "\t"), nil
	}

	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
	buf, err := enc.EncodeEntry(zapcore.Entry{}, fields)
	if err != nil {
		return strings.Join(parts, "\t"), err
	}
	defer buf.Free()
	return strings.Join(append(parts, buf.String()), "\t"), nil
}
