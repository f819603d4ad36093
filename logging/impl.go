package logging

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// frames between the public logging method and getCaller.
const callerSkip = 4

var errUnpairedKey = errors.New("unpaired log key")

type impl struct {
	name  string
	level AtomicLevel
	inUTC bool

	appenders []Appender
	fields    []zapcore.Field
}

func newImpl(name string, level Level, inUTC bool, appenders ...Appender) *impl {
	return &impl{name: name, level: NewAtomicLevelAt(level), inUTC: inUTC, appenders: appenders}
}

func (imp *impl) derive(name string, fields []zapcore.Field) *impl {
	return &impl{
		name:      name,
		level:     NewAtomicLevelAt(imp.level.Get()),
		inUTC:     imp.inUTC,
		appenders: imp.appenders,
		fields:    fields,
	}
}

func (imp *impl) Sublogger(subname string) Logger {
	name := subname
	if imp.name != "" {
		name = imp.name + "." + subname
	}
	return imp.derive(name, imp.fields)
}

func (imp *impl) WithFields(keysAndValues ...interface{}) Logger {
	fields := make([]zapcore.Field, 0, len(imp.fields)+len(keysAndValues)/2)
	fields = append(fields, imp.fields...)
	return imp.derive(imp.name, append(fields, toFields(keysAndValues)...))
}

func (imp *impl) AddAppender(appender Appender) {
	imp.appenders = append(imp.appenders, appender)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

func (imp *impl) Sync() error {
	var err error
	for _, appender := range imp.appenders {
		err = multierr.Append(err, appender.Sync())
	}
	return err
}

func (imp *impl) enabled(level Level) bool {
	return level >= imp.level.Get()
}

func (imp *impl) write(level Level, msg string, fields []zapcore.Field) {
	entry := zapcore.Entry{
		Level:      level.AsZap(),
		Time:       time.Now(),
		LoggerName: imp.name,
		Message:    msg,
		Caller:     getCaller(),
	}
	if imp.inUTC {
		entry.Time = entry.Time.UTC()
	}
	if len(imp.fields) > 0 {
		fields = append(append(make([]zapcore.Field, 0, len(imp.fields)+len(fields)), imp.fields...), fields...)
	}
	for _, appender := range imp.appenders {
		if err := appender.Write(entry, fields); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

func (imp *impl) logArgs(level Level, args ...interface{}) {
	if imp.enabled(level) {
		imp.write(level, fmt.Sprint(args...), nil)
	}
}

func (imp *impl) logf(level Level, template string, args ...interface{}) {
	if imp.enabled(level) {
		imp.write(level, fmt.Sprintf(template, args...), nil)
	}
}

func (imp *impl) logw(level Level, msg string, keysAndValues ...interface{}) {
	if imp.enabled(level) {
		imp.write(level, msg, toFields(keysAndValues))
	}
}

// toFields pairs up alternating keys and values. A trailing key without a value gets an error value so the mistake
// shows in the output.
func toFields(keysAndValues []interface{}) []zapcore.Field {
	fields := make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			fields = append(fields, zap.Any(key, errUnpairedKey))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}

func (imp *impl) Debug(args ...interface{}) {
	imp.logArgs(DEBUG, args...)
}

func (imp *impl) Debugf(template string, args ...interface{}) {
	imp.logf(DEBUG, template, args...)
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	imp.logw(DEBUG, msg, keysAndValues...)
}

func (imp *impl) Info(args ...interface{}) {
	imp.logArgs(INFO, args...)
}

func (imp *impl) Infof(template string, args ...interface{}) {
	imp.logf(INFO, template, args...)
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	imp.logw(INFO, msg, keysAndValues...)
}

func (imp *impl) Warn(args ...interface{}) {
	imp.logArgs(WARN, args...)
}

func (imp *impl) Warnf(template string, args ...interface{}) {
	imp.logf(WARN, template, args...)
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	imp.logw(WARN, msg, keysAndValues...)
}

func (imp *impl) Error(args ...interface{}) {
	imp.logArgs(ERROR, args...)
}

func (imp *impl) Errorf(template string, args ...interface{}) {
	imp.logf(ERROR, template, args...)
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	imp.logw(ERROR, msg, keysAndValues...)
}

func getCaller() zapcore.EntryCaller {
	pc, file, line, ok := runtime.Caller(callerSkip)
	if !ok {
		return zapcore.EntryCaller{}
	}
	caller := zapcore.EntryCaller{Defined: true, PC: pc, File: file, Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		caller.Function = fn.Name()
	}
	return caller
}
