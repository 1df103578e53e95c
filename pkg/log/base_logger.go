package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"
)

func mergeFields(base Fields, fields []Field) Fields {
	out := make(Fields, len(base)+len(fields))
	for k, v := range base {
		out[k] = v
	}
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}

func (l *BaseLogger) emit(level Level, msg string, fields ...Field) {
	if level < l.level {
		return
	}
	entry := &Entry{
		Level:     level,
		Message:   msg,
		Fields:    mergeFields(l.fields, fields),
		Timestamp: time.Now(),
	}
	formatted, err := l.formatter.Format(entry)
	if err != nil {
		return
	}
	for _, out := range l.outputs {
		_ = out.Write(entry, formatted)
	}
}

// Debug implements Logger.
func (l *BaseLogger) Debug(msg string, fields ...Field) { l.emit(DebugLevel, msg, fields...) }

// Info implements Logger.
func (l *BaseLogger) Info(msg string, fields ...Field) { l.emit(InfoLevel, msg, fields...) }

// Warn implements Logger.
func (l *BaseLogger) Warn(msg string, fields ...Field) { l.emit(WarnLevel, msg, fields...) }

// Error implements Logger.
func (l *BaseLogger) Error(msg string, fields ...Field) { l.emit(ErrorLevel, msg, fields...) }

// Fatal implements Logger; it terminates the process after logging.
func (l *BaseLogger) Fatal(msg string, fields ...Field) {
	l.emit(FatalLevel, msg, fields...)
	os.Exit(1)
}

// Debugf implements Logger.
func (l *BaseLogger) Debugf(msg string, args ...interface{}) { l.emit(DebugLevel, fmt.Sprintf(msg, args...)) }

// Infof implements Logger.
func (l *BaseLogger) Infof(msg string, args ...interface{}) { l.emit(InfoLevel, fmt.Sprintf(msg, args...)) }

// Warnf implements Logger.
func (l *BaseLogger) Warnf(msg string, args ...interface{}) { l.emit(WarnLevel, fmt.Sprintf(msg, args...)) }

// Errorf implements Logger.
func (l *BaseLogger) Errorf(msg string, args ...interface{}) { l.emit(ErrorLevel, fmt.Sprintf(msg, args...)) }

// Fatalf implements Logger; it terminates the process after logging.
func (l *BaseLogger) Fatalf(msg string, args ...interface{}) {
	l.emit(FatalLevel, fmt.Sprintf(msg, args...))
	os.Exit(1)
}

func (l *BaseLogger) clone() *BaseLogger {
	nl := &BaseLogger{
		level:     l.level,
		fields:    mergeFields(l.fields, nil),
		formatter: l.formatter,
		outputs:   l.outputs,
	}
	nl.slogLogger = slog.New(newBridgeHandler(nl))
	return nl
}

// WithField implements Logger.
func (l *BaseLogger) WithField(key string, value interface{}) Logger {
	nl := l.clone()
	nl.fields[key] = value
	return nl
}

// WithFields implements Logger.
func (l *BaseLogger) WithFields(fields Fields) Logger {
	nl := l.clone()
	for k, v := range fields {
		nl.fields[k] = v
	}
	return nl
}

// WithError implements Logger.
func (l *BaseLogger) WithError(err error) Logger {
	if err == nil {
		return l.WithField("error", nil)
	}
	return l.WithField("error", err.Error())
}

// With implements Logger.
func (l *BaseLogger) With(fields ...Field) Logger {
	nl := l.clone()
	for _, f := range fields {
		nl.fields[f.Key] = f.Value
	}
	return nl
}

// WithContext implements Logger.
func (l *BaseLogger) WithContext(ctx context.Context) Logger {
	return l.WithFields(ContextExtractor(ctx))
}

// WithComponent implements Logger.
func (l *BaseLogger) WithComponent(component string) Logger {
	return l.WithField(ComponentKey, component)
}

// SetLevel implements Logger.
func (l *BaseLogger) SetLevel(level Level) { l.level = level }

// GetLevel implements Logger.
func (l *BaseLogger) GetLevel() Level { return l.level }
