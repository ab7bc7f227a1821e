// Package log is the application logger. It wraps logrus with a small
// field API, application error enrichment and secret redaction.
package log

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"autotag/internal/errors"
)

var (
	isDebug atomic.Bool

	mu     sync.RWMutex
	logger = NewLogger()
)

// Field is a single structured logging key/value pair.
type Field struct {
	Key   string
	Value interface{}
}

// F creates a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logging is the logger surface used across the application.
type Logging interface {
	Debug(msg string)
	Debugf(format string, args ...interface{})
	Info(msg string)
	Infof(format string, args ...interface{})
	Warn(msg string)
	Warnf(format string, args ...interface{})
	Error(msg string)
	Errorf(format string, args ...interface{})
	With(fields ...Field) Logging
	WithError(err error) Logging
}

// Logger writes leveled, structured entries through logrus.
type Logger struct {
	entry *logrus.Entry
	level logrus.Level
	file  *os.File
}

var _ Logging = (*Logger)(nil)

type options struct {
	out   io.Writer
	json  bool
	file  string
	level logrus.Level
}

// Option configures a Logger.
type Option func(*options)

// WithOutput sets the destination writer.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithJSON switches to JSON lines.
func WithJSON() Option {
	return func(o *options) { o.json = true }
}

// WithFile additionally appends entries to the file at path.
func WithFile(path string) Option {
	return func(o *options) { o.file = path }
}

// WithLevel sets the minimum level by name (debug, info, warn, error).
// Unknown names keep the default.
func WithLevel(name string) Option {
	return func(o *options) {
		if lvl, err := logrus.ParseLevel(name); err == nil {
			o.level = lvl
		}
	}
}

// NewLogger creates a logger. Without options it writes text to stderr at info level.
func NewLogger(opts ...Option) *Logger {
	o := options{out: os.Stderr, level: logrus.InfoLevel}
	for _, opt := range opts {
		opt(&o)
	}

	base := logrus.New()
	// Level filtering happens in Logger so SetDebug can toggle debug output globally.
	base.SetLevel(logrus.TraceLevel)
	base.AddHook(redactHook{})

	l := &Logger{level: o.level}
	out := o.out
	if o.file != "" {
		f, err := os.OpenFile(o.file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			l.file = f
			out = io.MultiWriter(o.out, f)
		}
	}
	base.SetOutput(out)

	if o.json {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		base.SetFormatter(&textFormatter{})
	}

	l.entry = logrus.NewEntry(base)
	return l
}

// Configure replaces the global logger.
func Configure(opts ...Option) {
	next := NewLogger(opts...)
	mu.Lock()
	prev := logger
	logger = next
	mu.Unlock()
	if prev != nil && prev.file != nil {
		prev.file.Close()
	}
}

func current() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func setLogger(l *Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
}

// SetDebug toggles debug output for every logger.
func SetDebug(debug bool) {
	isDebug.Store(debug)
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *Logger) enabled(lvl logrus.Level) bool {
	if lvl == logrus.DebugLevel && isDebug.Load() {
		return true
	}
	return l.level >= lvl
}

func (l *Logger) Debug(msg string) {
	if l.enabled(logrus.DebugLevel) {
		l.entry.Debug(msg)
	}
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.enabled(logrus.DebugLevel) {
		l.entry.Debugf(format, args...)
	}
}

func (l *Logger) Info(msg string) {
	if l.enabled(logrus.InfoLevel) {
		l.entry.Info(msg)
	}
}

func (l *Logger) Infof(format string, args ...interface{}) {
	if l.enabled(logrus.InfoLevel) {
		l.entry.Infof(format, args...)
	}
}

func (l *Logger) Warn(msg string) {
	if l.enabled(logrus.WarnLevel) {
		l.entry.Warn(msg)
	}
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	if l.enabled(logrus.WarnLevel) {
		l.entry.Warnf(format, args...)
	}
}

func (l *Logger) Error(msg string) {
	if l.enabled(logrus.ErrorLevel) {
		l.entry.Error(msg)
	}
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	if l.enabled(logrus.ErrorLevel) {
		l.entry.Errorf(format, args...)
	}
}

// With returns a child logger carrying fields.
func (l *Logger) With(fields ...Field) Logging {
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return &Logger{entry: l.entry.WithFields(data), level: l.level}
}

// WithError returns a child logger carrying the error and, for application
// errors, its kind and context.
func (l *Logger) WithError(err error) Logging {
	return l.With(errorFields(err)...)
}

// WithContext returns a logger for ctx.
func (l *Logger) WithContext(ctx context.Context) Logging {
	if ctx == nil {
		return l
	}
	return &Logger{entry: l.entry.WithContext(ctx), level: l.level}
}

func errorFields(err error) []Field {
	if err == nil {
		return []Field{F("error", "<nil>")}
	}
	fields := []Field{F("error", err.Error())}

	var fileErr *errors.FileError
	var configErr *errors.ConfigError
	var workerErr *errors.WorkerError
	switch {
	case errors.As(err, &workerErr):
		fields = append(fields, F("error_kind", workerErr.Kind().String()), F("exit_code", workerErr.ExitCode()))
	case errors.As(err, &configErr):
		fields = append(fields, F("error_kind", configErr.Kind().String()), F("param", configErr.Param()))
	case errors.As(err, &fileErr):
		fields = append(fields, F("error_kind", fileErr.Kind().String()), F("path", fileErr.Path()))
	default:
		fields = append(fields, F("error_kind", errors.KindOf(err).String()))
	}
	return fields
}

// Global helpers

func Debug(msg string)                            { current().Debug(msg) }
func Debugf(format string, args ...interface{})   { current().Debugf(format, args...) }
func Info(msg string)                             { current().Info(msg) }
func Infof(format string, args ...interface{})    { current().Infof(format, args...) }
func Warn(msg string)                             { current().Warn(msg) }
func Warnf(format string, args ...interface{})    { current().Warnf(format, args...) }
func Error(msg string)                            { current().Error(msg) }
func Errorf(format string, args ...interface{})   { current().Errorf(format, args...) }
func LogWithFields(fields ...Field) Logging       { return current().With(fields...) }
func LogWithError(err error) Logging              { return current().WithError(err) }
func LogWithContext(ctx context.Context) Logging { return current().WithContext(ctx) }

// LogError logs err at error level with msg.
func LogError(err error, msg string) {
	LogWithError(err).Error(msg)
}

// quote wraps values containing spaces or quotes for the text format.
func quote(s string) string {
	if strings.ContainsAny(s, " \t\n\"=") {
		return `"` + strings.NewReplacer(`"`, `\"`, "\n", `\n`).Replace(s) + `"`
	}
	return s
}
