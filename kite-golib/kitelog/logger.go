package kitelog

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Basic logs JSON lines, splitting output to stdout and stderr based on level.
var Basic = New(os.Stdout, os.Stderr, zapcore.InfoLevel)

// Discard drops everything; useful for tests and for the query path.
var Discard = &Logger{Zap: zap.NewNop()}

// Logger encapsulates the structured logger used by the analyzer together
// with the printf-style interface the rest of the code base expects.
type Logger struct {
	Zap       *zap.Logger
	Durations Durations
}

// Interface encapsulates the printf-style logging methods
type Interface interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// New creates a logger that writes messages below the error level to out and
// the rest to errOut. Messages below min are dropped.
func New(out, errOut io.Writer, min zapcore.Level) *Logger {
	isErrorLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel && lvl >= min
	})
	isInfoLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl < zapcore.ErrorLevel && lvl >= min
	})

	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.RFC3339TimeEncoder
	encoder := zapcore.NewJSONEncoder(config)

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(errOut)), isErrorLevel),
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(out)), isInfoLevel),
	)
	return &Logger{Zap: zap.New(core, zap.AddCaller())}
}

// NewDevelopment creates a human readable logger that writes everything,
// including debug messages, to w.
func NewDevelopment(w io.Writer) *Logger {
	config := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(config), zapcore.Lock(zapcore.AddSync(w)), zapcore.DebugLevel)
	return &Logger{Zap: zap.New(core, zap.AddCaller())}
}

// Named returns a derived logger whose messages carry the given name
func (l *Logger) Named(name string) *Logger {
	return &Logger{Zap: l.Zap.Named(name)}
}

// With returns a derived logger with the given fields attached
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Zap: l.Zap.With(fields...)}
}

// Debug logs a message at debug level
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.Zap.WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...)
}

// Info logs a message at info level
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.Zap.WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...)
}

// Warn logs a message at warn level
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.Zap.WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...)
}

// Error logs a message at error level
func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.Zap.WithOptions(zap.AddCallerSkip(1)).Error(msg, fields...)
}

// Printf implements Interface
func (l *Logger) Printf(format string, v ...interface{}) {
	l.Zap.WithOptions(zap.AddCallerSkip(1)).Info(fmt.Sprintf(format, v...))
}

// Println implements Interface
func (l *Logger) Println(v ...interface{}) {
	msg := fmt.Sprintln(v...)
	l.Zap.WithOptions(zap.AddCallerSkip(1)).Info(msg[:len(msg)-1])
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.Zap.Sync()
}
