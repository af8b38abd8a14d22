package utils

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger keeps the printf-style helpers the CLI uses while writing through
// zap, so per-run fields (run id, query) ride along on every line.
type Logger struct {
	s *zap.SugaredLogger
}

var std = NewLogger("info")

func NewLogger(level string) *Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")

	z, err := cfg.Build()
	if err != nil {
		z = zap.NewNop()
	}
	return &Logger{s: z.Sugar()}
}

// NewNopLogger discards everything. Used by tests.
func NewNopLogger() *Logger {
	return &Logger{s: zap.NewNop().Sugar()}
}

// SetLevel replaces the package logger.
func SetLevel(level string) {
	std = NewLogger(level)
}

// L returns the package logger.
func L() *Logger {
	return std
}

func (l *Logger) With(keyvals ...any) *Logger {
	return &Logger{s: l.s.With(keyvals...)}
}

func (l *Logger) Debug(format string, a ...any) {
	l.s.Debugf(format, a...)
}

func (l *Logger) Info(format string, a ...any) {
	l.s.Infof(format, a...)
}

func (l *Logger) Success(format string, a ...any) {
	l.s.Infof("✓ "+format, a...)
}

func (l *Logger) Warn(format string, a ...any) {
	l.s.Warnf(format, a...)
}

func (l *Logger) Error(format string, a ...any) {
	l.s.Errorf(format, a...)
}

func (l *Logger) Sync() error {
	return l.s.Sync()
}

func Debug(format string, a ...any)   { std.Debug(format, a...) }
func Info(format string, a ...any)    { std.Info(format, a...) }
func Success(format string, a ...any) { std.Success(format, a...) }
func Warn(format string, a ...any)    { std.Warn(format, a...) }
func Error(format string, a ...any)   { std.Error(format, a...) }

func Section(title string) {
	std.s.Info(fmt.Sprintf("══════════ %s ══════════", title))
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
