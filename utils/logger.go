package utils

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger provides leveled, printf-style logging throughout the application.
// Console output is colored; an optional file sink receives JSON lines and
// is rotated by lumberjack.
type Logger struct {
	sugar  *zap.SugaredLogger
	closer io.Closer
}

// LogOptions configures NewLoggerWithOptions.
type LogOptions struct {
	Level string // debug, info, warn, error
	File  string // optional rotated JSON log file
}

// NewLogger creates a Logger writing info and above to stdout/stderr.
func NewLogger() *Logger {
	return NewLoggerWithOptions(LogOptions{Level: "info"})
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// NewLoggerWithOptions builds the console cores and, when opts.File is set,
// a rotating file core.
func NewLoggerWithOptions(opts LogOptions) *Logger {
	level, err := zapcore.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = zapcore.InfoLevel
	}

	consoleEnc := zapcore.NewConsoleEncoder(consoleEncoderConfig())
	belowError := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= level && l < zapcore.ErrorLevel })
	errorAndUp := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= level && l >= zapcore.ErrorLevel })

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEnc, zapcore.Lock(zapcore.AddSync(os.Stdout)), belowError),
		zapcore.NewCore(consoleEnc, zapcore.Lock(zapcore.AddSync(os.Stderr)), errorAndUp),
	}

	var closer io.Closer
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:  opts.File,
			MaxSize:   50,
			LocalTime: true,
			Compress:  true,
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(rotator), level))
		closer = rotator
	}

	return &Logger{
		sugar:  zap.New(zapcore.NewTee(cores...)).Sugar(),
		closer: closer,
	}
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.CallerKey = ""
	cfg.NameKey = ""
	return cfg
}

func (l *Logger) Info(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.sugar.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.sugar.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.sugar.Debugf(format, args...)
}

// Close flushes buffered entries and closes the log file, if any.
func (l *Logger) Close() error {
	_ = l.sugar.Sync()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
