// Package logger provides the viewer's structured logging using zap, with
// optional size-rotated file output.
package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Log is the process-wide logger. Packages that log per component should
	// prefer Named.
	Log = zap.NewNop()
	// Sugar wraps Log for printf-style calls.
	Sugar = Log.Sugar()
)

// FileConfig controls the rotating log file.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultFileConfig returns the rotation policy used for --log-file.
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{Path: path, MaxSizeMB: 20, MaxBackups: 5, MaxAgeDays: 14, Compress: true}
}

// Options selects the sinks of a logger built by New. A nil Console and an
// empty File.Path yield a logger that drops everything.
type Options struct {
	Level   string
	Console io.Writer
	Color   bool
	File    FileConfig
}

// New builds a logger from opts without installing it.
func New(opts Options) (*zap.Logger, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var cores []zapcore.Core
	if opts.Console != nil {
		enc := encoderConfig("15:04:05.000")
		if opts.Color {
			enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(opts.Console), lvl))
	}
	if opts.File.Path != "" {
		rot := &lumberjack.Logger{
			Filename:   opts.File.Path,
			MaxSize:    opts.File.MaxSizeMB,
			MaxBackups: opts.File.MaxBackups,
			MaxAge:     opts.File.MaxAgeDays,
			Compress:   opts.File.Compress,
			LocalTime:  true,
		}
		enc := encoderConfig("")
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(rot), lvl))
	}
	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// encoderConfig returns the shared line layout. An empty time layout selects
// ISO8601, which is what the log file uses.
func encoderConfig(timeLayout string) zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = "time"
	cfg.NameKey = "logger"
	cfg.StacktraceKey = ""
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeName = zapcore.FullNameEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.ConsoleSeparator = " "
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if timeLayout != "" {
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	}
	return cfg
}

// ParseLevel maps a config level name to a zap level. The empty string means
// info.
func ParseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return lvl, fmt.Errorf("logger: %w", err)
	}
	return lvl, nil
}

// Init installs a colored console logger on stdout, teeing into logFile when
// it is non-empty.
func Init(level string, logFile string) error {
	opts := Options{Level: level, Console: os.Stdout, Color: true}
	if logFile != "" {
		opts.File = DefaultFileConfig(logFile)
	}
	l, err := New(opts)
	if err != nil {
		return err
	}
	Replace(l)
	return nil
}

// Replace installs l as the global logger.
func Replace(l *zap.Logger) {
	Log = l
	Sugar = l.Sugar()
}

// InitNop installs a logger that discards everything.
func InitNop() {
	Replace(zap.NewNop())
}

// Named returns a child logger tagged with a component name.
func Named(component string) *zap.Logger {
	return Log.Named(component)
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = Log.Sync()
}

func Debug(msg string, fields ...zap.Field) { Log.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { Log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { Log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { Log.Error(msg, fields...) }

// Debugw logs a debug message with loosely typed key/value pairs.
func Debugw(msg string, keysAndValues ...interface{}) {
	Sugar.Debugw(msg, keysAndValues...)
}
