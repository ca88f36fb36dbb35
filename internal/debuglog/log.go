package debuglog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff // Disables all logging
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "OFF":
		return LevelOff
	default:
		return LevelInfo // Default to INFO
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelOff:
		// Above Fatal so nothing passes the enabler.
		return zapcore.FatalLevel + 1
	default:
		return zapcore.InfoLevel
	}
}

var (
	currentLevel = LevelOff
	atom         = zap.NewAtomicLevelAt(LevelOff.zapLevel())
	logger       = zap.NewNop().Sugar()
	logFile      *os.File
)

// Setup configures the logging system with the specified level and optional file path.
// If filePath is empty, defaults to ~/.fcst/fcst.log.
func Setup(level LogLevel, filePath ...string) error {
	SetLevel(level)

	if logFile != nil {
		_ = logger.Sync()
		logFile.Close()
		logFile = nil
	}

	if level == LevelOff {
		logger = zap.NewNop().Sugar()
		return nil
	}

	var logPath string
	if len(filePath) > 0 && filePath[0] != "" {
		logPath = filePath[0]
	} else {
		home, _ := os.UserHomeDir()
		dir := filepath.Join(home, ".fcst")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		logPath = filepath.Join(dir, "fcst.log")
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(f),
		atom,
	)

	logFile = f
	logger = zap.New(core, zap.Fields(zap.String("app", "fcst"))).Sugar()
	return nil
}

// SetupWithBool provides backward compatibility with the old Setup(bool) signature
func SetupWithBool(enabled bool) {
	if enabled {
		_ = Setup(LevelInfo)
	} else {
		_ = Setup(LevelOff)
	}
}

// SetLevel changes the current logging level
func SetLevel(level LogLevel) {
	currentLevel = level
	atom.SetLevel(level.zapLevel())
}

// GetLevel returns the current logging level
func GetLevel() LogLevel {
	return currentLevel
}

// Close flushes and closes the log file if open
func Close() error {
	if logFile != nil {
		_ = logger.Sync()
		err := logFile.Close()
		logFile = nil
		logger = zap.NewNop().Sugar()
		return err
	}
	return nil
}

func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

func Infof(format string, args ...any) {
	logger.Infof(format, args...)
}

func Warnf(format string, args ...any) {
	logger.Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
}

// FieldLogger attaches key-value fields to every message.
type FieldLogger struct {
	fields map[string]interface{}
}

// WithFields returns a new logger with the specified fields
func WithFields(fields map[string]interface{}) *FieldLogger {
	return &FieldLogger{fields: fields}
}

// formatFields renders fields as a stable " [k=v k=v]" suffix so log lines
// stay greppable even though the encoder is JSON.
func (fl *FieldLogger) formatFields() string {
	if len(fl.fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(fl.fields))
	for key := range fl.fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, fl.fields[key]))
	}
	return " [" + strings.Join(parts, " ") + "]"
}

func (fl *FieldLogger) with() *zap.SugaredLogger {
	args := make([]interface{}, 0, len(fl.fields)*2)
	for k, v := range fl.fields {
		args = append(args, k, v)
	}
	return logger.With(args...)
}

func (fl *FieldLogger) Debugf(format string, args ...any) {
	fl.with().Debug(fmt.Sprintf(format, args...) + fl.formatFields())
}

func (fl *FieldLogger) Infof(format string, args ...any) {
	fl.with().Info(fmt.Sprintf(format, args...) + fl.formatFields())
}

func (fl *FieldLogger) Warnf(format string, args ...any) {
	fl.with().Warn(fmt.Sprintf(format, args...) + fl.formatFields())
}

func (fl *FieldLogger) Errorf(format string, args ...any) {
	fl.with().Error(fmt.Sprintf(format, args...) + fl.formatFields())
}
