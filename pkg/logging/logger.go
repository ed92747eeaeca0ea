package logging

import (
	"io"
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/niels/git-sniffer/pkg/config"
	"github.com/rs/zerolog"
)

var (
	// Global logger instance, silent until InitGlobalLogger runs
	globalLogger = zerolog.Nop()
)

// InitGlobalLogger initializes the global logger.
// Logs go to the rotating file when enabled in cfg and to stderr in debug mode;
// otherwise they are discarded so a passing hook stays quiet.
func InitGlobalLogger(debug bool, cfg *config.Config) {
	globalLogger = NewLogger(debug, outputFor(debug, cfg, os.Stderr))
}

// outputFor picks the log destination for the given settings
func outputFor(debug bool, cfg *config.Config, stderr io.Writer) io.Writer {
	if cfg == nil || !cfg.Logging.LogToFile {
		if debug {
			return stderr
		}
		return io.Discard
	}

	fileLogger := &lumberjack.Logger{
		Filename:   cfg.Logging.LogFilePath,
		MaxSize:    cfg.Logging.MaxSize, // megabytes
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge, // days
		Compress:   cfg.Logging.Compress,
	}

	if debug {
		return io.MultiWriter(fileLogger, stderr)
	}
	return fileLogger
}

// NewLogger creates a new zerolog logger with the specified debug level
func NewLogger(debug bool, output io.Writer) zerolog.Logger {
	if output == nil {
		output = os.Stderr
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("app", "git-sniffer").
		Logger()
}

// SetLogger replaces the global logger
func SetLogger(logger zerolog.Logger) {
	globalLogger = logger
}

// Debug logs a message at debug level
func Debug(msg string) {
	globalLogger.Debug().Msg(msg)
}

// Info logs a message at info level
func Info(msg string) {
	globalLogger.Info().Msg(msg)
}

// Warn logs a message at warn level
func Warn(msg string) {
	globalLogger.Warn().Msg(msg)
}

// Error logs a message at error level
func Error(msg string) {
	globalLogger.Error().Msg(msg)
}

// DebugWith logs a message at debug level with additional context
func DebugWith(msg string, fields map[string]interface{}) {
	withFields(globalLogger.Debug(), fields).Msg(msg)
}

// InfoWith logs a message at info level with additional context
func InfoWith(msg string, fields map[string]interface{}) {
	withFields(globalLogger.Info(), fields).Msg(msg)
}

// WarnWith logs a message at warn level with additional context
func WarnWith(msg string, fields map[string]interface{}) {
	withFields(globalLogger.Warn(), fields).Msg(msg)
}

// ErrorWith logs a message at error level with additional context
func ErrorWith(msg string, fields map[string]interface{}) {
	withFields(globalLogger.Error(), fields).Msg(msg)
}

// GetLogger returns the global logger instance
func GetLogger() zerolog.Logger {
	return globalLogger
}

// WithComponent returns a logger with the component field set
func WithComponent(component string) zerolog.Logger {
	return globalLogger.With().Str("component", component).Logger()
}

func withFields(event *zerolog.Event, fields map[string]interface{}) *zerolog.Event {
	for k, v := range fields {
		event = addField(event, k, v)
	}
	return event
}

// addField adds a field to the log event based on its type
func addField(event *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return event.Str(key, v)
	case int:
		return event.Int(key, v)
	case int64:
		return event.Int64(key, v)
	case bool:
		return event.Bool(key, v)
	case time.Duration:
		return event.Dur(key, v)
	case time.Time:
		return event.Time(key, v)
	case []string:
		return event.Strs(key, v)
	case error:
		return event.AnErr(key, v)
	default:
		return event.Interface(key, v)
	}
}
