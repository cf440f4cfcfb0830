// Package logging provides structured logging for the subway validator,
// wrapping log/slog the way the teacher's logging package does.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger provides structured logging capabilities for the subway validator.
type Logger struct {
	*slog.Logger
	level slog.Level
}

// LogLevel represents different logging levels.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

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
	default:
		return "UNKNOWN"
	}
}

// ToSlogLevel converts LogLevel to slog.Level.
func (l LogLevel) ToSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoggerConfig holds configuration for logger creation.
type LoggerConfig struct {
	Level         LogLevel
	Format        string // "json" or "text"
	Output        io.Writer
	IncludeSource bool
	Component     string
}

// NewLogger creates a new structured logger with the specified configuration.
func NewLogger(config LoggerConfig) *Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Format == "" {
		config.Format = "text"
	}
	if config.Component == "" {
		config.Component = "subway-validator"
	}

	opts := &slog.HandlerOptions{
		Level:     config.Level.ToSlogLevel(),
		AddSource: config.IncludeSource,
	}

	var handler slog.Handler
	switch config.Format {
	case "json":
		handler = slog.NewJSONHandler(config.Output, opts)
	default:
		handler = slog.NewTextHandler(config.Output, opts)
	}

	logger := slog.New(handler).With("component", config.Component)

	return &Logger{Logger: logger, level: config.Level.ToSlogLevel()}
}

// NewDefaultLogger creates a logger with sensible defaults.
func NewDefaultLogger() *Logger {
	return NewLogger(LoggerConfig{
		Level:     LevelInfo,
		Format:    "text",
		Output:    os.Stdout,
		Component: "subway-validator",
	})
}

// NewJSONLogger creates a logger that outputs JSON format.
func NewJSONLogger(level LogLevel) *Logger {
	return NewLogger(LoggerConfig{
		Level:     level,
		Format:    "json",
		Output:    os.Stdout,
		Component: "subway-validator",
	})
}

// NewDebugLogger creates a logger with debug level and source information.
func NewDebugLogger() *Logger {
	return NewLogger(LoggerConfig{
		Level:         LevelDebug,
		Format:        "text",
		Output:        os.Stdout,
		IncludeSource: true,
		Component:     "subway-validator",
	})
}

// WithContext returns a logger enriched with a request id from ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	return &Logger{l.With("context", ctx.Value("request_id")), l.level}
}

// WithCity returns a logger with city context.
func (l *Logger) WithCity(cityName string) *Logger {
	return &Logger{l.With("city", cityName), l.level}
}

// WithElement returns a logger with OSM element context.
func (l *Logger) WithElement(elementType string, id int64) *Logger {
	return &Logger{l.With("element_type", elementType, "element_id", id), l.level}
}

// WithError returns a logger with error context.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{l.With("error", err.Error()), l.level}
}

// WithDuration returns a logger with duration context.
func (l *Logger) WithDuration(operation string, duration time.Duration) *Logger {
	return &Logger{l.With("operation", operation, "duration_ms", duration.Milliseconds()), l.level}
}

// CityValidationStart logs the start of a city's validation.
func (l *Logger) CityValidationStart(cityName string) {
	l.Info("Starting city validation", "city", cityName, "timestamp", time.Now().Format(time.RFC3339))
}

// CityValidationComplete logs the completion of a city's validation.
func (l *Logger) CityValidationComplete(cityName string, duration time.Duration, isGood bool, errors, warnings, notices int) {
	l.Info("City validation completed",
		"city", cityName,
		"duration_ms", duration.Milliseconds(),
		"is_good", isGood,
		"errors", errors,
		"warnings", warnings,
		"notices", notices,
	)
}

// InvariantViolation logs a single validation finding against a city.
func (l *Logger) InvariantViolation(cityName, severity, message string) {
	switch severity {
	case "ERROR", "CRITICAL":
		l.Error("Invariant violation", "city", cityName, "severity", severity, "message", message)
	case "WARNING":
		l.Warn("Invariant violation", "city", cityName, "severity", severity, "message", message)
	default:
		l.Debug("Invariant violation", "city", cityName, "severity", severity, "message", message)
	}
}

// BatchValidationStart logs the start of batch validation across cities.
func (l *Logger) BatchValidationStart(cityCount int) {
	l.Info("Starting batch validation", "city_count", cityCount, "timestamp", time.Now().Format(time.RFC3339))
}

// BatchValidationComplete logs batch validation completion.
func (l *Logger) BatchValidationComplete(cityCount, goodCities int, duration time.Duration) {
	l.Info("Batch validation completed",
		"city_count", cityCount,
		"good_cities", goodCities,
		"bad_cities", cityCount-goodCities,
		"duration_ms", duration.Milliseconds(),
	)
}

// ConfigurationLoaded logs successful configuration loading.
func (l *Logger) ConfigurationLoaded(configPath string) {
	l.Info("Configuration loaded", "config_path", configPath)
}

// CenterCalculationComplete logs the fixed-point center calculation result.
func (l *Logger) CenterCalculationComplete(elementCount, unresolvedCount int, duration time.Duration) {
	l.Debug("Center calculation completed",
		"elements", elementCount,
		"unresolved", unresolvedCount,
		"duration_ms", duration.Milliseconds(),
	)
}

// IsLevelEnabled checks if a log level is enabled.
func (l *Logger) IsLevelEnabled(level LogLevel) bool {
	return l.level <= level.ToSlogLevel()
}

var defaultLogger = NewDefaultLogger()

// SetDefaultLogger sets the global default logger.
func SetDefaultLogger(logger *Logger) {
	defaultLogger = logger
}

// GetDefaultLogger returns the global default logger.
func GetDefaultLogger() *Logger {
	return defaultLogger
}

func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }
func Info(msg string, args ...any)  { defaultLogger.Info(msg, args...) }
func Warn(msg string, args ...any)  { defaultLogger.Warn(msg, args...) }
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }
