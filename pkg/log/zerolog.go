package log

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	logger zerolog.Logger
}

// ZerologProvider creates Logger instances backed by zerolog writing JSON
// records to stderr.
type ZerologProvider struct {
	mu    sync.RWMutex
	level Level
}

// NewZerologProvider creates a provider that emits records at or above the
// given level.
func NewZerologProvider(level Level) *ZerologProvider {
	return &ZerologProvider{level: level}
}

// GetLogger returns the default logger instance.
func (p *ZerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	zl := zerolog.New(os.Stderr).Level(toZerologLevel(p.level)).With().Timestamp().Logger()
	return &zerologLogger{logger: zl}
}

// GetLoggerWithName returns a logger with a component identifier attached.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

// SetLevel sets the minimum log level for loggers created by this provider.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
}

var (
	defaultProviderMu sync.RWMutex
	defaultProvider   LoggerProvider = NewZerologProvider(LevelInfo)
)

// SetProvider replaces the package-level provider. Useful in tests to
// capture log output through a TestLogger-backed provider.
func SetProvider(provider LoggerProvider) {
	defaultProviderMu.Lock()
	defer defaultProviderMu.Unlock()
	defaultProvider = provider
}

// GetLogger returns the default logger from the package-level provider.
func GetLogger() Logger {
	defaultProviderMu.RLock()
	defer defaultProviderMu.RUnlock()
	return defaultProvider.GetLogger()
}

// GetLoggerWithName returns a named logger from the package-level provider.
func GetLoggerWithName(name string) Logger {
	defaultProviderMu.RLock()
	defer defaultProviderMu.RUnlock()
	return defaultProvider.GetLoggerWithName(name)
}

// ToLogLevel converts a level name to a Level. It panics on unknown names so
// misconfiguration is caught at startup.
func ToLogLevel(level string) Level {
	switch level {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		panic(fmt.Sprintf("invalid log level: %s", level))
	}
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// Debug implements Logger.Debug.
func (z *zerologLogger) Debug(msg string, fields ...any) {
	addFields(z.logger.Debug(), fields...).Msg(msg)
}

// Info implements Logger.Info.
func (z *zerologLogger) Info(msg string, fields ...any) {
	addFields(z.logger.Info(), fields...).Msg(msg)
}

// Warn implements Logger.Warn.
func (z *zerologLogger) Warn(msg string, fields ...any) {
	addFields(z.logger.Warn(), fields...).Msg(msg)
}

// Error implements Logger.Error.
func (z *zerologLogger) Error(msg string, fields ...any) {
	event := z.logger.Error()
	// An error passed as the leading field is attached with stack context.
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			event = event.Err(err)
			fields = fields[1:]
		}
	}
	addFields(event, fields...).Msg(msg)
}

// With implements Logger.With.
func (z *zerologLogger) With(fields ...any) Logger {
	ctx := z.logger.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zerologLogger{logger: ctx.Logger()}
}

// Enabled implements Logger.Enabled.
func (z *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return toZerologLevel(level) >= z.logger.GetLevel()
}

// addFields attaches key-value pairs to a zerolog event. Trailing unpaired
// keys are ignored.
func addFields(event *zerolog.Event, fields ...any) *zerolog.Event {
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		switch v := fields[i+1].(type) {
		case error:
			event = event.AnErr(key, v)
		default:
			event = event.Interface(key, v)
		}
	}
	return event
}
