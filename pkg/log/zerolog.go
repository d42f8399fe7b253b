package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/regtree/pkg/errors"
)

// ZerologLogger implements Logger on top of zerolog. Loggers derived from the
// same provider share one level, so SetLevel affects loggers handed out earlier.
type ZerologLogger struct {
	z     zerolog.Logger
	level *atomic.Int32
}

func (l *ZerologLogger) enabled(level Level) bool {
	return Level(l.level.Load()) <= level
}

// Debug implements Logger.Debug.
func (l *ZerologLogger) Debug(msg string, fields ...any) {
	if l.enabled(LevelDebug) {
		emit(l.z.Debug(), msg, fields)
	}
}

// Info implements Logger.Info.
func (l *ZerologLogger) Info(msg string, fields ...any) {
	if l.enabled(LevelInfo) {
		emit(l.z.Info(), msg, fields)
	}
}

// Warn implements Logger.Warn.
func (l *ZerologLogger) Warn(msg string, fields ...any) {
	if l.enabled(LevelWarn) {
		emit(l.z.Warn(), msg, fields)
	}
}

// Error implements Logger.Error. A leading error field is logged under "error".
func (l *ZerologLogger) Error(msg string, fields ...any) {
	if !l.enabled(LevelError) {
		return
	}
	e := l.z.Error()
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			e = e.Err(err)
			fields = fields[1:]
		}
	}
	emit(e, msg, fields)
}

// With implements Logger.With.
func (l *ZerologLogger) With(fields ...any) Logger {
	return &ZerologLogger{
		z:     l.z.With().Fields(normalizeFields(fields)).Logger(),
		level: l.level,
	}
}

// Enabled implements Logger.Enabled.
func (l *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	return l.enabled(level)
}

func emit(e *zerolog.Event, msg string, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		switch v := fields[i+1].(type) {
		case zerolog.LogObjectMarshaler:
			e = e.Object(key, v)
		case error:
			e = e.AnErr(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	e.Msg(msg)
}

func normalizeFields(fields []any) []interface{} {
	out := make([]interface{}, 0, len(fields))
	for i := 0; i+1 < len(fields); i += 2 {
		out = append(out, fmt.Sprint(fields[i]), fields[i+1])
	}
	return out
}

// ZerologProvider hands out ZerologLoggers writing JSON lines to one writer.
type ZerologProvider struct {
	base  zerolog.Logger
	level *atomic.Int32
}

// NewZerologProvider creates a provider writing to w at the given level.
func NewZerologProvider(w io.Writer, level Level) *ZerologProvider {
	lv := &atomic.Int32{}
	lv.Store(int32(level))
	return &ZerologProvider{
		base:  zerolog.New(w).With().Timestamp().Logger(),
		level: lv,
	}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger {
	return &ZerologLogger{z: p.base, level: p.level}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *ZerologProvider) SetLevel(level Level) {
	p.level.Store(int32(level))
}

var (
	providerMu sync.RWMutex
	provider   LoggerProvider = NewZerologProvider(os.Stderr, LevelInfo)
)

// SetProvider replaces the package provider and returns the previous one.
func SetProvider(p LoggerProvider) LoggerProvider {
	providerMu.Lock()
	defer providerMu.Unlock()
	prev := provider
	provider = p
	return prev
}

// GetLogger returns a logger from the package provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLogger()
}

// GetLoggerWithName returns a component logger from the package provider.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLoggerWithName(name)
}

// SetLevel sets the level of the package provider.
func SetLevel(level Level) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	provider.SetLevel(level)
}

// InstallWarningHandler routes errors.Warn through the package logger.
func InstallWarningHandler() {
	errors.SetZerologWarnFunc(func(w error) {
		GetLoggerWithName("warnings").Warn(w.Error(), "warning", w)
	})
}
