package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	cberrors "github.com/YuminosukeSato/cartboost/pkg/errors"
)

const (
	// ErrAttrKey is the field key errors are logged under.
	ErrAttrKey = "error"
	// ComponentAttrKey is the field key set by GetLoggerWithName.
	ComponentAttrKey = "component"
)

var (
	providerMu      sync.RWMutex
	defaultProvider LoggerProvider = NewZerologProvider(os.Stderr, LevelInfo)
)

func init() {
	zerolog.ErrorStackMarshaler = marshalStack
	zerolog.ErrorFieldName = ErrAttrKey
}

// SetupLogger installs a zerolog-backed provider writing JSON lines to w at the
// given level ("debug", "info", "warn" or "error"). Library warnings raised through
// pkg/errors.Warn are routed to the same provider.
func SetupLogger(loglevel string, w io.Writer) error {
	level, err := ToLogLevel(loglevel)
	if err != nil {
		return err
	}
	p := NewZerologProvider(w, level)
	SetProvider(p)
	return nil
}

// SetProvider replaces the global provider.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defaultProvider = p
	providerMu.Unlock()

	warnLogger := p.GetLoggerWithName("warnings")
	cberrors.SetZerologWarnFunc(func(w error) {
		warnLogger.Warn(w.Error(), ErrorTypeKey, fmt.Sprintf("%T", w))
	})
}

// GetLogger returns the default logger of the global provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider.GetLogger()
}

// GetLoggerWithName returns a logger of the global provider tagged with name.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider.GetLoggerWithName(name)
}

// ToLogLevel parses a level name.
func ToLogLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, cberrors.NewValueError("log.ToLogLevel", fmt.Sprintf("invalid log level: %q", level))
	}
}

func toZerologLevel(l Level) zerolog.Level {
	switch {
	case l <= LevelDebug:
		return zerolog.DebugLevel
	case l <= LevelInfo:
		return zerolog.InfoLevel
	case l <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ZerologProvider implements LoggerProvider on top of a zerolog.Logger.
type ZerologProvider struct {
	base zerolog.Logger
}

// NewZerologProvider creates a provider writing JSON lines to w.
func NewZerologProvider(w io.Writer, level Level) *ZerologProvider {
	return &ZerologProvider{
		base: zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger(),
	}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger {
	return &zerologLogger{zl: p.base}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return &zerologLogger{zl: p.base.With().Str(ComponentAttrKey, name).Logger()}
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *ZerologProvider) SetLevel(level Level) {
	p.base = p.base.Level(toZerologLevel(level))
}

type zerologLogger struct {
	zl zerolog.Logger
}

func (l *zerologLogger) Debug(msg string, fields ...any) { l.emit(l.zl.Debug(), msg, fields) }
func (l *zerologLogger) Info(msg string, fields ...any)  { l.emit(l.zl.Info(), msg, fields) }
func (l *zerologLogger) Warn(msg string, fields ...any)  { l.emit(l.zl.Warn(), msg, fields) }
func (l *zerologLogger) Error(msg string, fields ...any) { l.emit(l.zl.Error(), msg, fields) }

func (l *zerologLogger) With(fields ...any) Logger {
	err, kv := splitLeadingError(fields)
	ctx := l.zl.With().Fields(kv)
	if err != nil {
		ctx = ctx.Err(err)
	}
	return &zerologLogger{zl: ctx.Logger()}
}

func (l *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return l.zl.GetLevel() <= toZerologLevel(level)
}

func (l *zerologLogger) emit(e *zerolog.Event, msg string, fields []any) {
	if e == nil {
		return
	}
	err, kv := splitLeadingError(fields)
	if err != nil {
		e = e.Stack().Err(err)
	}
	e.Fields(kv).Msg(msg)
}

// splitLeadingError separates an error passed as the first field from the
// key/value pairs that follow it. A dangling key without a value is dropped.
func splitLeadingError(fields []any) (error, []any) {
	var err error
	if len(fields) > 0 {
		if e, ok := fields[0].(error); ok {
			err = e
			fields = fields[1:]
		}
	}
	if len(fields)%2 == 1 {
		fields = fields[:len(fields)-1]
	}
	return err, fields
}

// marshalStack renders the stack recorded by cockroachdb/errors, if any.
func marshalStack(err error) interface{} {
	if err == nil {
		return nil
	}
	details := errors.GetSafeDetails(err).SafeDetails
	if len(details) == 0 {
		return nil
	}
	return details[0]
}
