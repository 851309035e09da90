package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oakwood-commons/petsview/pkg/settings"
)

// Define an unexported custom type for the context key to prevent collisions.
type loggerContextKey struct{}

const (
	RootCommandKey = "root_command"
	SubCommandKey  = "sub_command"
	CommitKey      = "commit"
	VersionKey     = "version"
	BuildTimeKey   = "build_time"
	GoVersionKey   = "go_version"
	TimeStampKey   = "timestamp"
	MessageKey     = "message"
	ComponentKey   = "component"
	RefreshIDKey   = "refresh_id"
	URLKey         = "url"
	StageKey       = "stage"
	PathKey        = "path"
)

var (
	once sync.Once // Setup builds the loggers at most once

	// globalZapLogger is the underlying *zap.Logger, kept for Zap-specific
	// operations like Sync(). It is package-private so callers cannot swap it.
	globalZapLogger *zap.Logger

	// globalLogrLogger is what FromContext returns when the context carries no
	// logger of its own. It is package-private for the same reason.
	globalLogrLogger *logr.Logger

	// defaultNoopLogger is returned before Setup has run.
	defaultNoopLogger logr.Logger = logr.Discard()
)

// Options controls how the process-wide logger is built.
type Options struct {
	// Level is a zapcore level: -1 debug, 0 info, 1 warn.
	Level int8
	// Output receives JSON log lines. Nil means stderr.
	Output io.Writer
}

// Setup builds the global Zap and Logr loggers from opts.
// Only the first call has an effect; later calls return the same logger
// and ignore their options, including Output.
// opts.Level: zapcore level; -1 enables V(1) debug lines, 0 is info.
// opts.Output: where JSON lines go. A zapcore.WriteSyncer is synced on Sync.
// Call it before FromContext is expected to return a real logger.
func Setup(opts Options) *logr.Logger {
	once.Do(func() {
		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderCfg.TimeKey = TimeStampKey
		encoderCfg.MessageKey = MessageKey

		goVersion := "unknown"
		if buildInfo, ok := debug.ReadBuildInfo(); ok && buildInfo != nil {
			goVersion = buildInfo.GoVersion
		}

		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			sinkFor(opts.Output),
			zap.NewAtomicLevelAt(zapcore.Level(opts.Level)),
		).With(
			[]zapcore.Field{
				zap.String(CommitKey, settings.VersionInformation.Commit),
				zap.String(VersionKey, settings.VersionInformation.BuildVersion),
				zap.String(BuildTimeKey, settings.VersionInformation.BuildTime),
				zap.String(GoVersionKey, goVersion),
			},
		)

		// AddCaller records file:line, AddStacktrace attaches stacks to errors,
		// and WriteThenPanic flushes before a Fatal panics.
		globalZapLogger = zap.New(core,
			zap.AddCaller(),
			zap.AddStacktrace(zap.ErrorLevel),
			zap.WithFatalHook(zapcore.WriteThenPanic),
		)

		gl := zapr.NewLogger(globalZapLogger)
		globalLogrLogger = &gl
	})
	if globalLogrLogger == nil {
		return &defaultNoopLogger
	}
	return globalLogrLogger
}

// Get initializes the global logger writing to stderr at logLevel.
func Get(logLevel int8) *logr.Logger {
	return Setup(Options{Level: logLevel})
}

func sinkFor(w io.Writer) zapcore.WriteSyncer {
	if w == nil {
		return zapcore.Lock(os.Stderr)
	}
	if ws, ok := w.(zapcore.WriteSyncer); ok {
		return zapcore.Lock(ws)
	}
	return zapcore.Lock(zapcore.AddSync(w))
}

// WithLogger returns a context carrying log. If the context already holds the
// same instance, ctx is returned unchanged.
func WithLogger(ctx context.Context, log *logr.Logger) context.Context {
	if lp, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok {
		if lp == log {
			return ctx
		}
	}
	return context.WithValue(ctx, loggerContextKey{}, log)
}

// FromContext retrieves the logr.Logger from the context.
// If no logger is found in the context, it returns the global logger.
// If Setup has not been called, it returns a no-op logger so callers never
// need a nil check.
func FromContext(ctx context.Context) *logr.Logger {
	if log, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok {
		return log
	} else if log := globalLogrLogger; log != nil {
		return log
	}
	return &defaultNoopLogger
}

// Sync flushes buffered log entries. Call it before the process exits.
func Sync() {
	if globalZapLogger != nil {
		if err := globalZapLogger.Sync(); err != nil {
			if isIgnorableSyncError(err) {
				return
			}
			fmt.Fprintf(os.Stderr, "WARNING: failed to sync zap logger: %v\n", err)
		}
	}
}

// isIgnorableSyncError reports Sync errors that stderr pipes and TTYs return
// routinely. Windows wraps ERROR_INVALID_HANDLE in *os.PathError, so the
// message is matched as well. A log file closed by the CLI is also ignored.
func isIgnorableSyncError(err error) bool {
	if errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.EIO) || errors.Is(err, syscall.EBADF) {
		return true
	}
	if errors.Is(err, os.ErrClosed) {
		return true
	}
	if strings.Contains(err.Error(), "The handle is invalid") {
		return true
	}
	return false
}

// GetGlobalLogger returns the globally configured logr.Logger.
// It serves top-level code that has no context at hand, such as main.
// It returns a no-op logger if Setup has not been called.
func GetGlobalLogger() *logr.Logger {
	if globalLogrLogger != nil {
		return globalLogrLogger
	}
	return &defaultNoopLogger
}

func GetNoopLogger() *logr.Logger {
	return &defaultNoopLogger
}

// WithValues returns a new logr.Logger with additional key-value pairs.
// lgr: the base logger to augment; it is not modified.
// keysAndValues: alternating keys and values, as logr expects.
// Returns a pointer to the new logger so it can be stored with WithLogger.
func WithValues(lgr *logr.Logger, keysAndValues ...any) *logr.Logger {
	nlgr := lgr.WithValues(keysAndValues...)
	return &nlgr
}

// ForComponent is WithValues keyed by ComponentKey.
func ForComponent(ctx context.Context, component string) *logr.Logger {
	return WithValues(FromContext(ctx), ComponentKey, component)
}
