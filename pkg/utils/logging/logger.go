package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/m-mizutani/clog"
)

type ctxLoggerKey struct{}

var (
	defaultLogger = New(os.Stderr)
	defaultMu     sync.RWMutex
)

type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

type options struct {
	level  slog.Level
	format Format
}

type Option func(*options)

// WithLevel sets the minimum level by name: debug, info, warn(ing) or error.
// Unknown names fall back to info.
func WithLevel(level string) Option {
	return func(o *options) {
		o.level = parseLevel(level)
	}
}

// WithFormat selects console (colored, human) or json output
func WithFormat(format Format) Option {
	return func(o *options) {
		o.format = format
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger writing to w. The console format uses clog and renders
// goerr values with their attached context.
func New(w io.Writer, opts ...Option) *slog.Logger {
	o := options{level: slog.LevelInfo, format: FormatConsole}
	for _, opt := range opts {
		opt(&o)
	}
	if w == nil {
		w = os.Stderr
	}

	if o.format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: o.level}))
	}

	return slog.New(clog.New(
		clog.WithWriter(w),
		clog.WithLevel(o.level),
		clog.WithTimeFmt("15:04:05"),
		clog.WithSource(false),
		clog.WithAttrHook(clog.GoerrHook),
	))
}

func Default() *slog.Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

func SetDefault(logger *slog.Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// With embeds the logger into ctx
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// From returns the logger embedded in ctx, or the default logger
func From(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return Default()
}

// ErrAttr is a shorthand for logging an error under the "error" key
func ErrAttr(err error) slog.Attr {
	return slog.Any("error", err)
}
