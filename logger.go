package axis

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// Handler selects the slog handler NewLogger builds
type Handler int

const (
	JSONHandler Handler = iota
	TextHandler
	DevHandler
)

type loggerOpts struct {
	level   slog.Level
	handler Handler
}

// LoggerOpt configures NewLogger
type LoggerOpt func(o *loggerOpts)

func WithLoggerLevel(lvl slog.Level) LoggerOpt {
	return func(o *loggerOpts) { o.level = lvl }
}

func WithHandler(h Handler) LoggerOpt {
	return func(o *loggerOpts) { o.handler = h }
}

// NewLogger builds a structured logger writing to w. Without options the
// handler comes from AXIS_LOG_HANDLER ("json", "text" or "dev") and defaults
// to the colorized dev handler.
func NewLogger(w io.Writer, opts ...LoggerOpt) *slog.Logger {
	o := &loggerOpts{
		level:   slog.LevelInfo,
		handler: DevHandler,
	}
	switch strings.ToLower(os.Getenv(EnvPrefix + "LOG_HANDLER")) {
	case "json":
		o.handler = JSONHandler
	case "txt", "text":
		o.handler = TextHandler
	}
	for _, apply := range opts {
		apply(o)
	}

	switch o.handler {
	case DevHandler:
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      o.level,
			TimeFormat: "[15:04:05.000]",
		}))
	case TextHandler:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: o.level}))
	default:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: o.level}))
	}
}

// discardLogger is the default for axes built without WithLogger
func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
