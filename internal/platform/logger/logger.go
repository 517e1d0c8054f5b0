// Package logger owns the process zerolog logger. Request handlers log through
// C(ctx) so every line carries the request id and operator.
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"scandesk/internal/platform/config/raw"
)

type Logger = zerolog.Logger

// Options shape the root logger. Format is json or console.
type Options struct {
	Level   string
	Format  string
	Service string
	Caller  bool
	Writer  io.Writer
}

// FromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_SERVICE and LOG_CALLER.
func FromEnv() Options {
	c := raw.New().Prefix("LOG_")
	return Options{
		Level:   c.Get("LEVEL", "debug"),
		Format:  c.Get("FORMAT", "console"),
		Service: c.Get("SERVICE", ""),
		Caller:  c.GetBool("CALLER", false),
	}
}

var (
	once sync.Once
	root zerolog.Logger
)

// Init builds the root logger. Only the first call, or the first Get, counts.
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano

		w := opt.Writer
		if w == nil {
			w = os.Stdout
		}
		if opt.Format == "console" {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}
		lvl, err := zerolog.ParseLevel(opt.Level)
		if err != nil || lvl == zerolog.NoLevel {
			lvl = zerolog.DebugLevel
		}

		b := zerolog.New(w).Level(lvl).With().Timestamp()
		if opt.Service != "" {
			b = b.Str("service", opt.Service)
		}
		if opt.Caller {
			b = b.Caller()
		}
		root = b.Logger()
	})
}

func Get() *Logger {
	Init(FromEnv())
	return &root
}

// Named tags lines with a component.
func Named(component string) *Logger {
	l := Get().With().Str("component", component).Logger()
	return &l
}

type ctxKey uint8

const (
	keyRequestID ctxKey = iota
	keyOperator
)

// WithRequest stores the fields C adds to every line.
func WithRequest(ctx context.Context, requestID, operator string) context.Context {
	if requestID != "" {
		ctx = context.WithValue(ctx, keyRequestID, requestID)
	}
	if operator != "" {
		ctx = context.WithValue(ctx, keyOperator, operator)
	}
	return ctx
}

// C returns the root logger with ctx's request fields.
func C(ctx context.Context) *Logger {
	b := Get().With()
	if s, _ := ctx.Value(keyRequestID).(string); s != "" {
		b = b.Str("request_id", s)
	}
	if s, _ := ctx.Value(keyOperator).(string); s != "" {
		b = b.Str("operator", s)
	}
	l := b.Logger()
	return &l
}
