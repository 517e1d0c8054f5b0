package pg

import (
	"context"
	"strings"

	"scandesk/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one finished statement.
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives every traced statement.
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs statements through root regardless of the process level.
// Slow statements are warnings.
func Tracer(root logger.Logger) QueryTracer {
	return logTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type logTracer struct{ log zerolog.Logger }

func (t logTracer) OnQuery(_ context.Context, ev QueryEvent) {
	e := t.log.Info()
	if ev.Slow {
		e = t.log.Warn()
	}
	e.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000).
		Bool("slow", ev.Slow).
		Str("sql", oneLine(ev.SQL)).
		Interface("args", ev.Args).
		Err(ev.Err).
		Msg("pg query")
}

// oneLine folds every whitespace run in sql to one space.
func oneLine(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))
	gap := false
	for _, r := range sql {
		switch r {
		case ' ', '\t', '\n', '\r':
			if !gap {
				b.WriteByte(' ')
			}
			gap = true
		default:
			b.WriteRune(r)
			gap = false
		}
	}
	return b.String()
}
