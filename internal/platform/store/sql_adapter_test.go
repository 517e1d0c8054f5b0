package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"scandesk/internal/platform/store/pg"
)

type recorder struct{ events []pg.QueryEvent }

func (r *recorder) OnQuery(_ context.Context, ev pg.QueryEvent) { r.events = append(r.events, ev) }

type stubRow struct{ err error }

func (s stubRow) Scan(...any) error { return s.err }

type stubPgx struct {
	queryErr error
	scanErr  error
}

func (s stubPgx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("DELETE 3"), nil
}

func (s stubPgx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, s.queryErr
}

func (s stubPgx) QueryRow(context.Context, string, ...any) pgx.Row { return stubRow{s.scanErr} }

func TestTraced_EmitsPerStatement(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	noRows := errors.New("no rows")
	q := traced{db: stubPgx{queryErr: errors.New("syntax"), scanErr: noRows}, tracer: rec, slowMs: 0}

	tag, err := q.Exec(ctx, "DELETE FROM shipments WHERE id = $1", 7)
	if err != nil || tag.RowsAffected() != 3 {
		t.Fatalf("Exec = %v, %v", tag, err)
	}
	if _, err := q.Query(ctx, "SELEC"); err == nil {
		t.Fatalf("Query should fail")
	}

	row := q.QueryRow(ctx, "SELECT 1")
	if len(rec.events) != 2 {
		t.Fatalf("QueryRow traced before Scan: %d events", len(rec.events))
	}
	if err := row.Scan(); !errors.Is(err, noRows) {
		t.Fatalf("Scan = %v", err)
	}

	if len(rec.events) != 3 {
		t.Fatalf("events = %d", len(rec.events))
	}
	if ev := rec.events[0]; ev.SQL != "DELETE FROM shipments WHERE id = $1" || ev.Err != nil || !ev.Slow {
		t.Fatalf("exec event = %+v", ev)
	}
	if rec.events[1].Err == nil || !errors.Is(rec.events[2].Err, noRows) {
		t.Fatalf("errors not carried: %+v", rec.events)
	}
}

func TestTraced_NegativeSlowNeverSlow(t *testing.T) {
	rec := &recorder{}
	q := traced{db: stubPgx{}, tracer: rec, slowMs: -1}
	_, _ = q.Exec(context.Background(), "UPDATE x")
	if rec.events[0].Slow {
		t.Fatalf("negative threshold marked slow")
	}
}

func TestTraced_NoTracer(t *testing.T) {
	q := traced{db: stubPgx{}}
	if _, err := q.Exec(context.Background(), "UPDATE x"); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if err := q.QueryRow(context.Background(), "SELECT 1").Scan(); err != nil {
		t.Fatalf("Scan: %v", err)
	}
}
