package store

import (
	"context"
	"fmt"

	perr "scandesk/internal/platform/errors"
)

// ExecOne runs a write that must touch exactly one row.
func ExecOne(ctx context.Context, q RowQuerier, sql string, args ...any) error {
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if n := tag.RowsAffected(); n != 1 {
		return fmt.Errorf("want 1 row affected, got %d", n)
	}
	return nil
}

// One maps the single row sql returns. No row is perr.ErrNotFound; a second
// row is an error.
func One[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) (T, error) {
	var zero T
	rs, err := q.Query(ctx, sql, args...)
	if err != nil {
		return zero, err
	}
	defer rs.Close()

	if !rs.Next() {
		if err := rs.Err(); err != nil {
			return zero, err
		}
		return zero, perr.ErrNotFound
	}
	v, err := scan(rs)
	if err != nil {
		return zero, err
	}
	if rs.Next() {
		return zero, fmt.Errorf("want 1 row, got more")
	}
	return v, rs.Err()
}
