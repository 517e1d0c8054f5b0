// Package store owns the optional storage backends behind small sql seams.
// Only postgres exists; it backs shipment and manifest lookups.
package store

import (
	"context"
	"errors"
	"fmt"

	"scandesk/internal/platform/logger"
)

// Store holds the opened backends. PG is nil when postgres is disabled.
type Store struct {
	Log logger.Logger
	PG  TxRunner
}

// Row scans a single result row.
type Row interface {
	Scan(dest ...any) error
}

// Rows iterates a result set.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// CommandTag reports what a write did.
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is what repos query through, inside or outside a transaction.
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner is a RowQuerier that can also open transactions.
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Pinger reports readiness.
type Pinger interface{ Ping(context.Context) error }

// Option adjusts a Store before any backend opens.
type Option func(*Store) error

// WithLogger routes backend logs (boot retries, sql traces) to log.
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// Open builds a Store with every backend cfg enables.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	if cfg.PG.Enabled {
		a, err := openPG(ctx, cfg.PG, s.Log)
		if err != nil {
			return nil, err
		}
		s.PG = a
	}
	return s, nil
}

// Guard pings every backend that can be pinged.
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	if p, ok := s.PG.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
	}
	return nil
}

// Close releases every opened backend.
func (s *Store) Close(context.Context) error {
	if s == nil {
		return nil
	}
	if c, ok := s.PG.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
