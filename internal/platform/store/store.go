// Package store opens the optional backends: Postgres for job records and
// ClickHouse for the model artifact log. Either may be absent; callers get nil
// seams and fall back
package store

import (
	"context"
	"errors"
	"fmt"

	"orderlens/internal/platform/logger"
)

// Row is a single result row
type Row interface {
	Scan(dest ...any) error
}

// Rows is a result set; callers must Close it
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// CommandTag reports what a statement touched
type CommandTag interface {
	RowsAffected() int64
}

// RowQuerier is the SQL surface repositories use
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner is a RowQuerier that can also run fn inside one transaction.
// fn's error rolls back, nil commits
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is the columnar seam: batch inserts, DDL and reads
type Clickhouse interface {
	Insert(ctx context.Context, table string, rows [][]any) error
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close() error
}

// Store holds whichever backends are configured
type Store struct {
	Log logger.Logger
	PG  TxRunner   // nil when CORE_PG_URL is unset
	CH  Clickhouse // nil when CORE_CH_URL is unset
}

// Option adjusts Open
type Option func(*Store)

// WithLogger routes backend logs (SQL tracing, retries) through log
func WithLogger(log logger.Logger) Option { return func(s *Store) { s.Log = log } }

// Open connects every enabled backend. On error anything already opened is closed
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{Log: *logger.Named("store")}
	for _, o := range opts {
		o(s)
	}
	if cfg.PG.Enabled {
		pg, err := openPostgres(ctx, cfg.PG, s.Log)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		s.PG = pg
	}
	if cfg.CH.Enabled {
		ch, err := openClickhouse(ctx, cfg.CH, cfg.AppName)
		if err != nil {
			_ = s.Close(ctx)
			return nil, fmt.Errorf("clickhouse: %w", err)
		}
		s.CH = ch
	}
	return s, nil
}

type pinger interface{ Ping(context.Context) error }

// Ping checks every open backend and joins the failures
func (s *Store) Ping(ctx context.Context) error {
	var errs []error
	for name, b := range map[string]any{"pg": s.PG, "ch": s.CH} {
		if p, ok := b.(pinger); ok {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close releases every open backend
func (s *Store) Close(context.Context) error {
	var errs []error
	if s.CH != nil {
		errs = append(errs, s.CH.Close())
	}
	if c, ok := s.PG.(interface{ Close() }); ok {
		c.Close()
	}
	return errors.Join(errs...)
}
