package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"orderlens/internal/platform/logger"
)

// pgxQuerier is what a pool and a transaction have in common
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type querier struct{ q pgxQuerier }

func (q querier) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return q.q.Exec(ctx, sql, args...)
}

func (q querier) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rs, err := q.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return rs, nil
}

func (q querier) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return q.q.QueryRow(ctx, sql, args...)
}

// postgres is the pooled TxRunner
type postgres struct {
	querier
	pool *pgxpool.Pool
}

func (p *postgres) Tx(ctx context.Context, fn func(RowQuerier) error) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error { return fn(querier{q: tx}) })
}

func (p *postgres) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }
func (p *postgres) Close()                         { p.pool.Close() }

// newPool is swapped in tests
var newPool = pgxpool.NewWithConfig

// openPostgres builds the pool and waits for the server, backing off from
// 150ms to 2s between ConnectRetries attempts
func openPostgres(ctx context.Context, cfg PGConfig, log logger.Logger) (*postgres, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.LogSQL {
		pcfg.ConnConfig.Tracer = &queryLog{log: log.With().Str("component", "pg").Logger(), slow: cfg.Slow}
	}
	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	attempts := max(cfg.ConnectRetries, 1)
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	wait := 150 * time.Millisecond
	for i := 1; ; i++ {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		err = pool.Ping(pctx)
		cancel()
		if err == nil {
			return &postgres{querier: querier{q: pool}, pool: pool}, nil
		}
		if i == attempts {
			break
		}
		log.Debug().Err(err).Int("attempt", i).Msg("postgres not ready")
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait = min(wait*2, 2*time.Second)
	}
	pool.Close()
	return nil, fmt.Errorf("ping failed after %d attempts: %w", attempts, err)
}
