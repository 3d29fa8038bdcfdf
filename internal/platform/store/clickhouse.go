package store

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

type clickhouseDB struct{ conn driver.Conn }

// chOptions parses the DSN and stamps client info so system.query_log shows who ran what
func chOptions(cfg CHConfig, app string) (*clickhouse.Options, error) {
	opts, err := clickhouse.ParseDSN(cfg.URL)
	if err != nil {
		return nil, err
	}
	host, _ := os.Hostname()
	opts.ClientInfo.Products = append(opts.ClientInfo.Products,
		struct{ Name, Version string }{"orderlens", cfg.Tag},
		struct{ Name, Version string }{"app", app},
		struct{ Name, Version string }{"go", runtime.Version()},
		struct{ Name, Version string }{"commit", revision()},
		struct{ Name, Version string }{"host", host},
	)
	return opts, nil
}

func revision() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return s.Value[:7]
			}
		}
	}
	return "unknown"
}

func openClickhouse(ctx context.Context, cfg CHConfig, app string) (*clickhouseDB, error) {
	opts, err := chOptions(cfg, app)
	if err != nil {
		return nil, err
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, err
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.Ping(pctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &clickhouseDB{conn: conn}, nil
}

// Insert sends rows as one native batch
func (c *clickhouseDB) Insert(ctx context.Context, table string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	batch, err := c.conn.PrepareBatch(ctx, "INSERT INTO "+table)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := batch.Append(r...); err != nil {
			_ = batch.Abort()
			return err
		}
	}
	return batch.Send()
}

func (c *clickhouseDB) Exec(ctx context.Context, sql string, args ...any) error {
	return c.conn.Exec(ctx, sql, args...)
}

func (c *clickhouseDB) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rs, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return chRows{rs}, nil
}

func (c *clickhouseDB) Ping(ctx context.Context) error { return c.conn.Ping(ctx) }
func (c *clickhouseDB) Close() error                   { return c.conn.Close() }

// chRows drops the error from Close to fit Rows; Err still reports read failures
type chRows struct{ driver.Rows }

func (r chRows) Close() { _ = r.Rows.Close() }
