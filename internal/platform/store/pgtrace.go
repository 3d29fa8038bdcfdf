package store

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"orderlens/internal/platform/logger"
)

// queryLog is a pgx.QueryTracer that logs every statement with its duration
type queryLog struct {
	log  logger.Logger
	slow time.Duration
}

type traceKey struct{}

type traceStart struct {
	at  time.Time
	sql string
	n   int
}

func (t *queryLog) TraceQueryStart(ctx context.Context, _ *pgx.Conn, d pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceKey{}, traceStart{at: time.Now(), sql: d.SQL, n: len(d.Args)})
}

func (t *queryLog) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, d pgx.TraceQueryEndData) {
	st, ok := ctx.Value(traceKey{}).(traceStart)
	if !ok {
		return
	}
	took := time.Since(st.at)
	evt := t.log.Debug()
	switch {
	case d.Err != nil:
		evt = t.log.Warn().Err(d.Err)
	case t.slow > 0 && took >= t.slow:
		evt = t.log.Warn().Bool("slow", true)
	}
	// args are not logged, transcripts and results travel as parameters
	evt.Str("sql", squash(st.sql)).
		Int("args", st.n).
		Int64("rows", d.CommandTag.RowsAffected()).
		Dur("took", took).
		Msg("pg query")
}

// squash folds runs of whitespace so multi-line SQL fits one log field
func squash(s string) string { return strings.Join(strings.Fields(s), " ") }
