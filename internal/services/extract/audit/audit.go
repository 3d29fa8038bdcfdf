// Package audit keeps LLM artifacts in ClickHouse so a degraded analysis can
// be inspected after the fact
package audit

import (
	"context"
	"strings"
	"time"

	perr "orderlens/internal/platform/errors"
	"orderlens/internal/platform/store"
	"orderlens/internal/services/extract/domain"
)

// Table is the default artifact table
const Table = "llm_artifacts"

// Schema creates the artifact table. Rows expire after 30 days
const Schema = `CREATE TABLE IF NOT EXISTS llm_artifacts (
	job_id     String,
	kind       LowCardinality(String),
	chunk      Int32,
	part       Int32,
	body       String,
	truncated  UInt8,
	created_at DateTime64(3, 'UTC')
) ENGINE = MergeTree
ORDER BY (job_id, created_at)
TTL toDateTime(created_at) + INTERVAL 30 DAY`

// DefaultMaxBody caps a stored body in bytes
const DefaultMaxBody = 1 << 20

// Sink writes artifacts to ClickHouse; it satisfies domain.SinkPort
type Sink struct {
	ch      store.Clickhouse
	table   string
	maxBody int
}

// New returns a sink over ch; maxBody <= 0 takes DefaultMaxBody
func New(ch store.Clickhouse, maxBody int) *Sink {
	if ch == nil {
		panic("audit: nil clickhouse")
	}
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}
	return &Sink{ch: ch, table: Table, maxBody: maxBody}
}

var _ domain.SinkPort = (*Sink)(nil)

// EnsureSchema creates the table when missing
func (s *Sink) EnsureSchema(ctx context.Context) error {
	return perr.WrapIf(s.ch.Exec(ctx, Schema), perr.ErrorCodeDB, "create llm_artifacts")
}

// Record inserts one artifact row
func (s *Sink) Record(ctx context.Context, a domain.Artifact) error {
	body, cut := clip(a.Body, s.maxBody)
	at := a.At
	if at.IsZero() {
		at = time.Now()
	}
	var truncated uint8
	if cut {
		truncated = 1
	}
	row := []any{a.JobID, string(a.Kind), int32(a.Chunk), int32(a.Part), body, truncated, at.UTC()}
	return perr.WrapIf(s.ch.Insert(ctx, s.table, [][]any{row}), perr.ErrorCodeDB, "insert llm artifact")
}

// List returns the artifacts of one job in recording order
func (s *Sink) List(ctx context.Context, jobID string, limit int) ([]domain.Artifact, error) {
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	rows, err := s.ch.Query(ctx,
		`SELECT job_id, kind, chunk, part, body, created_at FROM `+s.table+`
		WHERE job_id = ? ORDER BY created_at, chunk, part LIMIT ?`, jobID, limit)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "query llm artifacts")
	}
	defer rows.Close()

	var out []domain.Artifact
	for rows.Next() {
		var (
			a           domain.Artifact
			kind        string
			chunk, part int32
		)
		if err := rows.Scan(&a.JobID, &kind, &chunk, &part, &a.Body, &a.At); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeDB, "scan llm artifact")
		}
		a.Kind, a.Chunk, a.Part = domain.ArtifactKind(kind), int(chunk), int(part)
		out = append(out, a)
	}
	return out, perr.WrapIf(rows.Err(), perr.ErrorCodeDB, "iterate llm artifacts")
}

// clip cuts s to at most n bytes; a rune split by the cut is dropped
func clip(s string, n int) (string, bool) {
	if len(s) <= n {
		return s, false
	}
	return strings.ToValidUTF8(s[:n], ""), true
}
