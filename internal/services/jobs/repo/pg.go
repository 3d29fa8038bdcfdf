// Package repo provides storage for analysis jobs
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"orderlens/internal/core/order"
	"orderlens/internal/modkit/repokit"
	perr "orderlens/internal/platform/errors"
	"orderlens/internal/services/jobs/domain"
)

// Schema creates the jobs table; applied by EnsureSchema at module build
const Schema = `
CREATE TABLE IF NOT EXISTS analysis_jobs (
  id                  uuid        PRIMARY KEY,
  status              text        NOT NULL CHECK (status IN ('processing','analyzing','completed','failed')),
  started_at          timestamptz NOT NULL,
  finished_at         timestamptz,
  shop_name           text        NOT NULL DEFAULT '',
  start_date          text        NOT NULL DEFAULT '',
  end_date            text        NOT NULL DEFAULT '',
  file_name           text        NOT NULL DEFAULT '',
  conversation_length integer     NOT NULL DEFAULT 0,
  result              jsonb,
  error               text        NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS analysis_jobs_started_idx ON analysis_jobs (started_at DESC);
`

// EnsureSchema applies Schema in one transaction
func EnsureSchema(ctx context.Context, tx repokit.TxRunner) error {
	// lock_timeout stops startup from queueing forever behind a lock on analysis_jobs
	err := repokit.InTx(ctx, tx, func(q repokit.Queryer) error {
		_, err := q.Exec(ctx, Schema)
		return err
	}, repokit.SetLocal("lock_timeout", "5s"))
	if err != nil {
		return perr.FromPostgres(err, "create analysis_jobs")
	}
	return nil
}

type binder struct{}

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[domain.Repo] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) domain.Repo { return &pg{q: q} }

type pg struct{ q repokit.Queryer }

func (s *pg) Create(ctx context.Context, j domain.Job) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO analysis_jobs
		  (id, status, started_at, shop_name, start_date, end_date, file_name, conversation_length)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8)`,
		j.ID, string(j.Status), j.StartedAt.UTC(), j.ShopName, j.StartDate, j.EndDate, j.FileName, j.ConversationLength,
	)
	if err != nil {
		return perr.FromPostgres(err, "create job")
	}
	return nil
}

func (s *pg) SetStatus(ctx context.Context, id string, st domain.Status) error {
	return s.transition(ctx, id, `
		UPDATE analysis_jobs SET status = $2
		 WHERE id = $1::uuid AND status NOT IN ('completed','failed')`,
		id, string(st),
	)
}

func (s *pg) Complete(ctx context.Context, id string, r order.Result, at time.Time) error {
	body, err := json.Marshal(r)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode result")
	}
	return s.transition(ctx, id, `
		UPDATE analysis_jobs SET status = 'completed', result = $2::jsonb, finished_at = $3
		 WHERE id = $1::uuid AND status NOT IN ('completed','failed')`,
		id, body, at.UTC(),
	)
}

func (s *pg) Fail(ctx context.Context, id string, msg string, at time.Time) error {
	return s.transition(ctx, id, `
		UPDATE analysis_jobs SET status = 'failed', error = $2, finished_at = $3
		 WHERE id = $1::uuid AND status NOT IN ('completed','failed')`,
		id, msg, at.UTC(),
	)
}

// transition runs a guarded update and tells a missing job apart from a finished one
func (s *pg) transition(ctx context.Context, id, sql string, args ...any) error {
	tag, err := s.q.Exec(ctx, sql, args...)
	if err != nil {
		return perr.FromPostgres(err, "update job")
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return perr.InvalidArgf("job %s already finished", id)
}

func (s *pg) Get(ctx context.Context, id string) (domain.Job, error) {
	var (
		j        domain.Job
		status   string
		finished *time.Time
		result   []byte
	)
	err := s.q.QueryRow(ctx, `
		SELECT id::text, status, started_at, finished_at, shop_name, start_date, end_date,
		       file_name, conversation_length, result, error
		  FROM analysis_jobs
		 WHERE id = $1::uuid`, id,
	).Scan(&j.ID, &status, &j.StartedAt, &finished, &j.ShopName, &j.StartDate, &j.EndDate,
		&j.FileName, &j.ConversationLength, &result, &j.Error)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Job{}, perr.NotFoundf("job %s not found", id)
		}
		// malformed uuid text is indistinguishable from an unknown job for callers
		if code, ok := perr.DBErrorCode(err); ok && code == perr.ErrorCodeInvalidArgument {
			return domain.Job{}, perr.NotFoundf("job %s not found", id)
		}
		return domain.Job{}, perr.FromPostgres(err, "get job")
	}
	j.Status = domain.Status(status)
	j.FinishedAt = finished
	if len(result) > 0 {
		var r order.Result
		if err := json.Unmarshal(result, &r); err != nil {
			return domain.Job{}, perr.Wrap(err, perr.ErrorCodeJSON, "decode result")
		}
		j.Result = &r
	}
	return j, nil
}

func (s *pg) List(ctx context.Context, limit int) ([]domain.Summary, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id::text, status, started_at, shop_name, start_date, end_date,
		       file_name, conversation_length, result IS NOT NULL
		  FROM analysis_jobs
		 ORDER BY started_at DESC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, perr.FromPostgres(err, "list jobs")
	}
	defer rows.Close()

	out := make([]domain.Summary, 0, 16)
	for rows.Next() {
		var (
			sum    domain.Summary
			status string
		)
		if err := rows.Scan(&sum.ID, &status, &sum.StartedAt, &sum.ShopName, &sum.StartDate,
			&sum.EndDate, &sum.FileName, &sum.ConversationLength, &sum.HasResult); err != nil {
			return nil, perr.FromPostgres(err, "scan job")
		}
		sum.Status = domain.Status(status)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromPostgres(err, "list jobs")
	}
	return out, nil
}
