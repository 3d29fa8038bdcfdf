package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"orderlens/internal/core/order"
	perr "orderlens/internal/platform/errors"
	"orderlens/internal/services/jobs/domain"
)

// Memory keeps jobs in process; used when Postgres is not configured
type Memory struct {
	mu   sync.RWMutex
	jobs map[string]domain.Job
}

// NewMemory returns an empty in-process repo
func NewMemory() *Memory { return &Memory{jobs: map[string]domain.Job{}} }

var _ domain.Repo = (*Memory)(nil)

func (m *Memory) Create(_ context.Context, j domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[j.ID]; ok {
		return perr.Newf(perr.ErrorCodeDuplicateKey, "job %s exists", j.ID)
	}
	m.jobs[j.ID] = j
	return nil
}

func (m *Memory) SetStatus(_ context.Context, id string, s domain.Status) error {
	return m.update(id, func(j *domain.Job) { j.Status = s })
}

func (m *Memory) Complete(_ context.Context, id string, r order.Result, at time.Time) error {
	return m.update(id, func(j *domain.Job) {
		j.Status = domain.StatusCompleted
		j.Result = &r
		j.FinishedAt = &at
	})
}

func (m *Memory) Fail(_ context.Context, id string, msg string, at time.Time) error {
	return m.update(id, func(j *domain.Job) {
		j.Status = domain.StatusFailed
		j.Error = msg
		j.FinishedAt = &at
	})
}

func (m *Memory) update(id string, fn func(*domain.Job)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return perr.NotFoundf("job %s not found", id)
	}
	if j.Status.Terminal() {
		return perr.InvalidArgf("job %s already finished", id)
	}
	fn(&j)
	m.jobs[id] = j
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return domain.Job{}, perr.NotFoundf("job %s not found", id)
	}
	return j, nil
}

// List returns newest first
func (m *Memory) List(_ context.Context, limit int) ([]domain.Summary, error) {
	m.mu.RLock()
	out := make([]domain.Summary, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j.Summarize())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool {
		if !out[a].StartedAt.Equal(out[b].StartedAt) {
			return out[a].StartedAt.After(out[b].StartedAt)
		}
		return out[a].ID < out[b].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
