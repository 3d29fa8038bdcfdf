package domain

import (
	"context"
	"time"

	"orderlens/internal/core/order"
	exdom "orderlens/internal/services/extract/domain"
)

// Repo persists jobs. Transitions out of a terminal state are rejected
type Repo interface {
	Create(ctx context.Context, j Job) error
	SetStatus(ctx context.Context, id string, s Status) error
	Complete(ctx context.Context, id string, r order.Result, at time.Time) error
	Fail(ctx context.Context, id string, msg string, at time.Time) error
	Get(ctx context.Context, id string) (Job, error)
	List(ctx context.Context, limit int) ([]Summary, error)
}

// ServicePort is the external port of the jobs service
type ServicePort interface {
	// Submit stores a job and starts it in the background
	Submit(ctx context.Context, s Submission) (string, error)
	Get(ctx context.Context, id string) (Job, error)
	List(ctx context.Context, limit int) ([]Summary, error)
}

// Ports are the jobs module inputs supplied through modkit.WithPorts
type Ports struct {
	Analyzer exdom.AnalyzerPort // required
	Repo     Repo               // optional, picked from deps when nil
}
