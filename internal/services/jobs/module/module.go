// Package module implements the jobs module
package module

import (
	"context"

	"orderlens/internal/modkit"
	"orderlens/internal/modkit/repokit"
	"orderlens/internal/services/jobs/domain"
	"orderlens/internal/services/jobs/repo"
	"orderlens/internal/services/jobs/service"
)

// Ports exposed by the jobs module
type Ports struct {
	Jobs domain.ServicePort
	// Runner waits for in-flight jobs during shutdown
	Runner interface{ Wait(context.Context) error }
}

// Module owns the job service; it serves no routes
type Module struct {
	modkit.Base
	ports Ports
}

// New constructs the jobs module. WithPorts(domain.Ports) must carry the analyzer
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("jobs"),
	}, opts...)...)

	p, ok := b.Ports.(domain.Ports)
	if !ok || p.Analyzer == nil {
		panic("jobs module: expected WithPorts(jobs/domain.Ports) with an Analyzer")
	}

	cfg := FromConfig(deps.Cfg)
	if overrides.ListLimit > 0 {
		cfg.ListLimit = overrides.ListLimit
	}
	if overrides.Timeout > 0 {
		cfg.Timeout = overrides.Timeout
	}
	if overrides.Metrics != nil {
		cfg.Metrics = overrides.Metrics
	}
	cfg.Memory = cfg.Memory || overrides.Memory

	if p.Repo == nil {
		p.Repo = pickRepo(deps, cfg)
	}

	svc := service.New(p.Repo, p.Analyzer, cfg.Metrics, service.Config{
		ListLimit: cfg.ListLimit,
		Timeout:   cfg.Timeout,
	})
	return &Module{Base: modkit.NewBase(b, nil), ports: Ports{Jobs: svc, Runner: svc}}
}

// pickRepo prefers Postgres and falls back to memory when it is absent or unusable
func pickRepo(deps modkit.Deps, cfg Options) domain.Repo {
	if deps.PG == nil || cfg.Memory {
		return repo.NewMemory()
	}
	if err := repo.EnsureSchema(context.Background(), deps.PG); err != nil {
		deps.Log.Warn().Err(err).Msg("analysis_jobs unavailable, keeping jobs in memory")
		return repo.NewMemory()
	}
	return repokit.MustBind(repo.NewPG(), deps.PG)
}

func (m *Module) Ports() any { return m.ports }
