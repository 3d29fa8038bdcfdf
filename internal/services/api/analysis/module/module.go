// Package module wires the analysis endpoints into the API
package module

import (
	"orderlens/internal/modkit"
	"orderlens/internal/modkit/httpkit"
	"orderlens/internal/services/api/analysis/domain"
	anhttp "orderlens/internal/services/api/analysis/http"
	jobsdom "orderlens/internal/services/jobs/domain"
)

// Ports are what the module consumes, passed with modkit.WithPorts
type Ports struct {
	Jobs      jobsdom.ServicePort  // required
	Artifacts domain.ArtifactsPort // optional
}

// Module serves /analysis
type Module struct{ modkit.Base }

// New panics without a Jobs port; that is a wiring bug
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("analysis"), modkit.WithPrefix("/analysis")}, opts...)...)
	p, ok := b.Ports.(Ports)
	if !ok || p.Jobs == nil {
		panic("analysis module: WithPorts(module.Ports) with Jobs is required")
	}
	d := anhttp.Deps{
		Jobs:      p.Jobs,
		Artifacts: p.Artifacts,
		MaxBody:   int64(deps.Cfg.Prefix("API_").MayPositiveInt("MAX_BODY_BYTES", 32<<20)),
	}
	return &Module{Base: modkit.NewBase(b, func(r httpkit.Router) { anhttp.Register(r, d) })}
}

func (*Module) Ports() any { return nil }
