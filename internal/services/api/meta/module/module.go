// Package module serves health, readiness and version under /meta
package module

import (
	"time"

	"orderlens/internal/modkit"
	"orderlens/internal/modkit/httpkit"
	metahttp "orderlens/internal/services/api/meta/http"
)

// ServiceName is reported by the health and version endpoints
const ServiceName = "orderlens-api"

// Module is the meta module; it exports no ports
type Module struct{ modkit.Base }

// New builds the module. Readiness probes whichever stores deps carries
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("meta"), modkit.WithPrefix("/meta")}, opts...)...)
	d := metahttp.Deps{ServiceName: ServiceName, StartedAt: time.Now(), PG: deps.PG, CH: deps.CH}
	return &Module{Base: modkit.NewBase(b, func(r httpkit.Router) { metahttp.Register(r, d) })}
}

func (*Module) Ports() any { return nil }
