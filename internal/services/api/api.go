// Package api provides the HTTP API for the application
package api

import (
	"context"

	"orderlens/internal/platform/config"
	"orderlens/internal/platform/logger"
	"orderlens/internal/platform/metrics"
	phttp "orderlens/internal/platform/net/http"
	"orderlens/internal/platform/store"

	"orderlens/internal/modkit"
	"orderlens/internal/modkit/httpkit"
	"orderlens/internal/modkit/swaggerkit"

	analysismod "orderlens/internal/services/api/analysis/module"
	metamod "orderlens/internal/services/api/meta/module"
	extractmod "orderlens/internal/services/extract/module"
	jobsdom "orderlens/internal/services/jobs/domain"
	jobsmod "orderlens/internal/services/jobs/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	Metrics        *metrics.Registry
	EnableSwagger  bool
	EnableProfiler bool
}

// Mounted is what callers need after routes are live
type Mounted struct {
	jobs jobsmod.Ports
}

// Drain waits for in-flight analysis jobs
func (m Mounted) Drain(ctx context.Context) error { return m.jobs.Runner.Wait(ctx) }

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) Mounted {
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
		deps.CH = opt.Store.CH
	}
	met := opt.Metrics
	if met == nil {
		met = metrics.NewRegistry()
	}

	// pipeline first; jobs and the analysis routes consume its ports
	extract := extractmod.New(deps, extractmod.Options{Metrics: met})
	ex := modkit.MustPortsOf[extractmod.Ports](extract)

	jobs := jobsmod.New(deps, jobsmod.Options{Metrics: met},
		modkit.WithPorts(jobsdom.Ports{Analyzer: ex.Analyzer}))
	jp := modkit.MustPortsOf[jobsmod.Ports](jobs)

	ap := analysismod.Ports{Jobs: jp.Jobs}
	if ex.Audit != nil {
		ap.Artifacts = ex.Audit
	}

	mods := []modkit.Module{
		metamod.New(deps),
		extract,
		jobs,
		analysismod.New(deps, modkit.WithPorts(ap)),
	}

	r.Handle("/metrics", met.Handler())

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
	httpkit.MountAPIV1(r, httpkit.CommonStack(opt.Config), func(api httpkit.Router) {
		for _, m := range mods {
			m.MountRoutes(api)
		}
	})

	return Mounted{jobs: jp}
}
