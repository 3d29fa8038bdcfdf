// Package module implements the extract module
package module

import (
	"context"

	"orderlens/internal/adapters/llm"
	"orderlens/internal/core/rulepack"
	"orderlens/internal/modkit"
	"orderlens/internal/services/extract/audit"
	"orderlens/internal/services/extract/domain"
	"orderlens/internal/services/extract/service"
)

// Ports exposed by the extract module
type Ports struct {
	Analyzer domain.AnalyzerPort
	Audit    *audit.Sink // nil when ClickHouse is not configured
}

// Module builds the pipeline; it serves no routes
type Module struct {
	modkit.Base
	ports Ports
}

// New constructs a new extract module. Without WithPorts(domain.Ports) the LLM
// client and the artifact sinks are built from config and deps
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("extract"),
	}, opts...)...)

	cfg := FromConfig(deps.Cfg)
	merge(&cfg, overrides)

	var ports domain.Ports
	if b.Ports != nil {
		p, ok := b.Ports.(domain.Ports)
		if !ok {
			panic("extract module: expected WithPorts(extract/domain.Ports)")
		}
		ports = p
	}

	m := &Module{Base: modkit.NewBase(b, nil)}

	if ports.LLM == nil {
		lo := cfg.LLM
		lo.Metrics = cfg.Metrics
		ports.LLM = llm.NewClient(lo)
	}
	if ports.Sink == nil {
		ports.Sink, m.ports.Audit = sinks(deps, cfg)
	}

	rp, err := rulepack.Load()
	if err != nil {
		panic(err)
	}

	m.ports.Analyzer = service.New(ports.LLM, ports.Sink, rp, cfg.Metrics, service.Config{
		ChunkThreshold:    cfg.ChunkThreshold,
		ChunkSize:         cfg.ChunkSize,
		Workers:           cfg.Workers,
		FallbackThreshold: cfg.FallbackThreshold,
		FallbackWorkers:   cfg.FallbackWorkers,
		CatalogLLM:        cfg.CatalogLLM,
		CallTimeout:       cfg.LLM.Timeout,
	})
	return m
}

func merge(cfg *Options, o Options) {
	if o.ChunkThreshold != 0 {
		cfg.ChunkThreshold = o.ChunkThreshold
	}
	if o.ChunkSize != 0 {
		cfg.ChunkSize = o.ChunkSize
	}
	if o.Workers != 0 {
		cfg.Workers = o.Workers
	}
	if o.FallbackThreshold != 0 {
		cfg.FallbackThreshold = o.FallbackThreshold
	}
	if o.FallbackWorkers != 0 {
		cfg.FallbackWorkers = o.FallbackWorkers
	}
	if o.DiagDir != "" {
		cfg.DiagDir = o.DiagDir
	}
	if o.LLM.APIKey != "" {
		cfg.LLM.APIKey = o.LLM.APIKey
	}
	if o.LLM.BaseURL != "" {
		cfg.LLM.BaseURL = o.LLM.BaseURL
	}
	if o.LLM.Model != "" {
		cfg.LLM.Model = o.LLM.Model
	}
	if o.Metrics != nil {
		cfg.Metrics = o.Metrics
	}
	// bool override wins only when set
	cfg.CatalogLLM = cfg.CatalogLLM || o.CatalogLLM
}

// sinks assembles the configured artifact sinks; the audit sink is returned separately for readers
func sinks(deps modkit.Deps, cfg Options) (domain.SinkPort, *audit.Sink) {
	var (
		out []domain.SinkPort
		aud *audit.Sink
	)
	if cfg.DiagDir != "" {
		out = append(out, service.FileSink{Dir: cfg.DiagDir})
	}
	if cfg.Audit && deps.CH != nil {
		aud = audit.New(deps.CH, 0)
		if err := aud.EnsureSchema(context.Background()); err != nil {
			deps.Log.Warn().Err(err).Msg("llm artifact table unavailable, audit disabled")
			aud = nil
		} else {
			out = append(out, aud)
		}
	}
	switch len(out) {
	case 0:
		return service.NopSink{}, nil
	case 1:
		return out[0], aud
	default:
		return service.MultiSink(out), aud
	}
}

func (m *Module) Ports() any { return m.ports }
