// Package metrics holds the Prometheus collectors for the extraction pipeline
// and the LLM client. Each Registry owns its own prometheus.Registry so tests
// can build as many as they like
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles every collector the service exports
type Registry struct {
	reg *prometheus.Registry

	LLMRequests *prometheus.CounterVec   // kind, status
	LLMSeconds  *prometheus.HistogramVec // kind
	LLMRetries  prometheus.Counter

	Chunks        prometheus.Counter
	Tiers         *prometheus.CounterVec // tier, outcome
	Recoveries    *prometheus.CounterVec // strategy
	Dropped       *prometheus.CounterVec // reason
	AnalyzeSecond prometheus.Histogram

	Jobs *prometheus.CounterVec // status
}

// NewRegistry builds and registers every collector
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	m := &Registry{
		reg: r,
		LLMRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orderlens_llm_requests_total",
			Help: "LLM calls by kind and final status",
		}, []string{"kind", "status"}),
		LLMSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orderlens_llm_request_seconds",
			Help:    "LLM call latency including retries",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 160, 300},
		}, []string{"kind"}),
		LLMRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orderlens_llm_retries_total",
			Help: "transport level retries",
		}),
		Chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orderlens_chunks_total",
			Help: "transcript chunks submitted for extraction",
		}),
		Tiers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orderlens_tier_outcomes_total",
			Help: "per chunk tier attempts by outcome",
		}, []string{"tier", "outcome"}),
		Recoveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orderlens_recovery_total",
			Help: "structured output recovery by strategy",
		}, []string{"strategy"}),
		Dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orderlens_dropped_total",
			Help: "records dropped by the summary builder",
		}, []string{"reason"}),
		AnalyzeSecond: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "orderlens_analyze_seconds",
			Help:    "end to end analysis latency",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		Jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orderlens_jobs_total",
			Help: "analysis jobs by terminal status",
		}, []string{"status"}),
	}
	r.MustRegister(
		m.LLMRequests, m.LLMSeconds, m.LLMRetries,
		m.Chunks, m.Tiers, m.Recoveries, m.Dropped, m.AnalyzeSecond,
		m.Jobs,
	)
	return m
}

// Handler serves the exposition format for this registry
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }
