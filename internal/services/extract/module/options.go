package module

import (
	"orderlens/internal/adapters/llm"
	"orderlens/internal/platform/config"
	"orderlens/internal/platform/metrics"
	"orderlens/internal/services/extract/service"
)

// Options holds configuration settings for the extract module
type Options struct {
	ChunkThreshold    int
	ChunkSize         int
	Workers           int
	FallbackThreshold int
	FallbackWorkers   int
	CatalogLLM        bool
	DiagDir           string
	Audit             bool // record artifacts to ClickHouse when deps.CH is set

	LLM     llm.Options
	Metrics *metrics.Registry
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	ex := cfg.Prefix("EXTRACT_")
	lc := cfg.Prefix("LLM_")
	return Options{
		ChunkThreshold:    ex.MayPositiveInt("CHUNK_THRESHOLD", service.DefaultChunkThreshold),
		ChunkSize:         ex.MayPositiveInt("CHUNK_SIZE", service.DefaultChunkSize),
		Workers:           ex.MayPositiveInt("WORKERS", service.DefaultWorkers),
		FallbackThreshold: ex.MayPositiveInt("FALLBACK_THRESHOLD", service.DefaultFallbackThreshold),
		FallbackWorkers:   ex.MayPositiveInt("FALLBACK_WORKERS", service.DefaultFallbackWorkers),
		CatalogLLM:        ex.MayBool("CATALOG_LLM", false),
		DiagDir:           ex.MayString("DIAG_DIR", ""),
		Audit:             ex.MayBool("AUDIT", true),
		LLM: llm.Options{
			BaseURL:    lc.MayString("BASE_URL", ""),
			APIKey:     lc.MayString("API_KEY", ""),
			Model:      lc.MayString("MODEL", ""),
			Timeout:    lc.MayDuration("TIMEOUT", service.DefaultCallTimeout),
			MaxRetries: lc.MayInt("MAX_RETRIES", 2),
			MaxTokens:  lc.MayPositiveInt("MAX_TOKENS", 20000),
		},
	}
}
