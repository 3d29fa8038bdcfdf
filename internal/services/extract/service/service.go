// Package service implements the extract service: the pipeline from a raw
// transcript to a finalized order result
package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"orderlens/internal/core/catalog"
	"orderlens/internal/core/chunker"
	"orderlens/internal/core/classify"
	"orderlens/internal/core/datefilter"
	"orderlens/internal/core/merge"
	"orderlens/internal/core/normalize"
	"orderlens/internal/core/order"
	"orderlens/internal/core/preprocess"
	"orderlens/internal/core/rulepack"
	"orderlens/internal/core/summary"
	perr "orderlens/internal/platform/errors"
	"orderlens/internal/platform/logger"
	"orderlens/internal/platform/metrics"
	"orderlens/internal/services/extract/domain"
)

// Config for the extract service. Sizes are in characters
type Config struct {
	ChunkThreshold    int // chunk only above this size
	ChunkSize         int
	Workers           int // top-level chunk pool cap
	FallbackThreshold int // fallback splits above this size
	FallbackWorkers   int
	CatalogLLM        bool
	CallTimeout       time.Duration // per LLM call; 0 = request context only
	PrimaryMaxTokens  int           // 0 = client default
}

// Defaults
const (
	DefaultChunkThreshold    = 60000
	DefaultChunkSize         = 32000
	DefaultWorkers           = 5
	DefaultFallbackThreshold = 15000
	DefaultFallbackWorkers   = 3
	DefaultCallTimeout       = 5 * time.Minute
)

// Service implements domain.AnalyzerPort
type Service struct {
	LLM  domain.LLMPort
	Sink domain.SinkPort
	Met  *metrics.Registry // optional
	Cfg  Config

	pre     *preprocess.Preprocessor
	catalog *catalog.Extractor
	summary *summary.Builder
}

// New constructs a new extract service; zero config fields take the defaults
func New(llmPort domain.LLMPort, sink domain.SinkPort, rp *rulepack.Pack, met *metrics.Registry, cfg Config) *Service {
	if llmPort == nil {
		panic("extract service: nil LLM port")
	}
	if sink == nil {
		sink = NopSink{}
	}
	if cfg.ChunkThreshold <= 0 {
		cfg.ChunkThreshold = DefaultChunkThreshold
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.FallbackThreshold <= 0 {
		cfg.FallbackThreshold = DefaultFallbackThreshold
	}
	if cfg.FallbackWorkers <= 0 {
		cfg.FallbackWorkers = DefaultFallbackWorkers
	}
	return &Service{
		LLM:     llmPort,
		Sink:    sink,
		Met:     met,
		Cfg:     cfg,
		pre:     preprocess.New(classify.New(rp)),
		catalog: catalog.New(rp),
		summary: summary.New(rp),
	}
}

var _ domain.AnalyzerPort = (*Service)(nil)

// run is the read-only state shared by every chunk worker of one request
type run struct {
	job   string
	shop  string
	names []string
}

// Analyze runs the whole pipeline. Only input errors and an empty date window
// are returned; LLM and parsing failures degrade per chunk
func (s *Service) Analyze(ctx context.Context, req domain.Request) (order.Result, error) {
	start := time.Now()
	ctx = logger.WithJob(ctx, req.JobID)
	log := logger.C(ctx)

	text := normalize.Text(req.Text)
	if normalize.Blank(text) {
		return order.Result{}, perr.WithField(perr.InvalidArgf("conversation is empty"), "conversation")
	}
	win, err := datefilter.ParseWindow(req.StartDate, req.EndDate)
	if err != nil {
		return order.Result{}, err
	}

	clean, st := s.pre.Clean(text)
	log.Debug().Int("lines", st.Total).Int("kept", st.Kept).Int("blank", st.Blank).
		Interface("noise", st.Labeled()).Msg("preprocessed")
	s.record(ctx, domain.Artifact{JobID: req.JobID, Kind: domain.ArtifactPreprocessed, Chunk: -1, Body: clean})

	windowed, err := win.Apply(clean)
	if err != nil {
		return order.Result{}, err
	}

	cat := s.catalog.Extract(windowed)
	if s.Cfg.CatalogLLM {
		s.refineCatalog(ctx, cat, s.catalog.SellerText(windowed))
	}
	names := cat.Names()
	log.Debug().Int("products", len(names)).Msg("catalog built")
	s.record(ctx, domain.Artifact{JobID: req.JobID, Kind: domain.ArtifactCatalog, Chunk: -1, Body: strings.Join(names, "\n")})

	rc := run{job: req.JobID, shop: strings.TrimSpace(req.ShopName), names: names}

	chunks := []string{windowed}
	if utf8.RuneCountInString(windowed) > s.Cfg.ChunkThreshold {
		chunks = chunker.Split(windowed, s.Cfg.ChunkSize)
	}
	log.Info().Int("chars", utf8.RuneCountInString(windowed)).Int("chunks", len(chunks)).Msg("extracting")
	if s.Met != nil {
		s.Met.Chunks.Add(float64(len(chunks)))
	}

	results := make([]order.Result, len(chunks))
	g := new(errgroup.Group)
	g.SetLimit(min(len(chunks), s.Cfg.Workers))
	for i, c := range chunks {
		g.Go(func() error {
			results[i] = s.analyzeChunk(ctx, rc, i, c)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return order.Result{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "analysis cancelled")
	}

	merged := merge.Merge(results...)
	if merged.ShopName == "" {
		merged.ShopName = rc.shop
	}
	final, rep := s.summary.Finalize(merged)

	if s.Met != nil {
		s.Met.Dropped.WithLabelValues("item_name").Add(float64(rep.DroppedOrders))
		s.Met.Dropped.WithLabelValues("sold_out").Add(float64(rep.DroppedSoldOut))
		s.Met.Dropped.WithLabelValues("quantity").Add(float64(rep.SkippedQuantity))
		s.Met.AnalyzeSecond.Observe(time.Since(start).Seconds())
	}
	log.Info().Int("orders", len(final.TimeBasedOrders)).Int("items", len(final.ItemBasedSummary)).
		Int("dropped", rep.DroppedOrders).Int("suspect_customers", rep.SuspectCustomers).
		Dur("took", time.Since(start)).Msg("analysis done")
	return final, nil
}

// record forwards to the sink; failures are logged only
func (s *Service) record(ctx context.Context, a domain.Artifact) {
	if _, nop := s.Sink.(NopSink); nop {
		return
	}
	if a.At.IsZero() {
		a.At = time.Now().UTC()
	}
	if err := s.Sink.Record(ctx, a); err != nil {
		logger.C(ctx).Warn().Err(err).Str("kind", string(a.Kind)).Int("chunk", a.Chunk).Msg("artifact not recorded")
	}
}

func (s *Service) tier(name, outcome string) {
	if s.Met != nil {
		s.Met.Tiers.WithLabelValues(name, outcome).Inc()
	}
}

// callCtx derives the per-call deadline
func (s *Service) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Cfg.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Cfg.CallTimeout)
}
