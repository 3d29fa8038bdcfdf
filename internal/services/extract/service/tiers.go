package service

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"orderlens/internal/adapters/llm"
	"orderlens/internal/core/chunker"
	"orderlens/internal/core/merge"
	"orderlens/internal/core/order"
	"orderlens/internal/core/recovery"
	"orderlens/internal/platform/logger"
	"orderlens/internal/services/extract/domain"
)

const (
	primaryTemperature  = 1.0
	fallbackTemperature = 0.1
	fallbackMaxTokens   = 4096

	tierPrimary  = "primary"
	tierFallback = "fallback"
	tierSkeleton = "skeleton"
)

// analyzeChunk walks primary -> fallback -> skeleton. Each tier runs once and
// the result is always well shaped
func (s *Service) analyzeChunk(ctx context.Context, rc run, idx int, text string) order.Result {
	log := logger.C(ctx).With().Int("chunk", idx).Logger()

	if r, ok := s.primary(ctx, rc, idx, text); ok {
		s.tier(tierPrimary, "ok")
		return r
	}
	s.tier(tierPrimary, "failed")
	log.Warn().Msg("primary extraction failed, escalating to fallback")

	if r, ok := s.fallback(ctx, rc, idx, 0, text, 0); ok {
		s.tier(tierFallback, "ok")
		return r
	}
	s.tier(tierFallback, "failed")
	s.tier(tierSkeleton, "ok")
	log.Warn().Int("products", len(rc.names)).Msg("chunk unrecoverable, using skeleton")
	return order.Skeleton(rc.names, rc.shop)
}

// primary is the free-form streamed call followed by structured recovery
func (s *Service) primary(ctx context.Context, rc run, idx int, text string) (order.Result, bool) {
	log := logger.C(ctx).With().Int("chunk", idx).Str("tier", tierPrimary).Logger()

	var frags []string
	p := llm.Prompt{
		System:      systemPrompt(primarySystem, rc.shop),
		User:        userPrompt(text, rc.names, false),
		Temperature: primaryTemperature,
		MaxTokens:   s.Cfg.PrimaryMaxTokens,
	}
	if _, nop := s.Sink.(NopSink); !nop {
		p.OnFragment = func(f string) { frags = append(frags, f) }
	}

	cctx, cancel := s.callCtx(ctx)
	raw, err := s.LLM.Complete(cctx, p)
	cancel()
	if len(frags) > 0 {
		s.record(ctx, domain.Artifact{JobID: rc.job, Kind: domain.ArtifactPrimaryFragment, Chunk: idx, Body: strings.Join(frags, "\n")})
	}
	if err != nil {
		log.Warn().Err(err).Msg("llm call failed")
		return order.Result{}, false
	}
	s.record(ctx, domain.Artifact{JobID: rc.job, Kind: domain.ArtifactPrimaryRaw, Chunk: idx, Body: raw})

	out := recovery.Recover(raw)
	if s.Met != nil {
		s.Met.Recoveries.WithLabelValues(out.Strategy.String()).Inc()
	}
	if !out.OK() {
		log.Warn().Err(out.Err).Int("chars", utf8.RuneCountInString(raw)).Msg("no structure in response")
		return order.Result{}, false
	}
	// {} or a refusal object parses but carries no orders
	if !recovery.OrderShaped(out.Value) {
		log.Warn().Stringer("strategy", out.Strategy).Int("keys", len(out.Value)).Msg("recovered object has no order fields")
		return order.Result{}, false
	}
	log.Debug().Stringer("strategy", out.Strategy).Bool("repaired", out.Repaired).Msg("response recovered")
	return order.Decode(out.Value), true
}

// fallback is the schema-constrained tier. At depth 0 a text above the
// threshold is split by lines and fanned out; pieces are never split again.
// ok is false only when every call failed
func (s *Service) fallback(ctx context.Context, rc run, idx, part int, text string, depth int) (order.Result, bool) {
	if depth == 0 && utf8.RuneCountInString(text) > s.Cfg.FallbackThreshold {
		if pieces := chunker.SplitLines(text, s.Cfg.FallbackThreshold); len(pieces) > 1 {
			return s.fanOut(ctx, rc, idx, pieces)
		}
	}

	log := logger.C(ctx).With().Int("chunk", idx).Int("part", part).Str("tier", tierFallback).Logger()
	cctx, cancel := s.callCtx(ctx)
	defer cancel()
	v, err := s.LLM.CallTool(cctx, llm.Prompt{
		System:      systemPrompt(fallbackSystem, rc.shop),
		User:        userPrompt(text, rc.names, true),
		Temperature: fallbackTemperature,
		MaxTokens:   fallbackMaxTokens,
	}, orderTool)
	if err != nil {
		log.Warn().Err(err).Msg("llm tool call failed")
		return order.Result{}, false
	}
	if b, err := json.Marshal(v); err == nil {
		s.record(ctx, domain.Artifact{JobID: rc.job, Kind: domain.ArtifactFallbackRaw, Chunk: idx, Part: part, Body: string(b)})
	}
	return order.Decode(v), true
}

func (s *Service) fanOut(ctx context.Context, rc run, idx int, pieces []string) (order.Result, bool) {
	logger.C(ctx).Info().Int("chunk", idx).Int("pieces", len(pieces)).Msg("fallback split")

	parts := make([]order.Result, len(pieces))
	oks := make([]bool, len(pieces))
	g := new(errgroup.Group)
	g.SetLimit(min(len(pieces), s.Cfg.FallbackWorkers))
	for i, p := range pieces {
		g.Go(func() error {
			parts[i], oks[i] = s.fallback(ctx, rc, idx, i+1, p, 1)
			return nil
		})
	}
	_ = g.Wait()

	got := make([]order.Result, 0, len(parts))
	for i := range parts {
		if oks[i] {
			got = append(got, parts[i])
		}
	}
	if len(got) == 0 {
		return order.Result{}, false
	}
	return merge.Merge(got...), true
}
