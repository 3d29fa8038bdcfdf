package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"orderlens/internal/adapters/llm"
	"orderlens/internal/core/catalog"
	"orderlens/internal/platform/logger"
)

// refineCatalog asks the model for the product list of the seller text and
// folds names of two or more characters into cat. Failures leave cat as it was
func (s *Service) refineCatalog(ctx context.Context, cat *catalog.Catalog, sellerText string) {
	log := logger.C(ctx).With().Str("stage", "catalog_llm").Logger()
	if strings.TrimSpace(sellerText) == "" {
		return
	}

	cctx, cancel := s.callCtx(ctx)
	defer cancel()
	v, err := s.LLM.CallTool(cctx, llm.Prompt{
		System:      catalogSystem,
		User:        catalogPrompt(sellerText),
		Temperature: fallbackTemperature,
	}, productTool)
	if err != nil {
		log.Warn().Err(err).Msg("catalog refinement failed")
		return
	}

	list, _ := v["products"].([]any)
	added := 0
	for _, e := range list {
		p, ok := e.(map[string]any)
		if !ok {
			continue
		}
		name, _ := p["name"].(string)
		name = strings.TrimSpace(name)
		if utf8.RuneCountInString(name) < 2 {
			continue
		}
		soldOut, _ := p["sold_out"].(bool)
		if cat.Add(catalog.Entry{Name: name, Closed: soldOut}) {
			added++
		}
	}
	log.Debug().Int("returned", len(list)).Int("added", added).Msg("catalog refined")
}
