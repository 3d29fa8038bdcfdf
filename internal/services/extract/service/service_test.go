package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"orderlens/internal/adapters/llm"
	"orderlens/internal/core/rulepack"
	perr "orderlens/internal/platform/errors"
	"orderlens/internal/platform/metrics"
	kit "orderlens/internal/platform/testkit"
	"orderlens/internal/services/extract/domain"
)

type fakeLLM struct {
	mu       sync.Mutex
	complete func(p llm.Prompt) (string, error)
	tool     func(p llm.Prompt, t llm.Tool) (map[string]any, error)

	completeCalls int
	toolCalls     []llm.Tool
	toolPrompts   []llm.Prompt
	userPrompts   []string
}

func (f *fakeLLM) Complete(_ context.Context, p llm.Prompt) (string, error) {
	f.mu.Lock()
	f.completeCalls++
	f.userPrompts = append(f.userPrompts, p.User)
	f.mu.Unlock()
	if f.complete == nil {
		return "", perr.Unavailablef("no primary")
	}
	return f.complete(p)
}

func (f *fakeLLM) CallTool(_ context.Context, p llm.Prompt, t llm.Tool) (map[string]any, error) {
	f.mu.Lock()
	f.toolCalls = append(f.toolCalls, t)
	f.toolPrompts = append(f.toolPrompts, p)
	f.mu.Unlock()
	if f.tool == nil {
		return nil, llm.ErrNoToolUse
	}
	return f.tool(p, t)
}

func (f *fakeLLM) tools(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.toolCalls {
		if t.Name == name {
			n++
		}
	}
	return n
}

type memSink struct {
	mu   sync.Mutex
	arts []domain.Artifact
}

func (m *memSink) Record(_ context.Context, a domain.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.arts = append(m.arts, a)
	return nil
}

func (m *memSink) kinds() []domain.ArtifactKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ArtifactKind
	for _, a := range m.arts {
		if !slices.Contains(out, a.Kind) {
			out = append(out, a.Kind)
		}
	}
	return out
}

func orderJSON(customer, item string, qty int) string {
	return fmt.Sprintf(`{"time_based_orders":[{"time":"10:00","customer":%q,"item":%q,"quantity":%d,"note":""}],`+
		`"customer_based_orders":[{"customer":%q,"item":%q,"quantity":%d,"note":""}],`+
		`"order_pattern_analysis":{"peak_hours":["10:00"],"popular_items":[%q],"sold_out_items":[]}}`,
		customer, item, qty, customer, item, qty, item)
}

func orderMap(customer, item string, qty int) map[string]any {
	return map[string]any{
		"time_based_orders": []any{
			map[string]any{"time": "10:00", "customer": customer, "item": item, "quantity": float64(qty), "note": ""},
		},
	}
}

var oneDay = kit.Transcript(
	"--------------- 2025년 1월 2일 목요일 ---------------",
	"2025년 1월 2일 오전 9:01, 우국상 신검단 : 오늘 한우사골곰탕 판매합니다",
	"2025년 1월 2일 오전 9:05, 크림 2821 : 한우사골곰탕 2개요",
	"2025년 1월 2일 오전 9:06, 해피맘 님이 들어왔습니다.",
)

func newService(f *fakeLLM, sink domain.SinkPort, cfg Config) *Service {
	return New(f, sink, rulepack.MustLoad(), nil, cfg)
}

var reDay = regexp.MustCompile(`1월 (\d)일`)

func TestAnalyzeKeepsChunkOrder(t *testing.T) {
	t.Parallel()
	var lines []string
	for d := 1; d <= 3; d++ {
		lines = append(lines,
			fmt.Sprintf("--------------- 2025년 1월 %d일 ---------------", d),
			fmt.Sprintf("2025년 1월 %d일 오전 10:00, 고객%d : 곰탕 %d개", d, d, d),
		)
	}

	done := map[int]chan struct{}{1: make(chan struct{}), 2: make(chan struct{}), 3: make(chan struct{})}
	var mu sync.Mutex
	var finished []int

	f := &fakeLLM{complete: func(p llm.Prompt) (string, error) {
		m := reDay.FindStringSubmatch(p.User)
		if m == nil {
			return "", errors.New("no day in prompt")
		}
		d, _ := strconv.Atoi(m[1])
		defer close(done[d])
		// each chunk finishes only after the one behind it
		if next, ok := done[d+1]; ok {
			select {
			case <-next:
			case <-time.After(5 * time.Second):
				return "", errors.New("gate timeout")
			}
		}
		mu.Lock()
		finished = append(finished, d)
		mu.Unlock()
		return "분석 결과입니다.\n" + orderJSON(fmt.Sprintf("고객%d", d), "곰탕", d), nil
	}}

	s := newService(f, nil, Config{ChunkThreshold: 10, ChunkSize: 100, Workers: 5})
	r, err := s.Analyze(context.Background(), domain.Request{Text: kit.Transcript(lines...), ShopName: "우국상"})
	if err != nil {
		t.Fatal(err)
	}
	if f.completeCalls != 3 {
		t.Fatalf("complete calls = %d", f.completeCalls)
	}
	if !slices.Equal(finished, []int{3, 2, 1}) {
		t.Fatalf("completion order = %v", finished)
	}
	var got []string
	for _, o := range r.TimeBasedOrders {
		got = append(got, o.Customer)
	}
	if !slices.Equal(got, []string{"고객1", "고객2", "고객3"}) {
		t.Fatalf("orders out of chunk order: %v", got)
	}
	if len(r.ItemBasedSummary) != 1 || r.ItemBasedSummary[0].TotalQuantity != 6 || r.ItemBasedSummary[0].Customers != "고객1, 고객2, 고객3" {
		t.Fatalf("items = %+v", r.ItemBasedSummary)
	}
	if r.ShopName != "우국상" || len(f.toolCalls) != 0 {
		t.Fatalf("shop = %q tool calls = %d", r.ShopName, len(f.toolCalls))
	}
}

func TestAnalyzeEscalatesExactlyOnce(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		complete func(llm.Prompt) (string, error)
	}{
		{"prose", func(llm.Prompt) (string, error) { return "죄송하지만 주문 정보를 찾을 수 없습니다.", nil }},
		{"empty", func(llm.Prompt) (string, error) { return "", nil }},
		{"empty object", func(llm.Prompt) (string, error) { return "{}", nil }},
		{"refusal object", func(llm.Prompt) (string, error) {
			return `죄송합니다. {"error":"대화를 분석할 수 없습니다"}`, nil
		}},
		{"transport", func(llm.Prompt) (string, error) { return "", perr.Unavailablef("llm down") }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			f := &fakeLLM{
				complete: c.complete,
				tool: func(llm.Prompt, llm.Tool) (map[string]any, error) {
					return orderMap("크림 2821", "한우사골곰탕", 2), nil
				},
			}
			r, err := newService(f, nil, Config{}).Analyze(context.Background(), domain.Request{Text: oneDay})
			if err != nil {
				t.Fatal(err)
			}
			if f.completeCalls != 1 || f.tools(orderTool.Name) != 1 {
				t.Fatalf("calls: complete=%d tool=%d", f.completeCalls, f.tools(orderTool.Name))
			}
			p := f.toolPrompts[0]
			if p.Temperature != fallbackTemperature || p.MaxTokens != fallbackMaxTokens {
				t.Fatalf("fallback prompt = %+v", p)
			}
			kit.MustContain(t, p.User, "한우사골곰탕 2개요")
			if len(r.TimeBasedOrders) != 1 || r.TimeBasedOrders[0].Quantity != 2 {
				t.Fatalf("result = %+v", r.TimeBasedOrders)
			}
		})
	}
}

func TestPrimaryPromptCarriesCatalogAndShop(t *testing.T) {
	t.Parallel()
	var seen llm.Prompt
	f := &fakeLLM{complete: func(p llm.Prompt) (string, error) {
		seen = p
		return "```json\n" + orderJSON("크림 2821", "한우사골곰탕", 2) + "\n```", nil
	}}
	_, err := newService(f, nil, Config{}).Analyze(context.Background(), domain.Request{Text: oneDay, ShopName: "우국상"})
	if err != nil {
		t.Fatal(err)
	}
	if seen.Temperature != primaryTemperature {
		t.Fatalf("temperature = %v", seen.Temperature)
	}
	kit.MustContain(t, seen.System, "'우국상' 관련 내용")
	kit.MustContain(t, seen.User, "- 한우사골곰탕\n")
	if strings.Contains(seen.User, "들어왔습니다") {
		t.Fatalf("noise reached the model:\n%s", seen.User)
	}
}

func TestAnalyzeAllTiersFail(t *testing.T) {
	t.Parallel()
	f := &fakeLLM{}
	r, err := newService(f, nil, Config{}).Analyze(context.Background(), domain.Request{Text: oneDay})
	if err != nil {
		t.Fatalf("degraded chunks must not fail the request: %v", err)
	}
	if len(r.TimeBasedOrders) != 0 || r.TimeBasedOrders == nil || r.TableSummary.Headers == nil {
		t.Fatalf("result not well shaped: %+v", r)
	}
	if f.completeCalls != 1 || len(f.toolCalls) != 1 {
		t.Fatalf("each tier once: complete=%d tool=%d", f.completeCalls, len(f.toolCalls))
	}
}

func TestAnalyzeChunkSkeleton(t *testing.T) {
	t.Parallel()
	s := newService(&fakeLLM{}, nil, Config{})
	r := s.analyzeChunk(context.Background(), run{shop: "우국상", names: []string{"곰탕", "오란다"}}, 0, "아무 말")
	if len(r.ItemBasedSummary) != 2 || r.ItemBasedSummary[1].Item != "오란다" || r.ItemBasedSummary[1].TotalQuantity != 0 {
		t.Fatalf("skeleton = %+v", r.ItemBasedSummary)
	}
	if r.ShopName != "우국상" || r.TimeBasedOrders == nil {
		t.Fatalf("skeleton = %+v", r)
	}
}

func TestAnalyzeInputErrors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		req  domain.Request
		code perr.ErrorCode
	}{
		{"empty", domain.Request{Text: " \r\n\uFEFF "}, perr.ErrorCodeInvalidArgument},
		{"format chars only", domain.Request{Text: "\uFEFF\n\u200b\uFEFF\t"}, perr.ErrorCodeInvalidArgument},
		{"bad start", domain.Request{Text: oneDay, StartDate: "어제"}, perr.ErrorCodeInvalidArgument},
		{"inverted", domain.Request{Text: oneDay, StartDate: "2025-01-05", EndDate: "2025-01-01"}, perr.ErrorCodeInvalidArgument},
		{"no data", domain.Request{Text: oneDay, StartDate: "2025-02-01", EndDate: "2025년 2월 3일"}, perr.ErrorCodeNoData},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			f := &fakeLLM{}
			_, err := newService(f, nil, Config{}).Analyze(context.Background(), c.req)
			if !perr.IsCode(err, c.code) {
				t.Fatalf("err = %v, want code %d", err, c.code)
			}
			if f.completeCalls != 0 || len(f.toolCalls) != 0 {
				t.Fatalf("no LLM call expected")
			}
		})
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	f := &fakeLLM{complete: func(llm.Prompt) (string, error) {
		cancel()
		return "", context.Canceled
	}}
	_, err := newService(f, nil, Config{}).Analyze(ctx, domain.Request{Text: oneDay})
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("err = %v", err)
	}
}

func TestCatalogRefinement(t *testing.T) {
	t.Parallel()
	var user string
	f := &fakeLLM{
		complete: func(p llm.Prompt) (string, error) {
			user = p.User
			return orderJSON("크림 2821", "한우사골곰탕", 2), nil
		},
		tool: func(p llm.Prompt, tl llm.Tool) (map[string]any, error) {
			if tl.Name != productTool.Name {
				return nil, errors.New("unexpected tool")
			}
			kit.MustContain(t, p.User, "한우사골곰탕 판매합니다")
			if strings.Contains(p.User, "2개요") {
				t.Errorf("customer lines must not reach catalog refinement")
			}
			return map[string]any{"products": []any{
				map[string]any{"name": "아카페라 커피", "sold_out": false},
				map[string]any{"name": "x", "sold_out": false},
				"junk",
			}}, nil
		},
	}
	_, err := newService(f, nil, Config{CatalogLLM: true}).Analyze(context.Background(), domain.Request{Text: oneDay})
	if err != nil {
		t.Fatal(err)
	}
	if f.tools(productTool.Name) != 1 {
		t.Fatalf("catalog tool calls = %d", f.tools(productTool.Name))
	}
	kit.MustContain(t, user, "- 아카페라 커피\n")
	if strings.Contains(user, "- x\n") {
		t.Fatalf("single character names must be ignored")
	}
}

func TestArtifactsAndMetrics(t *testing.T) {
	t.Parallel()
	sink := &memSink{}
	met := metrics.NewRegistry()
	f := &fakeLLM{complete: func(p llm.Prompt) (string, error) {
		if p.OnFragment == nil {
			return "", errors.New("fragment hook expected with a recording sink")
		}
		body := orderJSON("크림 2821", "한우사골곰탕", 2)
		p.OnFragment(body[:10])
		p.OnFragment(body[10:])
		return body, nil
	}}
	s := New(f, sink, rulepack.MustLoad(), met, Config{})
	if _, err := s.Analyze(context.Background(), domain.Request{Text: oneDay, JobID: "job-1"}); err != nil {
		t.Fatal(err)
	}
	want := []domain.ArtifactKind{domain.ArtifactPreprocessed, domain.ArtifactCatalog, domain.ArtifactPrimaryFragment, domain.ArtifactPrimaryRaw}
	if got := sink.kinds(); !slices.Equal(got, want) {
		t.Fatalf("artifact kinds = %v", got)
	}
	for _, a := range sink.arts {
		if a.JobID != "job-1" || a.At.IsZero() {
			t.Fatalf("artifact = %+v", a)
		}
	}

	rec := httptest.NewRecorder()
	met.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Result().Body)
	for _, want := range []string{
		`orderlens_chunks_total 1`,
		`orderlens_tier_outcomes_total{outcome="ok",tier="primary"} 1`,
		`orderlens_recovery_total{strategy="balanced"} 1`,
	} {
		kit.MustContain(t, string(body), want)
	}
}
