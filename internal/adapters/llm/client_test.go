package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	perr "orderlens/internal/platform/errors"
	"orderlens/internal/platform/metrics"
)

// wireRequest is the slice of the Messages API body the tests assert on
type wireRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Stream    bool   `json:"stream"`
	System    []struct {
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
	Temperature float64 `json:"temperature"`
	Tools       []struct {
		Name        string         `json:"name"`
		InputSchema map[string]any `json:"input_schema"`
	} `json:"tools"`
	ToolChoice *struct {
		Type string `json:"type"`
		Name string `json:"name"`
	} `json:"tool_choice"`
}

func newTestClient(t *testing.T, h http.HandlerFunc, retries int) (*Client, *metrics.Registry) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	met := metrics.NewRegistry()
	c := NewClient(Options{BaseURL: srv.URL + "/", APIKey: "k", Model: "m", MaxRetries: retries, Metrics: met})
	return c, met
}

type event struct{ name, data string }

func sse(w http.ResponseWriter, events ...event) {
	w.Header().Set("Content-Type", "text/event-stream")
	for _, e := range events {
		_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.name, e.data)
	}
}

func delta(s string) event {
	b, _ := json.Marshal(map[string]any{
		"type":  "content_block_delta",
		"index": 0,
		"delta": map[string]string{"type": "text_delta", "text": s},
	})
	return event{"content_block_delta", string(b)}
}

var (
	msgStart   = event{"message_start", `{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","model":"m","content":[],"usage":{"input_tokens":1,"output_tokens":0}}}`}
	blockStart = event{"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`}
	blockStop  = event{"content_block_stop", `{"type":"content_block_stop","index":0}`}
	msgDelta   = event{"message_delta", `{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":5}}`}
	msgStop    = event{"message_stop", `{"type":"message_stop"}`}
	ping       = event{"ping", `{"type":"ping"}`}
)

func decode(t *testing.T, r *http.Request) wireRequest {
	t.Helper()
	var in wireRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		t.Errorf("decode request: %v", err)
	}
	return in
}

func TestCompleteConcatenatesFragments(t *testing.T) {
	t.Parallel()
	reqs := make(chan wireRequest, 1)
	c, met := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" || r.Header.Get("x-api-key") != "k" || r.Header.Get("anthropic-version") == "" {
			http.Error(w, "bad request shape", http.StatusBadRequest)
			return
		}
		reqs <- decode(t, r)
		sse(w, msgStart, blockStart, delta(`{"time_based_orders"`), ping, delta(`: []}`), blockStop, msgDelta, msgStop)
	}, 0)

	var frags []string
	out, err := c.Complete(context.Background(), Prompt{
		System: "sys", User: "chat", Temperature: 1,
		OnFragment: func(s string) { frags = append(frags, s) },
	})
	if err != nil {
		t.Fatal(err)
	}
	if out != `{"time_based_orders": []}` || len(frags) != 2 {
		t.Fatalf("out=%q frags=%v", out, frags)
	}
	got := <-reqs
	if !got.Stream || got.Model != "m" || got.MaxTokens != defaultMaxTokens || got.Temperature != 1 {
		t.Fatalf("request = %+v", got)
	}
	if len(got.System) != 1 || got.System[0].Text != "sys" {
		t.Fatalf("system = %+v", got.System)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content[0].Text != "chat" {
		t.Fatalf("messages = %+v", got.Messages)
	}
	if n := testutil.ToFloat64(met.LLMRequests.WithLabelValues("complete", "ok")); n != 1 {
		t.Fatalf("ok requests = %v", n)
	}
}

func TestCompleteOmitsEmptySystem(t *testing.T) {
	t.Parallel()
	reqs := make(chan wireRequest, 1)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		reqs <- decode(t, r)
		sse(w, msgStart, msgStop)
	}, 0)
	out, err := c.Complete(context.Background(), Prompt{User: "x"})
	if err != nil || out != "" {
		t.Fatalf("out=%q err=%v", out, err)
	}
	if got := <-reqs; got.System != nil {
		t.Fatalf("system = %+v", got.System)
	}
}

func TestCompleteStreamFailures(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		events []event
	}{
		{"error event", []event{msgStart, blockStart, delta("partial"), {"error", `{"type":"error","error":{"type":"overloaded_error","message":"busy"}}`}}},
		{"cut before stop", []event{msgStart, blockStart, delta("partial")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c, met := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				sse(w, tc.events...)
			}, 0)
			_, err := c.Complete(context.Background(), Prompt{User: "x"})
			if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
				t.Fatalf("err = %v", err)
			}
			if n := testutil.ToFloat64(met.LLMRequests.WithLabelValues("complete", "error")); n != 1 {
				t.Fatalf("error requests = %v", n)
			}
		})
	}
}

func TestCallToolForcesChoice(t *testing.T) {
	t.Parallel()
	reqs := make(chan wireRequest, 1)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		reqs <- decode(t, r)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"m","stop_reason":"tool_use",`+
			`"content":[{"type":"text","text":"ok"},{"type":"tool_use","id":"tu_1","name":"extract_order_info","input":{"time_based_orders":[]}}],`+
			`"usage":{"input_tokens":1,"output_tokens":1}}`)
	}, 0)

	tool := Tool{Name: "extract_order_info", Description: "orders", Schema: map[string]any{
		"type":       "object",
		"properties": map[string]any{"time_based_orders": map[string]any{"type": "array"}},
		"required":   []string{"time_based_orders"},
	}}
	out, err := c.CallTool(context.Background(), Prompt{User: "x", Temperature: 0.1, MaxTokens: 4096}, tool)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out["time_based_orders"]; !ok {
		t.Fatalf("out = %v", out)
	}
	got := <-reqs
	if got.ToolChoice == nil || got.ToolChoice.Name != "extract_order_info" || got.ToolChoice.Type != "tool" {
		t.Fatalf("tool choice = %+v", got.ToolChoice)
	}
	if got.Stream || got.MaxTokens != 4096 || got.Temperature != 0.1 || len(got.Tools) != 1 {
		t.Fatalf("request = %+v", got)
	}
	schema := got.Tools[0].InputSchema
	if schema["type"] != "object" || schema["properties"] == nil || schema["required"] == nil {
		t.Fatalf("input schema = %v", schema)
	}
}

func TestCallToolBadAnswers(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		content string
		check   func(error) bool
	}{
		{"text only", `[{"type":"text","text":"sorry"}]`, func(err error) bool { return errors.Is(err, ErrNoToolUse) }},
		{"other tool", `[{"type":"tool_use","id":"tu_1","name":"nope","input":{}}]`, func(err error) bool { return errors.Is(err, ErrNoToolUse) }},
		{"array input", `[{"type":"tool_use","id":"tu_1","name":"extract_order_info","input":[1]}]`, func(err error) bool {
			return perr.IsCode(err, perr.ErrorCodeUpstream) && !errors.Is(err, ErrNoToolUse)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"m","content":`+tc.content+`}`)
			}, 0)
			_, err := c.CallTool(context.Background(), Prompt{User: "x"}, Tool{Name: "extract_order_info"})
			if !tc.check(err) {
				t.Fatalf("err = %v", err)
			}
		})
	}
}

func TestRetriesTransientThenSucceeds(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	c, met := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Retry-After-Ms", "1")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"m","content":[{"type":"tool_use","id":"tu_1","name":"t","input":{"a":1}}]}`)
	}, 2)
	if _, err := c.CallTool(context.Background(), Prompt{}, Tool{Name: "t"}); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d", calls.Load())
	}
	if n := testutil.ToFloat64(met.LLMRetries); n != 2 {
		t.Fatalf("retries = %v", n)
	}
}

func TestRetryBudgetExhausted(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After-Ms", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}, 1)
	_, err := c.Complete(context.Background(), Prompt{})
	if !perr.IsCode(err, perr.ErrorCodeTooManyRequests) || calls.Load() != 2 {
		t.Fatalf("err=%v calls=%d", err, calls.Load())
	}
}

func TestClientErrorIsNotRetried(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	c, met := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"invalid_request_error","message":"bad model"}}`)
	}, 3)
	_, err := c.Complete(context.Background(), Prompt{})
	if !perr.IsCode(err, perr.ErrorCodeUpstream) || calls.Load() != 1 {
		t.Fatalf("err=%v calls=%d", err, calls.Load())
	}
	if !strings.Contains(err.Error(), "400") {
		t.Fatalf("status missing from %q", err)
	}
	if n := testutil.ToFloat64(met.LLMRetries); n != 0 {
		t.Fatalf("retries = %v", n)
	}
}

func TestCancelledCallIsUnavailable(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		sse(w, msgStart, msgStop)
	}, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.CallTool(ctx, Prompt{User: "x"}, Tool{Name: "t"})
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) || !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}
