// Package recovery pulls a JSON object out of free-form model output.
// Strategies run in priority order and every candidate span is parsed as is
// and then once more after textual repair
package recovery

import (
	"encoding/json"
	"regexp"
	"strings"

	perr "orderlens/internal/platform/errors"
)

// Strategy identifies which extraction path produced a value
type Strategy uint8

// Strategies in the order they are attempted
const (
	StrategyNone Strategy = iota
	StrategyToolCall
	StrategyBalanced
	StrategyFenced
	StrategyFields
)

func (s Strategy) String() string {
	switch s {
	case StrategyToolCall:
		return "tool_call"
	case StrategyBalanced:
		return "balanced"
	case StrategyFenced:
		return "fenced"
	case StrategyFields:
		return "fields"
	default:
		return "none"
	}
}

// ErrNoStructure means no strategy produced a parseable object
var ErrNoStructure = perr.New(perr.ErrorCodeUpstream, "no structured data in model output")

// Outcome is the tagged result of Recover: either Value is set or Err is
type Outcome struct {
	Value    map[string]any
	Strategy Strategy
	Repaired bool
	Err      error
}

// OK reports whether a value was recovered
func (o Outcome) OK() bool { return o.Err == nil && o.Value != nil }

// ToolName is the tool whose inline invocation marker the first strategy looks for
const ToolName = "extract_order_info"

// maxCandidates bounds the balanced-brace scan on long noisy responses
const maxCandidates = 64

var (
	reToolCall = regexp.MustCompile(`(?s)<tool_use[^>]*name="` + ToolName + `"[^>]*>(.*?)</tool_use>`)
	reFenced   = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")

	// array fields reconstructed by the last strategy; camelCase spellings map to snake_case
	fieldNames = []struct{ key, alias string }{
		{"time_based_orders", "timeBasedOrders"},
		{"item_based_summary", "itemBasedSummary"},
		{"customer_based_orders", "customerBasedOrders"},
	}
)

// Recover tries, in order: an explicit tool-use wrapper, the first balanced
// {...} span, a fenced code block, then independent reconstruction of the
// known order arrays
func Recover(raw string) Outcome {
	if strings.TrimSpace(raw) == "" {
		return Outcome{Err: ErrNoStructure}
	}
	for _, m := range reToolCall.FindAllStringSubmatch(raw, -1) {
		if o, ok := parseCandidate(m[1], StrategyToolCall); ok {
			return o
		}
	}
	o, loose := balanced(raw)
	if o.OK() {
		return o
	}
	for _, m := range reFenced.FindAllStringSubmatch(raw, -1) {
		if o, ok := parseCandidate(m[1], StrategyFenced); ok {
			return o
		}
	}
	if o, ok := fields(raw); ok {
		return o
	}
	if loose.OK() {
		return loose
	}
	return Outcome{Err: ErrNoStructure}
}

// balanced walks every '{' in order and tries the span it closes.
// An unclosed span (truncated output) is tried with repair. The first object
// carrying a known order key wins; the first parseable one is kept as loose
func balanced(raw string) (best, loose Outcome) {
	start := 0
	for tries := 0; tries < maxCandidates; tries++ {
		i := strings.IndexByte(raw[start:], '{')
		if i < 0 {
			break
		}
		i += start
		end := matchClose(raw, i)
		cand := raw[i:]
		if end >= 0 {
			cand = raw[i : end+1]
		}
		if o, ok := parseCandidate(cand, StrategyBalanced); ok {
			if OrderShaped(o.Value) {
				return o, loose
			}
			if loose.Value == nil {
				loose = o
			}
		}
		start = i + 1
	}
	return Outcome{}, loose
}

// OrderShaped reports whether v has at least one top-level order key in either spelling
func OrderShaped(v map[string]any) bool {
	for _, f := range fieldNames {
		if _, ok := v[f.key]; ok {
			return true
		}
		if _, ok := v[f.alias]; ok {
			return true
		}
	}
	_, a := v["order_pattern_analysis"]
	_, b := v["orderPatternAnalysis"]
	return a || b
}

// fields rebuilds an object from whichever known arrays parse on their own
func fields(raw string) (Outcome, bool) {
	out := map[string]any{}
	repaired := false
	for _, f := range fieldNames {
		for _, name := range []string{f.key, f.alias} {
			arr, fixed, ok := fieldArray(raw, name)
			if !ok {
				continue
			}
			out[f.key] = arr
			repaired = repaired || fixed
			break
		}
	}
	if len(out) == 0 {
		return Outcome{}, false
	}
	return Outcome{Value: out, Strategy: StrategyFields, Repaired: repaired}, true
}

func fieldArray(raw, name string) ([]any, bool, bool) {
	re := regexp.MustCompile(`"` + regexp.QuoteMeta(name) + `"\s*:\s*\[`)
	loc := re.FindStringIndex(raw)
	if loc == nil {
		return nil, false, false
	}
	open := loc[1] - 1
	span := raw[open:]
	if end := matchClose(raw, open); end >= 0 {
		span = raw[open : end+1]
	}
	var arr []any
	if json.Unmarshal([]byte(span), &arr) == nil {
		return arr, false, true
	}
	if json.Unmarshal([]byte(Repair(span)), &arr) == nil {
		return arr, true, true
	}
	return nil, false, false
}

func parseCandidate(s string, st Strategy) (Outcome, bool) {
	if v, ok := parseObject(s); ok {
		return Outcome{Value: v, Strategy: st}, true
	}
	if v, ok := parseObject(Repair(s)); ok {
		return Outcome{Value: v, Strategy: st, Repaired: true}, true
	}
	return Outcome{}, false
}

func parseObject(s string) (map[string]any, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}
	var v map[string]any
	if err := json.Unmarshal([]byte(s), &v); err != nil || v == nil {
		return nil, false
	}
	return v, true
}

// matchClose returns the index of the bracket closing the one at open, or -1.
// Brackets inside string literals are ignored
func matchClose(s string, open int) int {
	var stack []byte
	inStr, esc := false, false
	for i := open; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) == 0 || !pairs(stack[len(stack)-1], c) {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}

func pairs(open, close byte) bool {
	return open == '{' && close == '}' || open == '[' && close == ']'
}
