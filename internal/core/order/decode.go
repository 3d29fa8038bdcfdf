package order

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// field spellings accepted from model output, snake_case first
var (
	keysTime     = []string{"time_based_orders", "timeBasedOrders"}
	keysCustomer = []string{"customer_based_orders", "customerBasedOrders"}
	keysItem     = []string{"item_based_summary", "itemBasedSummary"}
	keysPatterns = []string{"order_pattern_analysis", "orderPatternAnalysis"}
	keysTotal    = []string{"total_quantity", "totalQuantity"}
	keysPeak     = []string{"peak_hours", "peakHours"}
	keysPopular  = []string{"popular_items", "popularItems"}
	keysSoldOut  = []string{"sold_out_items", "soldOutItems"}
)

// Decode builds a Result from a loosely shaped model object. Wrong types are
// dropped rather than reported; missing fields come back empty
func Decode(m map[string]any) Result {
	r := Empty()
	for _, v := range list(m, keysTime) {
		if rec, ok := record(v); ok {
			r.TimeBasedOrders = append(r.TimeBasedOrders, rec)
		}
	}
	for _, v := range list(m, keysCustomer) {
		if rec, ok := record(v); ok {
			r.CustomerBasedOrders = append(r.CustomerBasedOrders, rec)
		}
	}
	for _, v := range list(m, keysItem) {
		o, ok := v.(map[string]any)
		if !ok {
			continue
		}
		// non-numeric totals contribute nothing to later sums
		total, _ := ParseQuantity(pick(o, keysTotal))
		r.ItemBasedSummary = append(r.ItemBasedSummary, ItemSummary{
			Item:          text(o["item"]),
			TotalQuantity: total,
			Customers:     customers(o["customers"]),
		})
	}
	if p, ok := pick(m, keysPatterns).(map[string]any); ok {
		r.OrderPatternAnalysis.PeakHours = strs(pick(p, keysPeak))
		r.OrderPatternAnalysis.PopularItems = strs(pick(p, keysPopular))
		r.OrderPatternAnalysis.SoldOutItems = strs(pick(p, keysSoldOut))
	}
	if s := text(pick(m, []string{"shop_name", "shopName"})); s != "" {
		r.ShopName = s
	}
	return r
}

// MaxQuantity bounds a single line's quantity so totals cannot overflow
const MaxQuantity = math.MaxInt32

func clampFloat(f float64) int {
	return int(max(min(f, MaxQuantity), -MaxQuantity))
}

func clampInt(n int) int { return max(min(n, MaxQuantity), -MaxQuantity) }

// Quantity normalizes a model-provided quantity: numbers are truncated,
// strings lose their thousands separators ("2,000" is 2000), anything present
// but unparseable counts as 1. A missing value is 0
func Quantity(v any) int {
	switch q := v.(type) {
	case nil:
		return 0
	case float64:
		if math.IsNaN(q) || math.IsInf(q, 0) {
			return 1
		}
		return clampFloat(q)
	case int:
		return clampInt(q)
	case json.Number:
		return Quantity(string(q))
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(q, ",", ""))
		if n, err := strconv.Atoi(s); err == nil {
			return clampInt(n)
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) {
			return clampFloat(f)
		}
		return 1
	default:
		return 1
	}
}

// ParseQuantity is the strict form used when summing: ok is false for anything non-numeric
func ParseQuantity(v any) (int, bool) {
	switch q := v.(type) {
	case int:
		return clampInt(q), true
	case float64:
		if math.IsNaN(q) || math.IsInf(q, 0) {
			return 0, false
		}
		return clampFloat(q), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(strings.ReplaceAll(q, ",", "")))
		return clampInt(n), err == nil
	}
	return 0, false
}

func record(v any) (Record, bool) {
	o, ok := v.(map[string]any)
	if !ok {
		return Record{}, false
	}
	return Record{
		Time:     text(o["time"]),
		Customer: text(o["customer"]),
		Item:     text(o["item"]),
		Quantity: Quantity(o["quantity"]),
		Note:     text(o["note"]),
	}, true
}

func pick(m map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func list(m map[string]any, keys []string) []any {
	l, _ := pick(m, keys).([]any)
	return l
}

func text(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

// customers accepts "a, b" or ["a", "b"]
func customers(v any) string {
	if l, ok := v.([]any); ok {
		return strings.Join(strs(l), ", ")
	}
	return text(v)
}

// strs keeps scalar entries; objects contribute their first descriptive field
func strs(v any) []string {
	l, _ := v.([]any)
	out := make([]string, 0, len(l))
	for _, e := range l {
		if o, ok := e.(map[string]any); ok {
			e = pick(o, []string{"item", "name", "hour", "time", "value"})
		}
		if s := text(e); s != "" {
			out = append(out, s)
		}
	}
	return out
}
