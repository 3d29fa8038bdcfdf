// Package summary validates a merged result and rebuilds its item and table
// summaries from the time ordered order list
package summary

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"orderlens/internal/core/merge"
	"orderlens/internal/core/order"
	"orderlens/internal/core/rulepack"
)

// Report counts what Finalize dropped or flagged. It is diagnostic only
type Report struct {
	Orders           int `json:"orders"`
	Items            int `json:"items"`
	DroppedOrders    int `json:"dropped_orders"`
	DroppedSoldOut   int `json:"dropped_sold_out"`
	SkippedQuantity  int `json:"skipped_quantity"`
	SuspectCustomers int `json:"suspect_customers"`
}

// Builder applies the name rules of a rule pack
type Builder struct {
	items     rulepack.NameRules
	customers rulepack.NameRules
}

// New returns a builder over p
func New(p *rulepack.Pack) *Builder {
	return &Builder{items: p.Items, customers: p.Customers}
}

// Default returns a builder over the embedded rule pack
func Default() *Builder { return New(rulepack.MustLoad()) }

// Finalize returns a well shaped copy of r. Orders with implausible item names
// are dropped, item_based_summary and table_summary are recomputed from
// time_based_orders and sold out items are filtered by the same name check.
// Any summary the model produced is discarded
func (b *Builder) Finalize(r order.Result) (order.Result, Report) {
	var rep Report
	out := r.Clone().Normalize()

	out.TimeBasedOrders, rep.DroppedOrders = b.keepValid(out.TimeBasedOrders)
	var dropped int
	out.CustomerBasedOrders, dropped = b.keepValid(out.CustomerBasedOrders)
	rep.DroppedOrders += dropped

	for _, o := range out.TimeBasedOrders {
		if !b.ValidCustomerName(o.Customer) {
			rep.SuspectCustomers++
		}
	}

	out.ItemBasedSummary, rep.SkippedQuantity = Items(out.TimeBasedOrders)
	out.TableSummary = Table(out.ItemBasedSummary)

	sold := out.OrderPatternAnalysis.SoldOutItems[:0:0]
	for _, s := range out.OrderPatternAnalysis.SoldOutItems {
		if b.ValidItemName(s) {
			sold = append(sold, s)
			continue
		}
		rep.DroppedSoldOut++
	}
	out.OrderPatternAnalysis.SoldOutItems = sold

	rep.Orders = len(out.TimeBasedOrders)
	rep.Items = len(out.ItemBasedSummary)
	return out, rep
}

func (b *Builder) keepValid(in []order.Record) ([]order.Record, int) {
	out := make([]order.Record, 0, len(in))
	for _, o := range in {
		if b.ValidItemName(o.Item) {
			out = append(out, o)
		}
	}
	return out, len(in) - len(out)
}

// Items groups orders by item, summing positive quantities and collecting
// customers. Orders missing an item or customer, or with quantity <= 0, are
// skipped and counted. The result is sorted by total quantity descending,
// ties keeping first appearance
func Items(orders []order.Record) ([]order.ItemSummary, int) {
	type agg struct {
		total     int
		customers map[string]struct{}
	}
	var (
		byItem  = map[string]*agg{}
		names   []string
		skipped int
	)
	for _, o := range orders {
		item, customer := strings.TrimSpace(o.Item), strings.TrimSpace(o.Customer)
		if item == "" || customer == "" || o.Quantity <= 0 {
			skipped++
			continue
		}
		a, ok := byItem[item]
		if !ok {
			a = &agg{customers: map[string]struct{}{}}
			byItem[item] = a
			names = append(names, item)
		}
		// saturate rather than wrap
		if a.total > math.MaxInt-o.Quantity {
			a.total = math.MaxInt
		} else {
			a.total += o.Quantity
		}
		a.customers[customer] = struct{}{}
	}

	out := make([]order.ItemSummary, 0, len(names))
	for _, name := range names {
		a := byItem[name]
		out = append(out, order.ItemSummary{
			Item:          name,
			TotalQuantity: a.total,
			Customers:     merge.JoinCustomers(a.customers),
		})
	}
	slices.SortStableFunc(out, func(x, y order.ItemSummary) int { return cmp.Compare(y.TotalQuantity, x.TotalQuantity) })
	return out, skipped
}

// Table flattens item summaries into display rows, keeping their order
func Table(items []order.ItemSummary) order.Table {
	t := order.Table{Headers: slices.Clone(order.TableHeaders), Rows: make([][]string, 0, len(items))}
	for _, s := range items {
		t.Rows = append(t.Rows, []string{s.Item, strconv.Itoa(s.TotalQuantity), s.Customers})
	}
	return t
}

// ValidItemName reports whether name is plausible as a product: within the
// length bounds, not a bare number, not a stoplisted word and not matching a
// date, time or price shape
func (b *Builder) ValidItemName(name string) bool {
	name = strings.TrimSpace(name)
	if !withinLen(name, b.items) || allDigits(name) {
		return false
	}
	if _, stop := b.items.Stop[name]; stop {
		return false
	}
	for _, re := range b.items.Reject {
		if re.MatchString(name) {
			return false
		}
	}
	return true
}

// ValidCustomerName reports whether name looks like an ordering nickname rather than an operator notice
func (b *Builder) ValidCustomerName(name string) bool {
	name = strings.TrimSpace(name)
	if !withinLen(name, b.customers) {
		return false
	}
	for w := range b.customers.Stop {
		if strings.Contains(name, w) {
			return false
		}
	}
	return true
}

func withinLen(s string, r rulepack.NameRules) bool {
	n := utf8.RuneCountInString(s)
	return n >= r.MinLen && (r.MaxLen <= 0 || n <= r.MaxLen)
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != ',' {
			return false
		}
	}
	return true
}
