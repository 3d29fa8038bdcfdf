// Package merge combines per-chunk analysis results into one
package merge

import (
	"slices"
	"strings"

	"orderlens/internal/core/order"
	pstrings "orderlens/internal/platform/strings"
)

// Merge combines partial results. Order lists are concatenated in argument
// order and never resorted. Item summaries are grouped by item name with
// quantities summed and customers unioned. Pattern lists collapse to sets
// keeping the first mention. The first non-empty shop name wins.
// Inputs are not modified
func Merge(results ...order.Result) order.Result {
	out := order.Empty()
	var (
		items  = map[string]*group{}
		groups []*group
	)
	for _, r := range results {
		out.TimeBasedOrders = append(out.TimeBasedOrders, r.TimeBasedOrders...)
		out.CustomerBasedOrders = append(out.CustomerBasedOrders, r.CustomerBasedOrders...)
		if out.ShopName == "" {
			out.ShopName = r.ShopName
		}

		for _, s := range r.ItemBasedSummary {
			name := strings.TrimSpace(s.Item)
			if name == "" {
				continue
			}
			g, ok := items[name]
			if !ok {
				g = &group{item: name, customers: map[string]struct{}{}}
				items[name] = g
				groups = append(groups, g)
			}
			g.total += s.TotalQuantity
			for _, c := range SplitCustomers(s.Customers) {
				g.customers[c] = struct{}{}
			}
		}

		p := &out.OrderPatternAnalysis
		p.PeakHours = append(p.PeakHours, r.OrderPatternAnalysis.PeakHours...)
		p.PopularItems = append(p.PopularItems, r.OrderPatternAnalysis.PopularItems...)
		p.SoldOutItems = append(p.SoldOutItems, r.OrderPatternAnalysis.SoldOutItems...)
	}

	for _, g := range groups {
		out.ItemBasedSummary = append(out.ItemBasedSummary, order.ItemSummary{
			Item:          g.item,
			TotalQuantity: g.total,
			Customers:     JoinCustomers(g.customers),
		})
	}
	p := &out.OrderPatternAnalysis
	p.PeakHours = pstrings.Dedupe(p.PeakHours)
	p.PopularItems = pstrings.Dedupe(p.PopularItems)
	p.SoldOutItems = pstrings.Dedupe(p.SoldOutItems)
	return out
}

type group struct {
	item      string
	total     int
	customers map[string]struct{}
}

// SplitCustomers breaks a comma-joined customer list into trimmed names
func SplitCustomers(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// JoinCustomers renders a customer set sorted by name and joined with ", "
func JoinCustomers(set map[string]struct{}) string {
	names := make([]string, 0, len(set))
	for c := range set {
		names = append(names, c)
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}
