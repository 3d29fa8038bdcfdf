// Package order holds the analysis result model shared by every pipeline stage
package order

import "slices"

// TableHeaders are the fixed column names of the flattened item table
var TableHeaders = []string{"품목", "총수량", "주문자"}

// Record is one order line: who ordered what, how many, when
type Record struct {
	Time     string `json:"time"`
	Customer string `json:"customer"`
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
	Note     string `json:"note"`
}

// ItemSummary aggregates one item; Customers is a ", " joined sorted unique list
type ItemSummary struct {
	Item          string `json:"item"`
	TotalQuantity int    `json:"total_quantity"`
	Customers     string `json:"customers"`
}

// Patterns are set-like aggregates reported by the model
type Patterns struct {
	PeakHours    []string `json:"peak_hours"`
	PopularItems []string `json:"popular_items"`
	SoldOutItems []string `json:"sold_out_items"`
}

// Table is the flattened item summary for display
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Result is the top-level analysis aggregate
type Result struct {
	TimeBasedOrders      []Record      `json:"time_based_orders"`
	CustomerBasedOrders  []Record      `json:"customer_based_orders"`
	ItemBasedSummary     []ItemSummary `json:"item_based_summary"`
	TableSummary         Table         `json:"table_summary"`
	OrderPatternAnalysis Patterns      `json:"order_pattern_analysis"`
	ShopName             string        `json:"shop_name,omitempty"`
}

// Empty returns a result with every collection allocated, so it encodes with [] instead of null
func Empty() Result {
	return Result{
		TimeBasedOrders:     []Record{},
		CustomerBasedOrders: []Record{},
		ItemBasedSummary:    []ItemSummary{},
		TableSummary:        Table{Headers: slices.Clone(TableHeaders), Rows: [][]string{}},
		OrderPatternAnalysis: Patterns{
			PeakHours:    []string{},
			PopularItems: []string{},
			SoldOutItems: []string{},
		},
	}
}

// Skeleton is the well-shaped contribution of a chunk whose every tier failed:
// the catalog appears in the item summary with zero quantities
func Skeleton(catalog []string, shop string) Result {
	r := Empty()
	r.ShopName = shop
	for _, name := range catalog {
		r.ItemBasedSummary = append(r.ItemBasedSummary, ItemSummary{Item: name})
	}
	return r
}

// Normalize fills any nil collection with its empty value
func (r Result) Normalize() Result {
	e := Empty()
	if r.TimeBasedOrders == nil {
		r.TimeBasedOrders = e.TimeBasedOrders
	}
	if r.CustomerBasedOrders == nil {
		r.CustomerBasedOrders = e.CustomerBasedOrders
	}
	if r.ItemBasedSummary == nil {
		r.ItemBasedSummary = e.ItemBasedSummary
	}
	if len(r.TableSummary.Headers) == 0 {
		r.TableSummary.Headers = e.TableSummary.Headers
	}
	if r.TableSummary.Rows == nil {
		r.TableSummary.Rows = e.TableSummary.Rows
	}
	p := &r.OrderPatternAnalysis
	if p.PeakHours == nil {
		p.PeakHours = []string{}
	}
	if p.PopularItems == nil {
		p.PopularItems = []string{}
	}
	if p.SoldOutItems == nil {
		p.SoldOutItems = []string{}
	}
	return r
}

// Clone returns a deep copy; results are handed out by value and never share backing arrays
func (r Result) Clone() Result {
	c := r
	c.TimeBasedOrders = slices.Clone(r.TimeBasedOrders)
	c.CustomerBasedOrders = slices.Clone(r.CustomerBasedOrders)
	c.ItemBasedSummary = slices.Clone(r.ItemBasedSummary)
	c.TableSummary.Headers = slices.Clone(r.TableSummary.Headers)
	if r.TableSummary.Rows != nil {
		c.TableSummary.Rows = make([][]string, len(r.TableSummary.Rows))
		for i, row := range r.TableSummary.Rows {
			c.TableSummary.Rows[i] = slices.Clone(row)
		}
	}
	c.OrderPatternAnalysis = Patterns{
		PeakHours:    slices.Clone(r.OrderPatternAnalysis.PeakHours),
		PopularItems: slices.Clone(r.OrderPatternAnalysis.PopularItems),
		SoldOutItems: slices.Clone(r.OrderPatternAnalysis.SoldOutItems),
	}
	return c
}
