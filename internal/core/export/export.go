// Package export renders the three order tables as delimited text with Korean
// header rows. Every field is quoted and inner quotes are doubled; rows end
// with "\n" except the last
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"orderlens/internal/core/order"
)

// Kind selects one of the three tables
type Kind uint8

// Table kinds
const (
	KindTime Kind = iota
	KindItem
	KindCustomer
)

// Kinds lists every table in output order
var Kinds = []Kind{KindTime, KindItem, KindCustomer}

func (k Kind) String() string {
	switch k {
	case KindTime:
		return "time_based"
	case KindItem:
		return "item_based"
	case KindCustomer:
		return "customer_based"
	default:
		return "unknown"
	}
}

// Headers returns the header row of the table
func (k Kind) Headers() []string {
	switch k {
	case KindTime:
		return []string{"시간", "주문자", "품목", "수량", "비고"}
	case KindItem:
		return []string{"품목명", "총 수량", "주문자 목록"}
	case KindCustomer:
		return []string{"주문자", "품목", "수량", "비고"}
	default:
		return nil
	}
}

// Tables holds the rendered text of each table
type Tables struct {
	Time     string
	Item     string
	Customer string
}

// Render builds all three tables from r
func Render(r order.Result) Tables {
	return Tables{
		Time:     render(KindTime, r),
		Item:     render(KindItem, r),
		Customer: render(KindCustomer, r),
	}
}

// Get returns the rendered table of kind k
func (t Tables) Get(k Kind) string {
	switch k {
	case KindTime:
		return t.Time
	case KindItem:
		return t.Item
	default:
		return t.Customer
	}
}

// Write renders one table of r to w
func Write(w io.Writer, k Kind, r order.Result) error {
	if k.Headers() == nil {
		return fmt.Errorf("export: unknown table kind %d", k)
	}
	_, err := io.WriteString(w, render(k, r))
	return err
}

func render(k Kind, r order.Result) string {
	var b strings.Builder
	row(&b, k.Headers())
	switch k {
	case KindTime:
		for _, o := range r.TimeBasedOrders {
			b.WriteByte('\n')
			row(&b, []string{o.Time, o.Customer, o.Item, strconv.Itoa(o.Quantity), o.Note})
		}
	case KindItem:
		for _, s := range r.ItemBasedSummary {
			b.WriteByte('\n')
			row(&b, []string{s.Item, strconv.Itoa(s.TotalQuantity), s.Customers})
		}
	case KindCustomer:
		for _, o := range r.CustomerBasedOrders {
			b.WriteByte('\n')
			row(&b, []string{o.Customer, o.Item, strconv.Itoa(o.Quantity), o.Note})
		}
	}
	return b.String()
}

func row(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}
