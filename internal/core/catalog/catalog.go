// Package catalog mines the product vocabulary from seller announcements.
// The catalog keeps sold out items so later stages can recognise closing
// notices; it is built once per analysis and only read afterwards
package catalog

import (
	"slices"
	"strings"

	"orderlens/internal/core/classify"
	"orderlens/internal/core/normalize"
	"orderlens/internal/core/preprocess"
	"orderlens/internal/core/rulepack"
	"orderlens/internal/core/summary"
)

// Entry is one product as announced by a seller
type Entry struct {
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Price     string `json:"price,omitempty"`
	Closed    bool   `json:"closed,omitempty"`
	PickupDay string `json:"pickup_day,omitempty"`
}

// Catalog is a set of entries keyed by normalize.Key of the name
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// NewCatalog returns an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{index: map[string]int{}}
}

// Add inserts e or folds it into the entry with the same key: the first
// spelling and category are kept, a missing price or pickup day is filled and
// Closed is sticky. It reports whether e was new
func (c *Catalog) Add(e Entry) bool {
	e.Name = normalize.Compact(e.Name)
	key := normalize.Key(e.Name)
	if key == "" {
		return false
	}
	if i, ok := c.index[key]; ok {
		cur := &c.entries[i]
		cur.Closed = cur.Closed || e.Closed
		if cur.Category == "" {
			cur.Category = e.Category
		}
		if cur.Price == "" {
			cur.Price = e.Price
		}
		if cur.PickupDay == "" {
			cur.PickupDay = e.PickupDay
		}
		return false
	}
	c.index[key] = len(c.entries)
	c.entries = append(c.entries, e)
	return true
}

// Len is the number of distinct products
func (c *Catalog) Len() int { return len(c.entries) }

// Contains reports whether a product with the same key is present
func (c *Catalog) Contains(name string) bool {
	_, ok := c.index[normalize.Key(name)]
	return ok
}

// Names returns the product names sorted
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.Name)
	}
	slices.Sort(out)
	return out
}

// Entries returns a copy of the entries in discovery order
func (c *Catalog) Entries() []Entry { return slices.Clone(c.entries) }

// Extractor applies the catalog rules of a rule pack
type Extractor struct {
	pack  *rulepack.Pack
	pre   *preprocess.Preprocessor
	names *summary.Builder
}

// New returns an extractor over p
func New(p *rulepack.Pack) *Extractor {
	return &Extractor{
		pack:  p,
		pre:   preprocess.New(classify.New(p)),
		names: summary.New(p),
	}
}

// Default returns an extractor over the embedded rule pack
func Default() *Extractor { return New(rulepack.MustLoad()) }

// SellerText joins the deduplicated seller messages of text, blank line separated
func (x *Extractor) SellerText(text string) string {
	msgs := x.pre.SellerMessages(text)
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, m.Text)
	}
	return strings.Join(parts, "\n\n")
}

// Extract builds the catalog from seller messages in text. Customer lines are never consulted
func (x *Extractor) Extract(text string) *Catalog {
	c := NewCatalog()
	for _, m := range x.pre.SellerMessages(text) {
		pickup := ""
		if sm := x.pack.Pickup.FindStringSubmatch(m.Text); sm != nil {
			pickup = normalize.Compact(sm[1])
		}
		for _, line := range strings.Split(m.Text, "\n") {
			for _, e := range x.scanLine(line) {
				if e.PickupDay == "" {
					e.PickupDay = pickup
				}
				c.Add(e)
			}
		}
	}
	return c
}

func (x *Extractor) scanLine(line string) []Entry {
	var (
		out     []Entry
		claimed [][2]int
	)
	price := ""
	if sm := x.pack.Price.FindStringSubmatch(line); sm != nil {
		price = sm[2] + "원"
	}
	closed := x.closedNames(line)

	for _, cat := range x.pack.Categories {
		for _, re := range cat.Patterns {
			for _, loc := range re.FindAllStringIndex(line, -1) {
				if overlaps(claimed, loc) {
					continue
				}
				name := normalize.Compact(line[loc[0]:loc[1]])
				if !x.names.ValidItemName(name) {
					continue
				}
				claimed = append(claimed, [2]int{loc[0], loc[1]})
				out = append(out, Entry{
					Name:     name,
					Category: cat.Name,
					Price:    price,
					Closed:   closedMatch(closed, name),
				})
			}
		}
	}

	// closing notices for products no category pattern knows
	for _, name := range closed {
		known := false
		for _, e := range out {
			if strings.Contains(normalize.Key(name), normalize.Key(e.Name)) {
				known = true
				break
			}
		}
		if known {
			continue
		}
		fields := strings.Fields(name)
		if len(fields) == 0 {
			continue
		}
		last := fields[len(fields)-1]
		if x.names.ValidItemName(last) {
			out = append(out, Entry{Name: last, Closed: true})
		}
	}
	return out
}

// closedNames returns the subject text of every closing marker on the line
func (x *Extractor) closedNames(line string) []string {
	var out []string
	for _, re := range x.pack.Deadlines {
		for _, sm := range re.FindAllStringSubmatch(line, -1) {
			if s := strings.TrimSpace(sm[1]); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func closedMatch(subjects []string, name string) bool {
	k := normalize.Key(name)
	for _, s := range subjects {
		if strings.Contains(normalize.Key(s), k) {
			return true
		}
	}
	return false
}

func overlaps(spans [][2]int, loc []int) bool {
	for _, s := range spans {
		if loc[0] < s[1] && s[0] < loc[1] {
			return true
		}
	}
	return false
}
