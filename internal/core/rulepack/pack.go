// Package rulepack loads and compiles the seller, catalog and validation rules
// from the embedded rules.yaml. It is the single source of truth for every
// keyword list the pipeline consults
package rulepack

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var embedded []byte

type rawPack struct {
	Version int `yaml:"version"`
	Sellers struct {
		Aliases      []string `yaml:"aliases"`
		Fragments    []string `yaml:"fragments"`
		Keywords     []string `yaml:"keywords"`
		CustomerTail string   `yaml:"customer_tail"`
	} `yaml:"sellers"`
	Catalog struct {
		Categories []struct {
			Name     string   `yaml:"name"`
			Patterns []string `yaml:"patterns"`
		} `yaml:"categories"`
		Price     string   `yaml:"price"`
		Deadlines []string `yaml:"deadlines"`
		Pickup    string   `yaml:"pickup"`
	} `yaml:"catalog"`
	Items struct {
		MinLen   int      `yaml:"min_len"`
		MaxLen   int      `yaml:"max_len"`
		Stoplist []string `yaml:"stoplist"`
		Reject   []string `yaml:"reject"`
	} `yaml:"items"`
	Customers struct {
		MinLen    int      `yaml:"min_len"`
		MaxLen    int      `yaml:"max_len"`
		Stopwords []string `yaml:"stopwords"`
	} `yaml:"customers"`
}

// Pack is the compiled, read-only rule set
type Pack struct {
	Version int

	SellerAliases   map[string]struct{} // folded
	SellerFragments []string            // folded
	SellerKeywords  []string            // folded
	CustomerTail    *regexp.Regexp

	Categories []Category
	Price      *regexp.Regexp
	Deadlines  []*regexp.Regexp
	Pickup     *regexp.Regexp

	Items     NameRules
	Customers NameRules
}

// Category groups product name patterns; patterns are tried in order, longest names first
type Category struct {
	Name     string
	Patterns []*regexp.Regexp
}

// NameRules bound and filter free-text names (items, customers)
type NameRules struct {
	MinLen int
	MaxLen int
	Stop   map[string]struct{}
	Reject []*regexp.Regexp
}

var (
	defaultOnce sync.Once
	defaultPack *Pack
	defaultErr  error
)

// Load returns the compiled embedded pack, parsed once per process
func Load() (*Pack, error) {
	defaultOnce.Do(func() { defaultPack, defaultErr = Parse(embedded) })
	return defaultPack, defaultErr
}

// MustLoad is Load for wiring code and tests; the embedded file is covered by tests so a failure is a build bug
func MustLoad() *Pack {
	p, err := Load()
	if err != nil {
		panic(err)
	}
	return p
}

// Embedded exposes the raw embedded rule file
func Embedded() []byte { return embedded }

// Parse compiles a rule file. Every regex must compile and every category needs a name and patterns
func Parse(b []byte) (*Pack, error) {
	var rp rawPack
	if err := yaml.Unmarshal(b, &rp); err != nil {
		return nil, fmt.Errorf("rulepack: parse rules: %w", err)
	}
	if rp.Version <= 0 {
		return nil, fmt.Errorf("rulepack: version must be positive")
	}

	p := &Pack{
		Version:         rp.Version,
		SellerAliases:   make(map[string]struct{}, len(rp.Sellers.Aliases)),
		SellerFragments: foldAll(rp.Sellers.Fragments),
		SellerKeywords:  foldAll(rp.Sellers.Keywords),
	}
	for _, a := range foldAll(rp.Sellers.Aliases) {
		p.SellerAliases[a] = struct{}{}
	}

	var err error
	if p.CustomerTail, err = compile("sellers.customer_tail", rp.Sellers.CustomerTail); err != nil {
		return nil, err
	}
	if p.Price, err = compile("catalog.price", rp.Catalog.Price); err != nil {
		return nil, err
	}
	if p.Pickup, err = compile("catalog.pickup", rp.Catalog.Pickup); err != nil {
		return nil, err
	}
	if p.Deadlines, err = compileAll("catalog.deadlines", rp.Catalog.Deadlines); err != nil {
		return nil, err
	}

	for i, c := range rp.Catalog.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" || len(c.Patterns) == 0 {
			return nil, fmt.Errorf("rulepack: category %d needs a name and patterns", i)
		}
		pats, err := compileAll("catalog.categories."+name, c.Patterns)
		if err != nil {
			return nil, err
		}
		p.Categories = append(p.Categories, Category{Name: name, Patterns: pats})
	}

	reject, err := compileAll("items.reject", rp.Items.Reject)
	if err != nil {
		return nil, err
	}
	p.Items = NameRules{
		MinLen: rp.Items.MinLen,
		MaxLen: rp.Items.MaxLen,
		Stop:   setOf(rp.Items.Stoplist),
		Reject: reject,
	}
	p.Customers = NameRules{
		MinLen: rp.Customers.MinLen,
		MaxLen: rp.Customers.MaxLen,
		Stop:   setOf(rp.Customers.Stopwords),
	}
	return p, nil
}

// Fold is the case folding applied to speakers before seller matching
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "[]")))
}

func compile(where, pat string) (*regexp.Regexp, error) {
	if strings.TrimSpace(pat) == "" {
		return nil, fmt.Errorf("rulepack: %s is empty", where)
	}
	re, err := regexp.Compile(pat)
	if err != nil {
		return nil, fmt.Errorf("rulepack: %s: %w", where, err)
	}
	return re, nil
}

func compileAll(where string, pats []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(pats))
	for i, s := range pats {
		re, err := compile(fmt.Sprintf("%s[%d]", where, i), s)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

func foldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if f := Fold(s); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func setOf(in []string) map[string]struct{} {
	m := make(map[string]struct{}, len(in))
	for _, s := range in {
		m[strings.TrimSpace(s)] = struct{}{}
	}
	return m
}
