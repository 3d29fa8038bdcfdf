// Package preprocess strips structural noise from a chat export and groups
// the remaining lines into speaker messages
package preprocess

import (
	"strings"

	"orderlens/internal/core/classify"
	"orderlens/internal/core/normalize"
)

// Stats counts dropped lines per noise category. Reporting only
type Stats struct {
	Total   int
	Kept    int
	Blank   int
	ByNoise map[classify.NoiseKind]int
}

// Labeled renders the counts with the Korean report labels
func (s Stats) Labeled() map[string]int {
	out := map[string]int{"전체 메시지": s.Total}
	for _, k := range classify.NoiseKinds {
		out[k.Label()] = s.ByNoise[k]
	}
	return out
}

// Message is one speaker turn: a header line plus its continuation lines
type Message struct {
	Date    string
	Time    string
	Speaker string
	Text    string
	Seller  bool
}

// Preprocessor is stateless apart from its classifier
type Preprocessor struct {
	c *classify.Classifier
}

// New returns a Preprocessor using c
func New(c *classify.Classifier) *Preprocessor {
	if c == nil {
		panic("preprocess: nil classifier")
	}
	return &Preprocessor{c: c}
}

// Clean drops noise and blank lines and trims the result. Clean(Clean(t)) == Clean(t)
func (p *Preprocessor) Clean(text string) (string, Stats) {
	st := Stats{ByNoise: make(map[classify.NoiseKind]int, len(classify.NoiseKinds))}
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		st.Total++
		if strings.TrimSpace(line) == "" {
			st.Blank++
			continue
		}
		if k := classify.NoiseOf(line); k != classify.NoiseNone {
			st.ByNoise[k]++
			continue
		}
		kept = append(kept, line)
	}
	st.Kept = len(kept)
	return strings.TrimSpace(strings.Join(kept, "\n")), st
}

// Messages groups lines into speaker turns; lines before the first header are dropped
func (p *Preprocessor) Messages(text string) []Message {
	var (
		out []Message
		cur *Message
	)
	for _, raw := range strings.Split(text, "\n") {
		l := p.c.Classify(raw)
		switch {
		case l.Noise != classify.NoiseNone:
			continue
		case l.Header:
			out = append(out, Message{Date: l.Date, Time: l.Time, Speaker: l.Speaker, Text: l.Body, Seller: l.Seller})
			cur = &out[len(out)-1]
		case cur != nil && l.Date == "" && strings.TrimSpace(raw) != "":
			cur.Text += "\n" + strings.TrimSpace(raw)
		}
	}
	return out
}

// SellerMessages returns seller turns, deduplicated by whitespace-normalized text
func (p *Preprocessor) SellerMessages(text string) []Message {
	seen := map[string]struct{}{}
	var out []Message
	for _, m := range p.Messages(text) {
		if !m.Seller {
			continue
		}
		key := normalize.Compact(m.Text)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	return out
}
