// Package chunker splits a transcript into ordered, size-bounded pieces.
// Sizes are counted in characters (runes). Pieces concatenate back to the input
// byte for byte: no line is dropped, duplicated, reordered or cut
package chunker

import (
	"strings"
	"unicode/utf8"

	"orderlens/internal/core/classify"
)

// Split packs whole date sections greedily into chunks of at most maxSize
// characters. A section larger than maxSize is packed line by line, and a
// single line larger than maxSize becomes a chunk of its own
func Split(text string, maxSize int) []string {
	if text == "" {
		return nil
	}
	if maxSize <= 0 || utf8.RuneCountInString(text) <= maxSize {
		return []string{text}
	}

	var p packer
	p.max = maxSize
	for _, sec := range sections(text) {
		n := utf8.RuneCountInString(sec)
		if n > maxSize {
			p.flush()
			p.out = append(p.out, SplitLines(sec, maxSize)...)
			continue
		}
		p.add(sec, n)
	}
	p.flush()
	return p.out
}

// SplitLines is Split without date awareness: whole lines are packed greedily
func SplitLines(text string, maxSize int) []string {
	if text == "" {
		return nil
	}
	if maxSize <= 0 {
		return []string{text}
	}
	var p packer
	p.max = maxSize
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		p.add(line, utf8.RuneCountInString(line))
	}
	p.flush()
	return p.out
}

// sections cuts text before every date separator line; each piece keeps its newlines
func sections(text string) []string {
	var (
		out []string
		cur strings.Builder
	)
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		if _, ok := classify.SeparatorDate(line); ok && cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

type packer struct {
	max int
	out []string
	cur strings.Builder
	n   int
}

func (p *packer) add(s string, n int) {
	if p.n > 0 && p.n+n > p.max {
		p.flush()
	}
	p.cur.WriteString(s)
	p.n += n
}

func (p *packer) flush() {
	if p.cur.Len() == 0 {
		return
	}
	p.out = append(p.out, p.cur.String())
	p.cur.Reset()
	p.n = 0
}
