// Package normalize provides deterministic text normalization for chat exports
// and product names
//
// Text is applied once at ingress so every later stage sees LF line endings and
// valid UTF-8. Key builds the dedupe key for product names
// 1 sanitize controls and invalid UTF-8
// 2 Unicode NFKC
// 3 case folding
// 4 remove format chars (ZWJ ZWNJ BOM)
// 5 width fold fullwidth to ASCII
// 6 drop all whitespace
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// pool of fresh transformer chains; transformers are stateful
var keyChain = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
		)
	},
}

// Text prepares a raw transcript: format runes (BOM anywhere, ZWSP, ZWJ) and
// control bytes are dropped and CRLF/CR become LF
func Text(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = Sanitize(s)
	if out, _, err := transform.String(runes.Remove(runes.In(unicode.Cf)), s); err == nil {
		s = out
	}
	return s
}

// Blank reports whether s is empty once normalized and trimmed
func Blank(s string) bool { return strings.TrimSpace(Text(s)) == "" }

// Key returns the comparison key for a product or item name
// "생크림 케이크" and "생크림케이크" share a key
func Key(s string) string {
	if s == "" {
		return ""
	}
	tr := keyChain.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, Sanitize(s))
	tr.Reset()
	keyChain.Put(tr)
	if err != nil {
		ns = strings.ToLower(s)
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, ns)
}

// Compact collapses every whitespace run (newlines included) to one space and trims
func Compact(s string) string { return strings.Join(strings.Fields(s), " ") }
