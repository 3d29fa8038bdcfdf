package normalize

import (
	"strings"
	"unicode/utf8"
)

// Sanitize removes bytes/runes that never belong in a chat export:
// NUL and ASCII controls except '\n' and '\t', DEL, C1 controls U+0080..U+009F
// and invalid UTF-8 bytes. Clean input is returned unchanged without allocating
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	i := 0
	for i < len(s) {
		b := s[i]
		if b < utf8.RuneSelf {
			if keepASCII(b) {
				i++
				continue
			}
			break
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 || isC1(r) {
			break
		}
		i += size
	}
	if i == len(s) {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	sb.WriteString(s[:i])
	for i < len(s) {
		b := s[i]
		if b < utf8.RuneSelf {
			if keepASCII(b) {
				sb.WriteByte(b)
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if !(r == utf8.RuneError && size == 1) && !isC1(r) {
			sb.WriteString(s[i : i+size])
		}
		i += size
	}
	return sb.String()
}

func keepASCII(b byte) bool { return b == '\n' || b == '\t' || (b >= 0x20 && b != 0x7f) }

func isC1(r rune) bool { return r >= 0x80 && r <= 0x9f }
