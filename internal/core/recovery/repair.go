package recovery

import "strings"

// Repair applies the bounded set of textual fixes to a near-JSON span:
// trim to the outermost braces, escape raw newlines inside strings, close a
// dangling string, drop stray closers, close unclosed brackets and remove
// trailing commas. It never reorders or invents content beyond closers
func Repair(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '{'); i > 0 {
		s = s[i:]
	} else if i < 0 {
		if j := strings.IndexByte(s, '['); j > 0 {
			s = s[j:]
		}
	}
	if strings.HasPrefix(s, "{") {
		if j := strings.LastIndexByte(s, '}'); j >= 0 && j < len(s)-1 && strings.Count(s, "{") <= strings.Count(s, "}") {
			s = s[:j+1]
		}
	}

	var (
		b     strings.Builder
		stack []byte
	)
	b.Grow(len(s) + 8)
	inStr, esc := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			case c == '\n':
				b.WriteString(`\n`)
				continue
			case c == '\r':
				continue
			case c == '\t':
				b.WriteString(`\t`)
				continue
			}
			b.WriteByte(c)
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) == 0 || !pairs(stack[len(stack)-1], c) {
				// stray closer
				continue
			}
			stack = stack[:len(stack)-1]
		}
		b.WriteByte(c)
	}
	if inStr {
		if esc {
			b.WriteByte('\\')
		}
		b.WriteByte('"')
	}
	out := strings.TrimRight(b.String(), " \t\n")
	out = strings.TrimSuffix(out, ",")
	if strings.HasSuffix(out, ":") {
		out += "null"
	}
	var closers strings.Builder
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			closers.WriteByte('}')
		} else {
			closers.WriteByte(']')
		}
	}
	return stripTrailingCommas(out + closers.String())
}

// stripTrailingCommas removes commas that directly precede } or ], outside strings
func stripTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inStr, esc := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			b.WriteByte(c)
			continue
		}
		if c == '"' {
			inStr = true
		}
		if c == ',' {
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\n' || s[j] == '\t' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
