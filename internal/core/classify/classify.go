// Package classify decides, for one exported chat line, whether it is
// structural noise and whether its speaker is a seller
package classify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"orderlens/internal/core/rulepack"
)

// NoiseKind names the structural noise category of a line; NoiseNone is content
type NoiseKind uint8

// Noise categories in match priority order
const (
	NoiseNone NoiseKind = iota
	NoiseJoin
	NoiseLeave
	NoiseDeleted
	NoiseBot
	NoiseMedia
	NoiseDateOnly
)

// NoiseKinds lists every noise category in priority order
var NoiseKinds = []NoiseKind{NoiseJoin, NoiseLeave, NoiseDeleted, NoiseBot, NoiseMedia, NoiseDateOnly}

func (k NoiseKind) String() string {
	switch k {
	case NoiseJoin:
		return "join"
	case NoiseLeave:
		return "leave"
	case NoiseDeleted:
		return "deleted"
	case NoiseBot:
		return "bot"
	case NoiseMedia:
		return "media"
	case NoiseDateOnly:
		return "date_only"
	default:
		return "content"
	}
}

// Label is the Korean report label used in preprocessing stats
func (k NoiseKind) Label() string {
	switch k {
	case NoiseJoin:
		return "입장 메시지"
	case NoiseLeave:
		return "퇴장 메시지"
	case NoiseDeleted:
		return "삭제된 메시지"
	case NoiseBot:
		return "봇 메시지"
	case NoiseMedia:
		return "미디어 메시지"
	case NoiseDateOnly:
		return "날짜 구분선"
	default:
		return "일반 메시지"
	}
}

// stamp is the KakaoTalk export timestamp, e.g. "2025년 1월 2일 오후 3:05"
const stamp = `(\d{4})년\s+(\d{1,2})월\s+(\d{1,2})일\s+(오전|오후)\s+(\d{1,2}):(\d{2})`

var (
	reHeader = regexp.MustCompile(`^` + stamp + `,\s+([^:]+?)\s+:\s?(.*)$`)

	// whole-line grammars; a partial match is content
	noiseRules = []struct {
		kind NoiseKind
		re   *regexp.Regexp
	}{
		{NoiseJoin, regexp.MustCompile(`^(?:` + stamp + `,\s+)?[^:\s][^:]*님이\s+들어왔습니다\.?$`)},
		{NoiseLeave, regexp.MustCompile(`^(?:` + stamp + `,\s+)?[^:\s][^:]*님이\s+나갔습니다\.?$`)},
		{NoiseDeleted, regexp.MustCompile(`^` + stamp + `,\s+[^:]+?\s+:\s+삭제된\s+메시지입니다\.?$`)},
		{NoiseBot, regexp.MustCompile(`^` + stamp + `,\s+오픈채팅봇\s+:\s+.+$`)},
		{NoiseMedia, regexp.MustCompile(`^` + stamp + `,\s+[^:]+?\s+:\s+(?:사진(?:\s+\d+장)?|동영상|이모티콘)$`)},
		{NoiseDateOnly, regexp.MustCompile(`^` + stamp + `$`)},
	}

	reSeparator = regexp.MustCompile(`^-{3,}\s*(\d{4})년\s*(\d{1,2})월\s*(\d{1,2})일(?:\s*\S+요일)?\s*-{3,}$`)
	reLongDate  = regexp.MustCompile(`^(\d{4})년\s*(\d{1,2})월\s*(\d{1,2})일`)
	reClock     = regexp.MustCompile(`(?:(오전|오후)\s*)?(\d{1,2}):(\d{2})(?:\s*(오전|오후))?`)
)

// Line is the derived view of one chat line; it is recomputed on demand and never stored
type Line struct {
	Raw     string
	Noise   NoiseKind
	Header  bool   // line opens a message (timestamp + speaker)
	Speaker string // empty for continuation lines
	Body    string
	Date    string // YYYY-MM-DD when the line carries a date
	Time    string // HH:MM, 24h
	Seller  bool
}

// Classifier applies a rule pack; it holds no mutable state and is safe for concurrent use
type Classifier struct {
	pack *rulepack.Pack
}

// New returns a Classifier over p
func New(p *rulepack.Pack) *Classifier {
	if p == nil {
		panic("classify: nil rule pack")
	}
	return &Classifier{pack: p}
}

// Default returns a Classifier over the embedded rule pack
func Default() *Classifier { return New(rulepack.MustLoad()) }

// Classify derives the Line view of raw
func (c *Classifier) Classify(raw string) Line {
	line := strings.TrimSpace(raw)
	out := Line{Raw: raw, Noise: NoiseOf(line)}

	if m := reHeader.FindStringSubmatch(line); m != nil {
		out.Header = true
		out.Date = isoDate(m[1], m[2], m[3])
		out.Time = clock(m[4], m[5], m[6])
		out.Speaker = strings.TrimSpace(m[7])
		out.Body = strings.TrimSpace(m[8])
		out.Seller = c.IsSeller(out.Speaker)
		return out
	}
	if d, ok := SeparatorDate(line); ok {
		out.Date = d
		return out
	}
	if out.Noise == NoiseDateOnly {
		out.Date, _ = ParseDate(line)
		out.Time, _ = ParseTime(line)
	}
	out.Body = line
	return out
}

// NoiseOf returns the first noise category whose grammar matches the whole trimmed line
func NoiseOf(line string) NoiseKind {
	line = strings.TrimSpace(line)
	if line == "" {
		return NoiseNone
	}
	for _, r := range noiseRules {
		if r.re.MatchString(line) {
			return r.kind
		}
	}
	return NoiseNone
}

// IsSeller reports whether a speaker is a seller or operator
// Phone-tail nicknames ("크림 2821", "3563") are customers before any other rule applies
func (c *Classifier) IsSeller(speaker string) bool {
	s := rulepack.Fold(speaker)
	if s == "" || c.pack.CustomerTail.MatchString(s) {
		return false
	}
	if _, ok := c.pack.SellerAliases[s]; ok {
		return true
	}
	for _, f := range c.pack.SellerFragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	for _, k := range c.pack.SellerKeywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// SeparatorDate reports the ISO date of a "--------------- 2025년 1월 2일 목요일 ---------------" line
func SeparatorDate(line string) (string, bool) {
	m := reSeparator.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	d := isoDate(m[1], m[2], m[3])
	return d, d != ""
}

// InlineDate reports the ISO date of a message header line
func InlineDate(line string) (string, bool) {
	m := reHeader.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	d := isoDate(m[1], m[2], m[3])
	return d, d != ""
}

// ParseDate normalizes "2025-01-02" or "2025년 1월 2일" to "2025-01-02"
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if m := reLongDate.FindStringSubmatch(s); m != nil {
		if d := isoDate(m[1], m[2], m[3]); d != "" {
			return d, nil
		}
		return "", fmt.Errorf("invalid calendar date %q", s)
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return "", fmt.Errorf("unrecognized date %q", s)
	}
	return t.Format(time.DateOnly), nil
}

// ParseTime extracts a 24h "HH:MM" from text like "오후 3:05" or "3:05 오후"
func ParseTime(s string) (string, bool) {
	m := reClock.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	ampm := m[1]
	if ampm == "" {
		ampm = m[4]
	}
	t := clock(ampm, m[2], m[3])
	return t, t != ""
}

func isoDate(y, m, d string) string {
	t, err := time.Parse("2006-1-2", y+"-"+m+"-"+d)
	if err != nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func clock(ampm, h, m string) string {
	hour, err := strconv.Atoi(h)
	if err != nil {
		return ""
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute > 59 {
		return ""
	}
	switch {
	case ampm == "오후" && hour < 12:
		hour += 12
	case ampm == "오전" && hour == 12:
		hour = 0
	}
	if hour > 23 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
