package rulepack

import (
	"strings"
	"testing"
)

func TestLoadEmbedded(t *testing.T) {
	t.Parallel()
	p, err := Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	if p.Version == 0 {
		t.Fatalf("expected non-zero version")
	}
	if _, ok := p.SellerAliases["우국상 신검단"]; !ok {
		t.Fatalf("alias missing")
	}
	if len(p.Categories) != 10 {
		t.Fatalf("categories = %d, want 10", len(p.Categories))
	}
	if !p.CustomerTail.MatchString("크림 2821") || p.CustomerTail.MatchString("머슴") {
		t.Fatalf("customer tail rule mismatch")
	}
	if _, ok := p.Items.Stop["마감"]; !ok || p.Items.MinLen != 2 || p.Items.MaxLen != 50 {
		t.Fatalf("item rules mismatch: %+v", p.Items)
	}
	if MustLoad() != p {
		t.Fatalf("Load must return the shared pack")
	}
}

func TestParseRejectsBrokenFiles(t *testing.T) {
	t.Parallel()
	base := string(Embedded())
	cases := map[string]string{
		"yaml":     "version: [",
		"version":  strings.Replace(base, "version: 3", "version: 0", 1),
		"regex":    strings.Replace(base, `customer_tail: '^\d{4}|\d{4}$'`, `customer_tail: '(('`, 1),
		"empty":    strings.Replace(base, `customer_tail: '^\d{4}|\d{4}$'`, `customer_tail: ''`, 1),
		"category": strings.Replace(base, "- name: 곰탕", "- name: ''", 1),
	}
	for name, src := range cases {
		if _, err := Parse([]byte(src)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestFold(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]string{" [공지] ": "공지", "[ManAger]": "manager", "머슴": "머슴"} {
		if got := Fold(in); got != want {
			t.Fatalf("Fold(%q) = %q, want %q", in, got, want)
		}
	}
}
