package datefilter

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"orderlens/internal/core/classify"
	perr "orderlens/internal/platform/errors"
)

// fiveDays builds a transcript covering 2025-01-01..2025-01-05
func fiveDays(withSeparators bool) string {
	var b []string
	b = append(b, "Talk_2025.1.6 저장한 날짜 : 2025년 1월 6일 오전 9:00")
	for d := 1; d <= 5; d++ {
		if withSeparators {
			b = append(b, fmt.Sprintf("--------------- 2025년 1월 %d일 ---------------", d))
		}
		b = append(b,
			fmt.Sprintf("2025년 1월 %d일 오전 10:00, 크림 2821 : 곰탕 %d개", d, d),
			fmt.Sprintf("2025년 1월 %d일 오후 1:00, 해피맘 : 오란다 1개", d),
			"추가로 하나 더요",
		)
	}
	return strings.Join(b, "\n")
}

// owningDates maps each kept line back to the day it belongs to
func owningDates(t *testing.T, text string) map[string]bool {
	t.Helper()
	out := map[string]bool{}
	cur := ""
	for _, line := range strings.Split(text, "\n") {
		if d, ok := classify.SeparatorDate(line); ok {
			cur = d
		} else if d, ok := classify.InlineDate(line); ok {
			cur = d
		}
		if cur == "" {
			t.Fatalf("undated line kept: %q", line)
		}
		out[cur] = true
	}
	return out
}

func TestFilterWindow(t *testing.T) {
	t.Parallel()
	for _, seps := range []bool{true, false} {
		got, err := Filter(fiveDays(seps), "2025-01-02", "2025년 1월 3일")
		if err != nil {
			t.Fatalf("Filter: %v", err)
		}
		days := owningDates(t, got)
		if len(days) != 2 || !days["2025-01-02"] || !days["2025-01-03"] {
			t.Fatalf("separators=%v kept days %v", seps, days)
		}
		if strings.Count(got, "추가로 하나 더요") != 2 {
			t.Fatalf("continuation lines must follow their day:\n%s", got)
		}
		if strings.Contains(got, "저장한 날짜") {
			t.Fatalf("line before any marker must be excluded")
		}
	}
}

func TestFilterNoOverlap(t *testing.T) {
	t.Parallel()
	_, err := Filter(fiveDays(true), "2025-06-01", "2025-06-02")
	if !errors.Is(err, ErrNoData) || !perr.IsCode(err, perr.ErrorCodeNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if err.Error() != NoDataMessage {
		t.Fatalf("sentinel text = %q", err.Error())
	}
}

func TestFilterOpenBounds(t *testing.T) {
	t.Parallel()
	src := fiveDays(true)
	got, err := Filter(src, "", "")
	if err != nil || got != src {
		t.Fatalf("no bounds must pass through unchanged")
	}

	got, err = Filter(src, "2025-01-04", "")
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	days := owningDates(t, got)
	if len(days) != 2 || !days["2025-01-05"] {
		t.Fatalf("start-only window kept %v", days)
	}

	got, err = Filter(src, "", "2025-01-01")
	if err != nil || len(owningDates(t, got)) != 1 {
		t.Fatalf("end-only window: %v %q", err, got)
	}
}

func TestFilterBadBounds(t *testing.T) {
	t.Parallel()
	cases := [][2]string{{"yesterday", ""}, {"", "2025-13-01"}, {"2025-01-05", "2025-01-01"}}
	for _, c := range cases {
		_, err := Filter("x", c[0], c[1])
		if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
			t.Fatalf("%v: expected invalid argument, got %v", c, err)
		}
	}
}
