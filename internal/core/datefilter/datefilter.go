// Package datefilter restricts a transcript to an inclusive calendar window
package datefilter

import (
	"strings"

	"orderlens/internal/core/classify"
	perr "orderlens/internal/platform/errors"
)

// NoDataMessage is the user-facing sentinel text for an empty window
const NoDataMessage = "지정된 날짜 범위에 해당하는 대화가 없습니다."

// ErrNoData is returned when a window matches no lines
var ErrNoData = perr.New(perr.ErrorCodeNoData, NoDataMessage)

// Window is a normalized inclusive [Start, End] range; empty bounds are open
type Window struct {
	Start string
	End   string
}

// Open reports whether neither bound is set
func (w Window) Open() bool { return w.Start == "" && w.End == "" }

// Contains reports whether an ISO date lies in the window
func (w Window) Contains(date string) bool {
	if date == "" {
		return false
	}
	return (w.Start == "" || date >= w.Start) && (w.End == "" || date <= w.End)
}

// ParseWindow normalizes ISO or long-form Korean bounds
func ParseWindow(start, end string) (Window, error) {
	var w Window
	var err error
	if strings.TrimSpace(start) != "" {
		if w.Start, err = classify.ParseDate(start); err != nil {
			return w, perr.WithField(perr.InvalidArgf("invalid start date %q", start), "start_date")
		}
	}
	if strings.TrimSpace(end) != "" {
		if w.End, err = classify.ParseDate(end); err != nil {
			return w, perr.WithField(perr.InvalidArgf("invalid end date %q", end), "end_date")
		}
	}
	if w.Start != "" && w.End != "" && w.Start > w.End {
		return w, perr.WithField(perr.InvalidArgf("start date %s is after end date %s", w.Start, w.End), "start_date")
	}
	return w, nil
}

// Filter keeps lines whose owning date is inside [start, end]
// Every line belongs to the most recent separator or message timestamp; lines
// before the first date are dropped once a bound is given. With no bounds the
// text passes through unchanged. An empty result is ErrNoData
func Filter(text, start, end string) (string, error) {
	w, err := ParseWindow(start, end)
	if err != nil {
		return "", err
	}
	return w.Apply(text)
}

// Apply runs the filter for an already parsed window
func (w Window) Apply(text string) (string, error) {
	if w.Open() {
		return text, nil
	}
	var (
		kept     []string
		current  string
		nonBlank bool
	)
	for _, line := range strings.Split(text, "\n") {
		if d, ok := classify.SeparatorDate(line); ok {
			current = d
		} else if d, ok := classify.InlineDate(line); ok {
			current = d
		}
		if w.Contains(current) {
			kept = append(kept, line)
			nonBlank = nonBlank || strings.TrimSpace(line) != ""
		}
	}
	if !nonBlank {
		return "", ErrNoData
	}
	return strings.Join(kept, "\n"), nil
}
