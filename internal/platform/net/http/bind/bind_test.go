package bind

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "orderlens/internal/platform/errors"
)

type payload struct {
	Name  string `json:"name" validate:"required,notblank"`
	Label string `json:"label,omitempty" validate:"omitempty,max=4"`
	Count int    `json:"count"`
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestParseJSON(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name  string
		body  string
		opt   Options
		code  perr.ErrorCode
		field string
	}{
		{"ok", `{"name":"곰탕","count":2}`, Options{Strict: true}, 0, ""},
		{"empty", "  ", Options{}, perr.ErrorCodeJSON, ""},
		{"syntax", `{"name":`, Options{}, perr.ErrorCodeJSON, ""},
		{"trailing", `{"name":"a"} {"name":"b"}`, Options{}, perr.ErrorCodeJSON, ""},
		{"unknown strict", `{"name":"a","x":1}`, Options{Strict: true}, perr.ErrorCodeJSON, ""},
		{"unknown lax", `{"name":"a","x":1}`, Options{}, 0, ""},
		{"too big", `{"name":"abcdefgh"}`, Options{MaxBytes: 8}, perr.ErrorCodeInvalidArgument, ""},
		{"required", `{"count":1}`, Options{}, perr.ErrorCodeValidation, "name"},
		{"blank", `{"name":"  \t"}`, Options{}, perr.ErrorCodeValidation, "name"},
		{"max", `{"name":"a","label":"toolong"}`, Options{}, perr.ErrorCodeValidation, "label"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseJSON[payload](post(c.body), c.opt)
			if c.code == 0 {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				if got.Name == "" {
					t.Fatalf("payload not decoded: %+v", got)
				}
				return
			}
			if !perr.IsCode(err, c.code) {
				t.Fatalf("err = %v, want code %v", err, c.code)
			}
			if w := perr.WireFrom(err); w.Field != c.field {
				t.Fatalf("field = %q, want %q", w.Field, c.field)
			}
		})
	}
}

func TestMessagesUseJSONNames(t *testing.T) {
	t.Parallel()
	err := Struct(payload{Name: " "})
	if w := perr.WireFrom(err); w.Message != "name must not be blank" {
		t.Fatalf("message = %q", w.Message)
	}
	err = Struct(payload{Name: "a", Label: "abcdef"})
	if w := perr.WireFrom(err); w.Message != "label must be at most 4 long" {
		t.Fatalf("message = %q", w.Message)
	}
	if !perr.IsCode(Struct(3), perr.ErrorCodeValidation) {
		t.Fatal("non-struct should fail validation")
	}
}
