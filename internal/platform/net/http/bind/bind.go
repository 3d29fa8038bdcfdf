// Package bind decodes request bodies and runs struct validation, turning both
// kinds of failure into project errors with the offending field attached
package bind

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	entrans "github.com/go-playground/validator/v10/translations/en"

	perr "orderlens/internal/platform/errors"
)

// DefaultMaxBytes caps a body when Options.MaxBytes is zero
const DefaultMaxBytes = 1 << 20

// Options tune ParseJSON
type Options struct {
	MaxBytes int64
	Strict   bool // reject unknown fields
}

type checker struct {
	v  *validator.Validate
	tr ut.Translator
}

// short english messages; the stock ones are wordy
var messages = map[string]string{
	"required": "{0} is required",
	"notblank": "{0} must not be blank",
	"max":      "{0} must be at most {1} long",
}

var validate = sync.OnceValue(func() checker {
	loc := en.New()
	tr, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = entrans.RegisterDefaultTranslations(v, tr)
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	for tag, text := range messages {
		_ = v.RegisterTranslation(tag, tr,
			func(t ut.Translator) error { return t.Add(tag, text, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				s, _ := t.T(tag, fe.Field(), fe.Param())
				return s
			})
	}
	return checker{v: v, tr: tr}
})

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "", "-":
		return f.Name
	}
	return name
}

// ParseJSON reads one JSON value into T and validates it
func ParseJSON[T any](r *http.Request, o Options) (T, error) {
	var out T
	limit := o.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	switch {
	case err != nil:
		return out, perr.Wrap(err, perr.ErrorCodeJSON, "read body")
	case int64(len(body)) > limit:
		return out, perr.InvalidArgf("body exceeds %d bytes", limit)
	case len(bytes.TrimSpace(body)) == 0:
		return out, perr.JSONErrf("empty body")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if o.Strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&out); err != nil {
		return out, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return out, perr.JSONErrf("unexpected data after the JSON value")
	}
	return out, Struct(out)
}

// Struct validates v; the first failing field becomes the error's field
func Struct(v any) error {
	c := validate()
	err := c.v.Struct(v)
	var fields validator.ValidationErrors
	switch {
	case err == nil:
		return nil
	case errors.As(err, &fields) && len(fields) > 0:
		fe := fields[0]
		return perr.WithField(perr.New(perr.ErrorCodeValidation, fe.Translate(c.tr)), fe.Field())
	default:
		// non-struct input
		return perr.Wrap(err, perr.ErrorCodeValidation, "validation")
	}
}
