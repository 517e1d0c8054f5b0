// Package bind decodes and validates JSON request bodies.
package bind

import (
	"bufio"
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
	entrans "github.com/go-playground/validator/v10/translations/en"

	perr "scandesk/internal/platform/errors"
)

// MaxBytes caps a request body; anything past it reads as truncated JSON.
const MaxBytes = 1 << 20

var (
	once     sync.Once
	validate *validator.Validate
	trans    ut.Translator
)

func setup() {
	once.Do(func() {
		loc := en.New()
		trans, _ = ut.New(loc, loc).GetTranslator("en")

		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonName)
		_ = entrans.RegisterDefaultTranslations(validate, trans)
		shortMessage("min", "{0} must be at least {1}")
		shortMessage("max", "{0} must be at most {1}")
	})
}

// jsonName reports fields by their wire name.
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func shortMessage(tag, text string) {
	_ = validate.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// ParseJSON decodes the body into T and validates it. Unknown fields and
// trailing data are rejected. An empty body is a zero T for GET, DELETE, HEAD
// and OPTIONS and an error otherwise.
func ParseJSON[T any](r *http.Request) (T, error) {
	var out T
	defer r.Body.Close()

	body := bufio.NewReader(io.LimitReader(r.Body, MaxBytes))
	if _, err := body.Peek(1); err != nil {
		switch r.Method {
		case http.MethodGet, http.MethodDelete, http.MethodHead, http.MethodOptions:
			return out, nil
		}
		return out, perr.JSONErrf("empty body")
	}

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return out, perr.JSONErrf("unexpected trailing data")
	}
	return out, Validate(out)
}

// Validate checks v's validate tags. Non-struct values pass.
func Validate(v any) error {
	if reflect.Indirect(reflect.ValueOf(v)).Kind() != reflect.Struct {
		return nil
	}
	setup()
	err := validate.Struct(v)
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return err
	}
	fe := fields[0]
	return perr.WithField(perr.New(perr.ErrorCodeValidation, fe.Translate(trans)), fe.Field())
}
