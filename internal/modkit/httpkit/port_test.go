package httpkit

import (
	"errors"
	"net/http"
	"testing"

	perrs "scandesk/internal/platform/errors"
)

func TestPort_Parse(t *testing.T) {
	t.Parallel()

	parse := func(tok string) (string, error) {
		if tok == "s3cret" {
			return "dock-3", nil
		}
		return "", errors.New("unknown token")
	}

	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{name: "missing header"},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "empty token", header: "Bearer   \t "},
		{name: "unknown token", header: "Bearer nope"},
		{name: "valid", header: "Bearer s3cret", want: "dock-3", ok: true},
		{name: "scheme is case insensitive", header: "  bearer s3cret ", want: "dock-3", ok: true},
		{name: "no space after scheme", header: "Bearers3cret", want: "dock-3", ok: true},
	}
	p := NewPortFunc(parse)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			got, err := p.Parse(req)
			if !tc.ok {
				var pe *perrs.Error
				if !errors.As(err, &pe) || pe.Code() != perrs.ErrorCodeUnauthorized {
					t.Fatalf("expected unauthorized, got %#v", err)
				}
				if got != "" {
					t.Fatalf("expected empty operator, got %q", got)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("Parse = %q, %v; want %q", got, err, tc.want)
			}
		})
	}
}

func TestPort_Parse_NilParser(t *testing.T) {
	t.Parallel()

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	if _, err := NewPortFunc(nil).Parse(req); err == nil {
		t.Fatalf("expected error with nil parser")
	}
}

func TestPort_Parse_EmptyOperatorRejected(t *testing.T) {
	t.Parallel()

	p := NewPortFunc(func(string) (string, error) { return "", nil })
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	if _, err := p.Parse(req); err == nil {
		t.Fatalf("expected error for empty operator")
	}
}
