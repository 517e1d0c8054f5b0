package httpkit

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	perrs "scandesk/internal/platform/errors"
)

func TestProtected(t *testing.T) {
	port := NewPortFunc(func(tok string) (string, error) {
		if tok == "s3cret" {
			return "dock-3", nil
		}
		return "", errors.New("unknown")
	})
	r := newRouter()
	Get(r, "/open", func(req *http.Request) (any, error) { return User(req) })
	Protected(r, port, func(g Router) {
		Get(g, "/mine", func(req *http.Request) (any, error) { return User(req) })
	})
	Protected(r, nil, func(g Router) {
		Get(g, "/anyone", func(*http.Request) (any, error) { return "ok", nil })
	})

	cases := []struct {
		path, token string
		status      int
		data        any
	}{
		{"/mine", "s3cret", http.StatusOK, "dock-3"},
		{"/mine", "nope", http.StatusUnauthorized, nil},
		{"/mine", "", http.StatusUnauthorized, nil},
		{"/open", "s3cret", http.StatusUnauthorized, nil},
		{"/anyone", "", http.StatusOK, "ok"},
	}
	for _, c := range cases {
		req := httptest.NewRequest("GET", c.path, nil)
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, req)
		if rec.Code != c.status {
			t.Fatalf("%s with %q = %d, want %d", c.path, c.token, rec.Code, c.status)
		}
		var env Envelope
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if env.Data != c.data {
			t.Fatalf("%s data = %v, want %v", c.path, env.Data, c.data)
		}
	}
}

func TestUser_Missing(t *testing.T) {
	_, err := User(httptest.NewRequest("GET", "/", nil))
	if !perrs.IsCode(err, perrs.ErrorCodeUnauthorized) {
		t.Fatalf("err = %v", err)
	}
}
