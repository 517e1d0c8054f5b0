package httpkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	perrs "scandesk/internal/platform/errors"
	phttp "scandesk/internal/platform/net/http"
)

type noteIn struct {
	Text string `json:"text" validate:"required"`
}

func newRouter() Router { return phttp.AdaptChi(chi.NewRouter()) }

func do(t *testing.T, r Router, method, path, body string) (int, Envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	var env Envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return rec.Code, env
}

func TestRoutes(t *testing.T) {
	r := newRouter()
	Get(r, "/notes/{id}", func(req *http.Request) (any, error) {
		n, err := QueryInt(req, "n", 1)
		if err != nil {
			return nil, err
		}
		after, err := QueryUint64(req, "after", 0)
		if err != nil {
			return nil, err
		}
		return map[string]any{"id": Param(req, "id"), "n": n, "after": after}, nil
	})
	Post(r, "/notes/{id}/pin", func(*http.Request) (any, error) { return nil, perrs.NotFoundf("no note") })
	Delete(r, "/notes/{id}", func(*http.Request) (any, error) { return NoContent(), nil })
	PostJSON(r, "/notes", func(_ *http.Request, in noteIn) (any, error) { return Created(in.Text), nil })
	PutJSON(r, "/notes/{id}", func(_ *http.Request, in noteIn) (any, error) { return in.Text, nil })

	cases := []struct {
		method, path, body string
		status             int
	}{
		{"GET", "/notes/n1?n=3&after=9", "", http.StatusOK},
		{"GET", "/notes/n1?n=x", "", http.StatusUnprocessableEntity},
		{"POST", "/notes/n1/pin", "", http.StatusNotFound},
		{"DELETE", "/notes/n1", "", http.StatusNoContent},
		{"POST", "/notes", `{"text":"hi"}`, http.StatusCreated},
		{"POST", "/notes", `{}`, http.StatusBadRequest},
		{"PUT", "/notes/n1", `{"text":"edit"}`, http.StatusOK},
		{"PUT", "/notes/n1", ``, http.StatusBadRequest},
	}
	for _, c := range cases {
		if status, env := do(t, r, c.method, c.path, c.body); status != c.status {
			t.Fatalf("%s %s = %d (%+v), want %d", c.method, c.path, status, env, c.status)
		}
	}

	_, env := do(t, r, "GET", "/notes/n1?n=3&after=9", "")
	data, _ := env.Data.(map[string]any)
	if data["id"] != "n1" || data["n"] != float64(3) || data["after"] != float64(9) {
		t.Fatalf("data = %v", env.Data)
	}
}
