package swaggerkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	phttp "scandesk/internal/platform/net/http"
)

func fetchSpec(t *testing.T, enabled bool) (int, map[string]any) {
	t.Helper()
	mux := chi.NewRouter()
	r := phttp.AdaptChi(mux)
	noop := func(w http.ResponseWriter, _ *http.Request) {}
	r.Get("/api/v1/stations/{id}", noop)
	r.Post("/api/v1/stations/{id}/keys", noop)
	r.Get("/api/v1/", noop)
	r.Get("/debug/pprof/*", noop)
	Mount(r, enabled)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/docs/doc.json", nil))
	if rec.Code != http.StatusOK {
		return rec.Code, nil
	}
	var spec map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("decode spec: %v", err)
	}
	return rec.Code, spec
}

func TestDocJSON_BuildsPathsFromRoutes(t *testing.T) {
	code, spec := fetchSpec(t, true)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if spec["openapi"] != "3.0.3" {
		t.Fatalf("openapi = %v", spec["openapi"])
	}
	info := spec["info"].(map[string]any)
	if info["title"] != "Scandesk API" {
		t.Fatalf("title = %v", info["title"])
	}

	paths := spec["paths"].(map[string]any)
	if _, ok := paths["/debug/pprof/*"]; ok {
		t.Fatalf("unversioned route leaked into spec")
	}
	get, ok := paths["/stations/{id}"].(map[string]any)["get"].(map[string]any)
	if !ok {
		t.Fatalf("paths = %v", paths)
	}
	params := get["parameters"].([]any)
	if len(params) != 1 || params[0].(map[string]any)["name"] != "id" {
		t.Fatalf("params = %v", params)
	}
	resps := get["responses"].(map[string]any)
	for _, want := range []string{"200", "400", "500"} {
		if _, ok := resps[want]; !ok {
			t.Fatalf("missing %s response: %v", want, resps)
		}
	}
	if _, ok := paths["/stations/{id}/keys"].(map[string]any)["post"]; !ok {
		t.Fatalf("missing keys route")
	}
	if _, ok := paths["/"]; !ok {
		t.Fatalf("api root not folded to /")
	}
}

func TestDocJSON_MutatorsApply(t *testing.T) {
	saved := mutators
	t.Cleanup(func() { mutators = saved })

	Register(nil)
	Register(func(spec map[string]any) { spec["x-station"] = true })
	_, spec := fetchSpec(t, true)
	if spec["x-station"] != true {
		t.Fatalf("mutator not applied")
	}
}

func TestMount_Disabled(t *testing.T) {
	if code, _ := fetchSpec(t, false); code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
}

func TestMount_TitleSuffixAndErrorSchema(t *testing.T) {
	t.Setenv("CORE_API_DOCS_TITLE_SUFFIX", "(staging)")
	_, spec := fetchSpec(t, true)
	if spec["info"].(map[string]any)["title"] != "Scandesk API (staging)" {
		t.Fatalf("info = %v", spec["info"])
	}
	if s := spec["servers"].([]any); len(s) != 1 || s[0].(map[string]any)["url"] != apiBase {
		t.Fatalf("servers = %v", s)
	}
	schemas := spec["components"].(map[string]any)["schemas"].(map[string]any)
	if _, ok := schemas["ErrorResponse"]; !ok {
		t.Fatalf("schemas = %v", schemas)
	}
	redirect := httptest.NewRecorder()
	mux := chi.NewRouter()
	Mount(phttp.AdaptChi(mux), true)
	mux.ServeHTTP(redirect, httptest.NewRequest("GET", "/api/docs", nil))
	if redirect.Code != http.StatusPermanentRedirect {
		t.Fatalf("redirect = %d", redirect.Code)
	}
}
