package module

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"scandesk/internal/core/router"
	"scandesk/internal/core/scan"
	modkit "scandesk/internal/modkit"
	"scandesk/internal/platform/config"
	phttp "scandesk/internal/platform/net/http"
	"scandesk/internal/services/station/domain"
)

func TestFromConfig_Defaults(t *testing.T) {
	o := FromConfig(config.New())
	if o.Scan != scan.DefaultOptions() {
		t.Fatalf("scan = %+v", o.Scan)
	}
	if o.Router.ScanningPrefix != router.DefaultScanningPrefix || o.Router.FoldWidth {
		t.Fatalf("router = %+v", o.Router)
	}
	if o.FeedSize != 256 || o.IdleTTL != 30*time.Minute || o.ManualTimeout != 25*time.Second || o.MaxStations != 0 {
		t.Fatalf("station opts = %+v", o)
	}
}

func TestFromConfig_Env(t *testing.T) {
	t.Setenv("SCAN_SPEED_THRESHOLD", "80ms")
	t.Setenv("SCAN_MIN_LENGTH", "6")
	t.Setenv("SCAN_DEBUG_MODE", "true")
	t.Setenv("SCAN_FAST_RATIO", "0.9")
	t.Setenv("SCAN_ROUTER_FOLD_WIDTH", "true")
	t.Setenv("SCAN_SCANNING_PREFIX", "/dock")
	t.Setenv("STATION_FEED_SIZE", "32")
	t.Setenv("STATION_MAX", "4")
	t.Setenv("STATION_IDLE_TTL", "bogus")

	o := FromConfig(config.New())
	if o.Scan.SpeedThreshold != 80*time.Millisecond || o.Scan.MinScanLength != 6 || !o.Scan.DebugMode || o.Scan.FastRatio != 0.9 {
		t.Fatalf("scan = %+v", o.Scan)
	}
	if !o.Router.FoldWidth || o.Router.ScanningPrefix != "/dock" {
		t.Fatalf("router = %+v", o.Router)
	}
	if o.FeedSize != 32 || o.MaxStations != 4 {
		t.Fatalf("station opts = %+v", o)
	}
	if o.IdleTTL != 30*time.Minute {
		t.Fatalf("invalid ttl should fall back, got %v", o.IdleTTL)
	}
}

func TestFromConfig_OutOfRangeNormalized(t *testing.T) {
	t.Setenv("SCAN_PERCENTILE", "3")
	t.Setenv("SCAN_MIN_LENGTH", "-1")
	so, _ := ScanFromConfig(config.New())
	if so.Percentile != scan.DefaultPercentile || so.MinScanLength != scan.DefaultMinScanLength {
		t.Fatalf("normalized = %+v", so)
	}
}

func TestModule_MountsAndExposesPorts(t *testing.T) {
	m := New(modkit.Deps{}, Options{MaxStations: 1})

	if m.Name() != "stations" {
		t.Fatalf("name = %q", m.Name())
	}
	p, ok := modkit.PortsOf[Ports](m)
	if !ok || p.Stations == nil || p.Janitor == nil {
		t.Fatalf("ports = %+v", p)
	}

	mux := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(mux))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res, err := http.Post(srv.URL+"/stations", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	_ = res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", res.StatusCode)
	}

	if _, err := p.Stations.Create(context.Background(), domain.CreateInput{}); err == nil {
		t.Fatalf("expected station limit")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Janitor(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("janitor did not stop")
	}
	list, _ := p.Stations.List(context.Background())
	if len(list) != 0 {
		t.Fatalf("janitor left %d stations open", len(list))
	}
}

func TestParseOperatorTokens(t *testing.T) {
	got := parseOperatorTokens([]string{"dock-3:s3cret", " kiosk : abc ", "nocolon", ":empty", "blank:"})
	if len(got) != 2 || got["s3cret"] != "dock-3" || got["abc"] != "kiosk" {
		t.Fatalf("tokens = %v", got)
	}
	if operatorPort(nil) != nil {
		t.Fatalf("empty token set should leave routes open")
	}
}

func TestFromConfig_OperatorTokens(t *testing.T) {
	t.Setenv("STATION_OPERATOR_TOKENS", "dock-3:s3cret,dock-4:t0ken")
	o := FromConfig(config.New())
	if len(o.OperatorTokens) != 2 || o.OperatorTokens["t0ken"] != "dock-4" {
		t.Fatalf("tokens = %v", o.OperatorTokens)
	}
}

func TestModule_OperatorTokensProtectRoutes(t *testing.T) {
	m := New(modkit.Deps{}, Options{OperatorTokens: map[string]string{"s3cret": "dock-3"}})
	mux := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(mux))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	post := func(token string) *http.Response {
		t.Helper()
		req, _ := http.NewRequest("POST", srv.URL+"/stations", strings.NewReader(`{"path":"/dock"}`))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		res, err := srv.Client().Do(req)
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		return res
	}

	for _, tok := range []string{"", "wrong"} {
		res := post(tok)
		_ = res.Body.Close()
		if res.StatusCode != http.StatusUnauthorized {
			t.Fatalf("token %q status = %d", tok, res.StatusCode)
		}
	}

	res := post("s3cret")
	var env struct {
		Data domain.StationView `json:"data"`
	}
	err := json.NewDecoder(res.Body).Decode(&env)
	_ = res.Body.Close()
	if err != nil || res.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d err = %v", res.StatusCode, err)
	}
	if env.Data.OpenedBy != "dock-3" {
		t.Fatalf("opened_by = %q", env.Data.OpenedBy)
	}

	p := modkit.MustPortsOf[Ports](m)
	list, _ := p.Stations.List(context.Background())
	for _, st := range list {
		_ = p.Stations.Close(context.Background(), st.ID)
	}
}

func TestBearerDocs_MarksStationOperations(t *testing.T) {
	spec := map[string]any{
		"paths": map[string]any{
			"/stations":      map[string]any{"get": map[string]any{}},
			"/stations/{id}": map[string]any{"delete": map[string]any{}},
			"/meta/health":   map[string]any{"get": map[string]any{}},
		},
	}
	bearerDocs(spec)

	schemes := spec["components"].(map[string]any)["securitySchemes"].(map[string]any)
	if _, ok := schemes["operatorToken"]; !ok {
		t.Fatalf("securitySchemes = %v", schemes)
	}
	paths := spec["paths"].(map[string]any)
	for _, p := range []string{"/stations", "/stations/{id}"} {
		for _, op := range paths[p].(map[string]any) {
			if _, ok := op.(map[string]any)["security"]; !ok {
				t.Fatalf("%s has no security", p)
			}
		}
	}
	if _, ok := paths["/meta/health"].(map[string]any)["get"].(map[string]any)["security"]; ok {
		t.Fatalf("meta route should stay open")
	}
}
