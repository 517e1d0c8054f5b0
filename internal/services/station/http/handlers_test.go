package http

import (
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"scandesk/internal/modkit/httpkit"
	phttp "scandesk/internal/platform/net/http"
	"scandesk/internal/services/station/domain"
	"scandesk/internal/services/station/service"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Error      string          `json:"error"`
	Data       json.RawMessage `json:"data"`
}

func newServer(t *testing.T, cfg service.Config) (*httptest.Server, *service.Svc) {
	t.Helper()
	svc := service.New(cfg, nil)
	r := phttp.AdaptChi(chi.NewRouter())
	r.Route("/stations", func(rr httpkit.Router) { Register(rr, svc) })
	srv := httptest.NewServer(r.Mux())
	t.Cleanup(func() {
		srv.Close()
		svc.Registry().CloseAll()
	})
	return srv, svc
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, envelope) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := stdhttp.NewRequest(method, srv.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer func() { _ = res.Body.Close() }()

	var env envelope
	raw, _ := io.ReadAll(res.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	}
	return res.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return v
}

func create(t *testing.T, srv *httptest.Server, body string) domain.StationView {
	t.Helper()
	code, env := do(t, srv, "POST", "/stations", body)
	if code != stdhttp.StatusCreated {
		t.Fatalf("create status = %d (%s)", code, env.Error)
	}
	return decode[domain.StationView](t, env)
}

func TestStations_Lifecycle(t *testing.T) {
	srv, _ := newServer(t, service.Config{})

	st := create(t, srv, `{"path":"/dashboard"}`)
	if st.Path != "/dashboard" || st.Ownership != "GLOBAL" {
		t.Fatalf("created = %+v", st)
	}

	code, env := do(t, srv, "GET", "/stations", "")
	if code != 200 {
		t.Fatalf("list status = %d", code)
	}
	if list := decode[[]domain.StationView](t, env); len(list) != 1 || list[0].ID != st.ID {
		t.Fatalf("list = %+v", list)
	}

	if code, _ := do(t, srv, "GET", "/stations/"+st.ID, ""); code != 200 {
		t.Fatalf("get status = %d", code)
	}
	if code, _ := do(t, srv, "DELETE", "/stations/"+st.ID, ""); code != stdhttp.StatusNoContent {
		t.Fatalf("delete status = %d", code)
	}
	if code, _ := do(t, srv, "GET", "/stations/"+st.ID, ""); code != stdhttp.StatusNotFound {
		t.Fatalf("get after delete status = %d", code)
	}
}

func TestStations_CreateValidation(t *testing.T) {
	srv, _ := newServer(t, service.Config{})
	if code, _ := do(t, srv, "POST", "/stations", `{"path":"dashboard"}`); code != stdhttp.StatusBadRequest {
		t.Fatalf("relative path status = %d", code)
	}
	if code, _ := do(t, srv, "POST", "/stations", `{"ownership":"KIOSK"}`); code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("unknown ownership status = %d", code)
	}
}

func TestStations_KeysAndEvents(t *testing.T) {
	srv, _ := newServer(t, service.Config{})
	st := create(t, srv, `{"path":"/dashboard"}`)

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC).UnixMilli()
	keys := []string{"T", "A", "C", "7", "Enter"}
	var last domain.VerdictView
	for i, k := range keys {
		body, _ := json.Marshal(domain.KeyInput{Key: k, TimestampMs: base + int64(i)*15})
		code, env := do(t, srv, "POST", "/stations/"+st.ID+"/keys", string(body))
		if code != 200 {
			t.Fatalf("key %s status = %d (%s)", k, code, env.Error)
		}
		last = decode[domain.VerdictView](t, env)
	}
	if !last.PreventDefault {
		t.Fatalf("enter verdict = %+v", last)
	}

	code, env := do(t, srv, "GET", "/stations/"+st.ID+"/events?after=0&limit=50", "")
	if code != 200 {
		t.Fatalf("events status = %d", code)
	}
	page := decode[domain.FeedPage](t, env)
	var sawScan, sawPreview bool
	for _, it := range page.Items {
		sawScan = sawScan || it.Kind == "scan"
		sawPreview = sawPreview || it.Kind == "preview"
	}
	if !sawScan || !sawPreview || page.Next != page.Items[len(page.Items)-1].Seq {
		t.Fatalf("page = %+v", page)
	}

	if code, _ := do(t, srv, "GET", "/stations/"+st.ID+"/events?after=x", ""); code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("bad cursor status = %d", code)
	}
	if code, _ := do(t, srv, "POST", "/stations/"+st.ID+"/keys", `{"key":""}`); code != stdhttp.StatusBadRequest {
		t.Fatalf("empty key status = %d", code)
	}
}

func TestStations_RouteAndOwnership(t *testing.T) {
	srv, _ := newServer(t, service.Config{})
	st := create(t, srv, `{}`)

	code, env := do(t, srv, "PUT", "/stations/"+st.ID+"/route", `{"path":"/scanning"}`)
	if code != 200 || decode[domain.StationView](t, env).Path != "/scanning" {
		t.Fatalf("route status = %d", code)
	}
	code, env = do(t, srv, "PUT", "/stations/"+st.ID+"/ownership", `{"context":"ARRIVAL_AUDIT"}`)
	if code != 200 {
		t.Fatalf("ownership status = %d (%s)", code, env.Error)
	}
	if ov := decode[domain.OwnershipView](t, env); ov.Previous != "GLOBAL" || ov.Active != "ARRIVAL_AUDIT" {
		t.Fatalf("ownership = %+v", ov)
	}
}

func TestStations_ManualScanSubmit(t *testing.T) {
	srv, svc := newServer(t, service.Config{})
	st := create(t, srv, `{}`)

	type result struct {
		code int
		env  envelope
	}
	done := make(chan result, 1)
	go func() {
		code, env := do(t, srv, "POST", "/stations/"+st.ID+"/manual-scan", "")
		done <- result{code, env}
	}()

	station, _ := svc.Registry().Get(st.ID)
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := station.Provider().Mailbox().Pending(); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("manual scan never pending")
		}
		time.Sleep(time.Millisecond)
	}

	if code, _ := do(t, srv, "POST", "/stations/"+st.ID+"/manual-scan", ""); code != stdhttp.StatusConflict {
		t.Fatalf("second manual scan status = %d", code)
	}
	if code, _ := do(t, srv, "POST", "/stations/"+st.ID+"/manual-scan/submit", `{"text":"TAC1001"}`); code != stdhttp.StatusNoContent {
		t.Fatalf("submit status = %d", code)
	}

	r := <-done
	if r.code != 200 {
		t.Fatalf("manual scan status = %d (%s)", r.code, r.env.Error)
	}
	if v := decode[domain.ManualScanView](t, r.env); v.Token != "TAC1001" || v.Source != "MANUAL" {
		t.Fatalf("manual scan = %+v", v)
	}
}

func TestStations_ManualScanTimeoutAndCancel(t *testing.T) {
	srv, _ := newServer(t, service.Config{})
	st := create(t, srv, `{}`)

	if code, _ := do(t, srv, "POST", "/stations/"+st.ID+"/manual-scan?timeout_ms=20", ""); code != stdhttp.StatusServiceUnavailable {
		t.Fatalf("timeout status = %d", code)
	}
	if code, _ := do(t, srv, "POST", "/stations/"+st.ID+"/manual-scan?timeout_ms=-1", ""); code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("negative timeout status = %d", code)
	}

	code, env := do(t, srv, "DELETE", "/stations/"+st.ID+"/manual-scan", "")
	if code != 200 || decode[domain.CancelView](t, env).Canceled {
		t.Fatalf("idle cancel = %d %s", code, env.Data)
	}
	if code, _ := do(t, srv, "POST", "/stations/"+st.ID+"/manual-scan/submit", `{"text":"X"}`); code != stdhttp.StatusNotFound {
		t.Fatalf("submit without pending status = %d", code)
	}
}

func TestStations_Inject(t *testing.T) {
	srv, _ := newServer(t, service.Config{})
	st := create(t, srv, `{"path":"/dashboard"}`)

	code, env := do(t, srv, "POST", "/stations/"+st.ID+"/inject", `{"data":"MNF-1","source":"BARCODE_SCANNER"}`)
	if code != 200 {
		t.Fatalf("inject status = %d (%s)", code, env.Error)
	}
	if v := decode[domain.InjectView](t, env); v.Delivered != 2 {
		t.Fatalf("delivered = %d", v.Delivered)
	}
	if code, _ := do(t, srv, "POST", "/stations/"+st.ID+"/inject", `{"data":"MNF-1","source":"rfid"}`); code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("bad source status = %d", code)
	}
}
