// Package http serves the /meta endpoints: liveness, readiness, build and
// the scanner tunables the station is running with.
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"scandesk/internal/core/version"
	"scandesk/internal/modkit/httpkit"
)

const readyTimeout = 2 * time.Second

// Readiness check outcomes.
const (
	checkOK      = "ok"
	checkFail    = "fail"
	checkSkipped = "skipped"
	checkUnknown = "unknown"
)

// Pinger is any dependency that can report readiness.
type Pinger interface {
	Ping(stdctx.Context) error
}

// Deps feed the meta handlers. PG may be nil when postgres is disabled.
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
	Scanner     ScannerResponse
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"scandesk-api"`
	Started string `json:"started" example:"2026-03-02T09:00:00Z"`
	Now     string `json:"now"     example:"2026-03-02T09:05:00Z"`
}

// ReadyCheck is one dependency's readiness.
type ReadyCheck struct {
	Name   string `json:"name"            example:"pg"`
	Status string `json:"status"          example:"ok"`
	Error  string `json:"error,omitempty" example:"connection refused"`
}

// ReadyResponse is ok, degraded or fail over all checks.
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2026-03-02T09:05:00Z"`
}

// ServiceResponse reports uptime in seconds.
type ServiceResponse struct {
	Name    string `json:"name"    example:"scandesk-api"`
	Started string `json:"started" example:"2026-03-02T09:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

// ScannerResponse mirrors the classifier and router tunables in effect.
// Durations are whole milliseconds.
type ScannerResponse struct {
	SpeedThresholdMs  int64   `json:"speed_threshold_ms"   example:"150"`
	MinScanLength     int     `json:"min_scan_length"      example:"3"`
	StaleTimeoutMs    int64   `json:"stale_timeout_ms"     example:"1000"`
	AutoSubmitDelayMs int64   `json:"auto_submit_delay_ms" example:"100"`
	DebugMode         bool    `json:"debug_mode"           example:"false"`
	FastRatio         float64 `json:"fast_ratio"           example:"0.7"`
	Percentile        float64 `json:"percentile"           example:"0.75"`
	ScanningPrefix    string  `json:"scanning_prefix"      example:"/scanning"`
	FoldWidth         bool    `json:"fold_width"           example:"false"`

	Build version.BuildInfo `json:"build"`
}

type meta struct{ Deps }

// Register mounts the meta routes on r.
func Register(r httpkit.Router, d Deps) {
	m := meta{d}
	httpkit.Get(r, "/health", m.health)
	httpkit.Get(r, "/ready", m.ready)
	httpkit.Get(r, "/version", m.version)
	httpkit.Get(r, "/service", m.service)
	httpkit.Get(r, "/scanner", m.scanner)
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// @Summary Liveness
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /meta/health [get]
func (m meta) health(*http.Request) (any, error) {
	return HealthResponse{OK: true, Service: m.ServiceName, Started: stamp(m.StartedAt), Now: stamp(time.Now())}, nil
}

// @Summary Readiness with dependency checks
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse
// @Router /meta/ready [get]
func (m meta) ready(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	pg := check(ctx, "pg", m.PG)
	status := "ok"
	switch pg.Status {
	case checkFail:
		status = "fail"
	case checkUnknown:
		status = "degraded"
	}
	return ReadyResponse{Status: status, Checks: []ReadyCheck{pg}, Now: stamp(time.Now())}, nil
}

// check pings dep. A nil dep is skipped and still counts as ready.
func check(ctx stdctx.Context, name string, dep any) ReadyCheck {
	if dep == nil {
		return ReadyCheck{Name: name, Status: checkSkipped}
	}
	p, ok := dep.(Pinger)
	if !ok {
		return ReadyCheck{Name: name, Status: checkUnknown}
	}
	if err := p.Ping(ctx); err != nil {
		return ReadyCheck{Name: name, Status: checkFail, Error: err.Error()}
	}
	return ReadyCheck{Name: name, Status: checkOK}
}

// @Summary Build info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo
// @Router /meta/version [get]
func (meta) version(*http.Request) (any, error) { return version.Info(), nil }

// @Summary Service uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse
// @Router /meta/service [get]
func (m meta) service(*http.Request) (any, error) {
	return ServiceResponse{
		Name:    m.ServiceName,
		Started: stamp(m.StartedAt),
		Uptime:  int64(time.Since(m.StartedAt) / time.Second),
	}, nil
}

// @Summary Scanner tunables in effect
// @Tags Meta
// @Produce json
// @Success 200 {object} ScannerResponse
// @Router /meta/scanner [get]
func (m meta) scanner(*http.Request) (any, error) {
	out := m.Scanner
	out.Build = version.Info()
	return out, nil
}
