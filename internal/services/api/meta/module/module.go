// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	"scandesk/internal/core/router"
	"scandesk/internal/core/scan"
	modkit "scandesk/internal/modkit"
	"scandesk/internal/modkit/httpkit"

	metahttp "scandesk/internal/services/api/meta/http"
)

// Module serves /meta: health, readiness, version and scanner tunables.
type Module struct {
	modkit.Base
	deps metahttp.Deps
}

// Scanner is the effective tunable set reported by /meta/scanner
type Scanner struct {
	Scan   scan.Options
	Router router.Options
}

func (s Scanner) response() metahttp.ScannerResponse {
	return metahttp.ScannerResponse{
		SpeedThresholdMs:  s.Scan.SpeedThreshold.Milliseconds(),
		MinScanLength:     s.Scan.MinScanLength,
		StaleTimeoutMs:    s.Scan.StaleTimeout.Milliseconds(),
		AutoSubmitDelayMs: s.Scan.AutoSubmitDelay.Milliseconds(),
		DebugMode:         s.Scan.DebugMode,
		FastRatio:         s.Scan.FastRatio,
		Percentile:        s.Scan.Percentile,
		ScanningPrefix:    s.Router.ScanningPrefix,
		FoldWidth:         s.Router.FoldWidth,
	}
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, sc Scanner, opts ...modkit.Option) modkit.Module {
	return &Module{
		Base: modkit.Build("meta", "/meta", opts...),
		deps: metahttp.Deps{
			ServiceName: "scandesk-api",
			StartedAt:   time.Now(),
			PG:          deps.PG,
			Scanner:     sc.response(),
		},
	}
}

func (m *Module) MountRoutes(r httpkit.Router) {
	m.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, m.deps) })
}

// Ports is nil; nothing depends on meta.
func (m *Module) Ports() any { return nil }
