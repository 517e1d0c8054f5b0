// Package module wires stations into the API using modkit
package module

import (
	"context"

	modkit "scandesk/internal/modkit"
	"scandesk/internal/modkit/httpkit"
	"scandesk/internal/modkit/swaggerkit"
	"scandesk/internal/platform/clock"
	"scandesk/internal/platform/logger"
	"scandesk/internal/platform/net/middleware"
	stationhttp "scandesk/internal/services/station/http"
	stationsvc "scandesk/internal/services/station/service"
)

// Module serves /stations and owns the station registry.
type Module struct {
	modkit.Base
	opts  Options
	ports Ports
	svc   *stationsvc.Svc
	auth  middleware.AuthPort
}

// New constructs the stations module, use FromConfig for o
func New(deps modkit.Deps, o Options, opts ...modkit.Option) modkit.Module {
	svc := stationsvc.New(o.service(), clock.Real())
	m := &Module{
		Base: modkit.Build("stations", "/stations", opts...),
		opts: o,
		svc:  svc,
		auth: operatorPort(o.OperatorTokens),
	}
	m.ports = Ports{Stations: svc, Janitor: m.run}
	if m.auth != nil {
		swaggerkit.Register(bearerDocs)
	}
	return m
}

// run sweeps idle stations until ctx is done, then closes every station
func (m *Module) run(ctx context.Context) {
	log := logger.Named("stations")
	log.Info().Dur("idle_ttl", m.opts.IdleTTL).Dur("every", m.opts.SweepEvery).Msg("station janitor started")
	m.svc.Registry().Run(ctx, m.opts.SweepEvery)
	<-ctx.Done()
	m.svc.Registry().CloseAll()
	log.Info().Msg("station janitor stopped")
}

// MountRoutes puts every station route behind operator auth when tokens are configured.
func (m *Module) MountRoutes(r httpkit.Router) {
	m.Mount(r, func(rr httpkit.Router) {
		httpkit.Protected(rr, m.auth, func(pr httpkit.Router) { stationhttp.Register(pr, m.svc) })
	})
}
