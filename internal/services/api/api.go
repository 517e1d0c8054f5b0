// Package api provides the HTTP API for the application
package api

import (
	"scandesk/internal/platform/config"
	"scandesk/internal/platform/logger"
	phttp "scandesk/internal/platform/net/http"
	"scandesk/internal/platform/store"

	"scandesk/internal/modkit"
	"scandesk/internal/modkit/httpkit"
	"scandesk/internal/modkit/swaggerkit"

	metamod "scandesk/internal/services/api/meta/module"
	lookupmod "scandesk/internal/services/lookup/module"
	stationmod "scandesk/internal/services/station/module"
)

// Options are the API options
type Options struct {
	// Config is the root config; modules pick their own prefixes
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router and returns the stations ports
func Mount(r phttp.Router, opt Options) stationmod.Ports {
	// shared deps for modules
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
	}

	stOpts := stationmod.FromConfig(deps.Cfg)
	stations := stationmod.New(deps, stOpts)

	mods := []modkit.Module{
		metamod.New(deps, metamod.Scanner{Scan: stOpts.Scan, Router: stOpts.Router}),
		stations,
	}
	if deps.PG != nil {
		mods = append(mods, lookupmod.New(deps, lookupmod.FromConfig(deps.Cfg)))
	} else if opt.Logger != nil {
		opt.Logger.Info().Msg("SERVICE_PGSQL_DBURL not set; lookup endpoints disabled")
	}

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		for _, m := range mods {
			m.MountRoutes(api)
		}
	})

	return modkit.MustPortsOf[stationmod.Ports](stations)
}
