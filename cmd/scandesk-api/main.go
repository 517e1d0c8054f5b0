// @title         Scandesk API
// @version       0.1.0
// @description   Scan stations, manual scan requests and shipment lookups

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"scandesk/internal/modkit/repokit"
	"scandesk/internal/platform/config"
	"scandesk/internal/platform/logger"
	phttp "scandesk/internal/platform/net/http"
	"scandesk/internal/platform/store"

	"scandesk/internal/services/api"
	lookupmod "scandesk/internal/services/lookup/module"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_") // pgCfg lives under SERVICE_PGSQL_*

	// bring up logging early
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// postgres only backs lookups, so it is optional
	dbURL := pgCfg.MayString("DBURL", "")
	st, err := store.Open(
		ctx,
		store.Config{
			PG: store.PGConfig{
				Enabled:     dbURL != "",
				URL:         dbURL,
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", false),
			},
		},
		store.WithLogger(*logger.Get()),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if st.PG != nil {
		repokit.MustGuard(ctx, st)
		if err := lookupmod.Bootstrap(ctx, st.PG, lookupmod.FromConfig(root)); err != nil {
			l.Panic().Err(err).Msg("lookup bootstrap failed")
		}
	}

	// http server (reads CORE_API_API_PORT)
	srv := phttp.NewServer(apiCfg)

	// mount our API
	stations := api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)

	janitorDone := make(chan struct{})
	go func() {
		defer close(janitorDone)
		stations.Janitor(ctx)
	}()

	errc := make(chan error, 1)
	go func() { errc <- srv.Run(ctx) }()
	l.Info().Str("addr", srv.Addr()).Msg("scandesk api listening")

	select {
	case err := <-errc:
		if err != nil {
			l.Error().Err(err).Msg("http server stopped")
		}
		stop()
	case <-ctx.Done():
		l.Info().Msg("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := srv.Shutdown(shutCtx); err != nil {
			l.Error().Err(err).Msg("http shutdown")
		}
		cancel()
	}
	<-janitorDone
}
