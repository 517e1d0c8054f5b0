// Package module wires lookups into the API using modkit
package module

import (
	"context"
	"os"
	"time"

	modkit "scandesk/internal/modkit"
	"scandesk/internal/modkit/httpkit"
	"scandesk/internal/modkit/repokit"
	"scandesk/internal/platform/config"
	perr "scandesk/internal/platform/errors"
	"scandesk/internal/platform/logger"
	"scandesk/internal/platform/net/middleware"
	lookuphttp "scandesk/internal/services/lookup/http"
	lookuprepo "scandesk/internal/services/lookup/repo"
	lookupsvc "scandesk/internal/services/lookup/service"
)

// Module serves /lookup previews from postgres.
type Module struct {
	modkit.Base
	ports Ports
	svc   lookupsvc.Service
}

// Options controls lookup behaviour
type Options struct {
	FoldWidth bool
	// Migrate applies the lookup schema on start
	Migrate bool
	// SeedFile is a YAML file of shipments and manifests upserted on start
	SeedFile string
	// QueryTimeout bounds each lookup request, database round trip included
	QueryTimeout time.Duration
}

const defaultQueryTimeout = 5 * time.Second

// FromConfig reads SCAN_ROUTER_FOLD_WIDTH and LOOKUP_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	lc := cfg.Prefix("LOOKUP_")
	return Options{
		FoldWidth: cfg.Prefix("SCAN_").MayBool("ROUTER_FOLD_WIDTH", false),
		Migrate:   lc.MayBool("MIGRATE", false),
		SeedFile:  lc.MayString("SEED_FILE", ""),

		QueryTimeout: lc.MayDuration("QUERY_TIMEOUT", defaultQueryTimeout),
	}
}

// Bootstrap prepares the lookup tables before the module serves traffic
func Bootstrap(ctx context.Context, db repokit.TxRunner, o Options) error {
	log := logger.Named("lookup")
	if o.Migrate {
		if err := lookuprepo.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info().Msg("lookup schema applied")
	}
	if o.SeedFile == "" {
		return nil
	}
	f, err := os.Open(o.SeedFile)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "open seed file %s", o.SeedFile)
	}
	defer func() { _ = f.Close() }()

	svc := lookupsvc.New(db, lookuprepo.NewPG(), lookupsvc.Options{FoldWidth: o.FoldWidth})
	res, err := svc.Seed(ctx, f)
	if err != nil {
		return err
	}
	log.Info().
		Str("file", o.SeedFile).
		Int("shipments", res.Shipments).
		Int("manifests", res.Manifests).
		Msg("lookup seed applied")
	return nil
}

// New constructs a lookup module; deps.PG must be set
func New(deps modkit.Deps, o Options, opts ...modkit.Option) modkit.Module {
	svc := lookupsvc.New(deps.PG, lookuprepo.NewPG(), lookupsvc.Options{FoldWidth: o.FoldWidth})
	if o.QueryTimeout > 0 {
		opts = append([]modkit.Option{modkit.WithMiddlewares(middleware.Timeout(o.QueryTimeout))}, opts...)
	}
	return &Module{
		Base:  modkit.Build("lookup", "/lookup", opts...),
		ports: Ports{Lookup: svc},
		svc:   svc,
	}
}

func (m *Module) MountRoutes(r httpkit.Router) {
	m.Mount(r, func(rr httpkit.Router) { lookuphttp.Register(rr, m.svc) })
}
