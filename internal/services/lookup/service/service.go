// Package service contains lookup workflows
package service

import (
	"context"
	"strings"
	"time"

	"golang.org/x/text/width"

	"scandesk/internal/core/router"
	"scandesk/internal/modkit/repokit"
	perr "scandesk/internal/platform/errors"
	ptime "scandesk/internal/platform/time"
	"scandesk/internal/services/lookup/domain"
	"scandesk/internal/services/lookup/repo"
)

// Service defines the service contract for lookups
type Service interface{ domain.ServicePort }

// Svc implements the Service interface
type Svc struct {
	Repo repo.Repo
	fold bool

	db   repokit.TxRunner
	bind repokit.Binder[repo.Repo]
	now  func() time.Time
}

// Options control token classification
type Options struct {
	// FoldWidth folds full width characters before classifying and looking up a token
	FoldWidth bool
}

// New creates a new lookup service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], o Options) *Svc {
	if db == nil {
		panic("lookup.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("lookup.Service requires a non nil Repo binder")
	}
	return &Svc{
		Repo: binder.Bind(db),
		fold: o.FoldWidth,
		db:   db,
		bind: binder,
		now:  time.Now,
	}
}

// Shipment returns the shipment behind a tracking number
func (s *Svc) Shipment(ctx context.Context, tracking string) (domain.Shipment, error) {
	tracking = strings.TrimSpace(tracking)
	if tracking == "" {
		return domain.Shipment{}, perr.WithField(perr.InvalidArgf("tracking number is empty"), "token")
	}
	r, err := s.Repo.Shipment(ctx, tracking)
	if err != nil {
		return domain.Shipment{}, notFound(err, "shipment %q not found", tracking)
	}
	return domain.Shipment{
		TrackingNumber: r.TrackingNumber,
		Status:         r.Status,
		Origin:         r.Origin,
		Destination:    r.Destination,
		Consignee:      r.Consignee,
		UpdatedAt:      r.UpdatedAt.UTC(),
	}, nil
}

// Manifest returns the manifest behind a manifest number
func (s *Svc) Manifest(ctx context.Context, number string) (domain.Manifest, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return domain.Manifest{}, perr.WithField(perr.InvalidArgf("manifest number is empty"), "token")
	}
	r, err := s.Repo.Manifest(ctx, number)
	if err != nil {
		return domain.Manifest{}, notFound(err, "manifest %q not found", number)
	}
	return domain.Manifest{
		ManifestNumber: r.ManifestNumber,
		Status:         r.Status,
		Carrier:        r.Carrier,
		ShipmentCount:  r.ShipmentCount,
		DepartedAt:     departed(r.DepartedAt),
	}, nil
}

// departed normalizes to UTC; a zero timestamp means not departed
func departed(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	return ptime.Ptr(t.UTC())
}

// Resolve classifies token and fetches its preview record
// unknown tokens resolve to a preview that only carries the raw token
func (s *Svc) Resolve(ctx context.Context, in domain.ResolveInput) (domain.Preview, error) {
	tok := strings.TrimSpace(in.Token)
	if s.fold {
		tok = width.Fold.String(tok)
	}
	c := router.Classify(tok)
	p := domain.Preview{Class: string(c), Token: tok}
	switch c {
	case router.Shipment:
		sh, err := s.Shipment(ctx, tok)
		if err != nil {
			return domain.Preview{}, err
		}
		p.Shipment = &sh
	case router.Manifest:
		m, err := s.Manifest(ctx, tok)
		if err != nil {
			return domain.Preview{}, err
		}
		p.Manifest = &m
	}
	return p, nil
}

func notFound(err error, format string, a ...any) error {
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return perr.NotFoundf(format, a...)
	}
	return perr.FromPostgres(err, "lookup failed")
}
