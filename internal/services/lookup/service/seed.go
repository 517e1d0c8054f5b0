package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"scandesk/internal/core/router"
	"scandesk/internal/modkit/repokit"
	perr "scandesk/internal/platform/errors"
	"scandesk/internal/services/lookup/domain"
	"scandesk/internal/services/lookup/repo"
)

// serialization failures and deadlocks get this many tries
const seedAttempts = 3

type seedFile struct {
	Shipments []seedShipment `yaml:"shipments"`
	Manifests []seedManifest `yaml:"manifests"`
}

type seedShipment struct {
	TrackingNumber string    `yaml:"tracking_number"`
	Status         string    `yaml:"status"`
	Origin         string    `yaml:"origin"`
	Destination    string    `yaml:"destination"`
	Consignee      string    `yaml:"consignee"`
	UpdatedAt      time.Time `yaml:"updated_at"`
}

type seedManifest struct {
	ManifestNumber string     `yaml:"manifest_number"`
	Status         string     `yaml:"status"`
	Carrier        string     `yaml:"carrier"`
	ShipmentCount  int        `yaml:"shipment_count"`
	DepartedAt     *time.Time `yaml:"departed_at"`
}

// Seed upserts the shipments and manifests in a YAML document in one transaction
// every number must classify the way a scan of it would
func (s *Svc) Seed(ctx context.Context, r io.Reader) (domain.SeedResult, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return domain.SeedResult{}, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "decode seed file")
	}

	now := s.now().UTC()
	ships := make([]repo.RowShipment, 0, len(f.Shipments))
	for i, sh := range f.Shipments {
		tn := strings.TrimSpace(sh.TrackingNumber)
		if router.Classify(tn) != router.Shipment {
			return domain.SeedResult{}, perr.WithField(perr.InvalidArgf("shipments[%d]: %q is not a tracking number", i, tn), "tracking_number")
		}
		at := sh.UpdatedAt
		if at.IsZero() {
			at = now
		}
		ships = append(ships, repo.RowShipment{
			TrackingNumber: tn,
			Status:         sh.Status,
			Origin:         sh.Origin,
			Destination:    sh.Destination,
			Consignee:      sh.Consignee,
			UpdatedAt:      at,
		})
	}
	mans := make([]repo.RowManifest, 0, len(f.Manifests))
	for i, m := range f.Manifests {
		mn := strings.TrimSpace(m.ManifestNumber)
		if router.Classify(mn) != router.Manifest {
			return domain.SeedResult{}, perr.WithField(perr.InvalidArgf("manifests[%d]: %q is not a manifest number", i, mn), "manifest_number")
		}
		if m.ShipmentCount < 0 {
			return domain.SeedResult{}, perr.WithField(perr.InvalidArgf("manifests[%d]: negative shipment count", i), "shipment_count")
		}
		mans = append(mans, repo.RowManifest{
			ManifestNumber: mn,
			Status:         m.Status,
			Carrier:        m.Carrier,
			ShipmentCount:  m.ShipmentCount,
			DepartedAt:     m.DepartedAt,
		})
	}

	var err error
	for attempt := 0; attempt < seedAttempts; attempt++ {
		err = repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
			rr := s.bind.Bind(q)
			for _, sh := range ships {
				if err := rr.PutShipment(ctx, sh); err != nil {
					return perr.FromPostgresWithField(err, "seed shipment "+sh.TrackingNumber)
				}
			}
			for _, m := range mans {
				if err := rr.PutManifest(ctx, m); err != nil {
					return perr.FromPostgresWithField(err, "seed manifest "+m.ManifestNumber)
				}
			}
			return nil
		})
		if err == nil || !perr.Retryable(err) {
			break
		}
	}
	if err != nil {
		return domain.SeedResult{}, err
	}
	return domain.SeedResult{Shipments: len(ships), Manifests: len(mans)}, nil
}
