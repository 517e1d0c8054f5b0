package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	perr "scandesk/internal/platform/errors"
	"scandesk/internal/services/lookup/repo"
)

const seedYAML = `
shipments:
  - tracking_number: " TAC2026000200 "
    status: delivered
    origin: BNE
    destination: PER
    updated_at: 2026-03-04T08:15:00+10:00
  - tracking_number: TAC2026000201
    status: booked
manifests:
  - manifest_number: MAN-77
    status: departed
    carrier: Linehaul
    shipment_count: 2
    departed_at: 2026-03-04T10:00:00Z
`

func TestSeed(t *testing.T) {
	f := &fakeRepo{shipments: map[string]repo.RowShipment{}, manifests: map[string]repo.RowManifest{}}
	s := newSvc(f, Options{})
	fixed := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	res, err := s.Seed(context.Background(), strings.NewReader(seedYAML))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if res.Shipments != 2 || res.Manifests != 1 {
		t.Fatalf("result = %+v", res)
	}
	if tx := s.db.(*fakeTx); tx.txs != 1 {
		t.Fatalf("transactions = %d", tx.txs)
	}

	sh, ok := f.shipments["TAC2026000200"]
	if !ok || sh.Origin != "BNE" || !sh.UpdatedAt.Equal(time.Date(2026, 3, 3, 22, 15, 0, 0, time.UTC)) {
		t.Fatalf("trimmed shipment = %+v", sh)
	}
	if got := f.shipments["TAC2026000201"].UpdatedAt; !got.Equal(fixed) {
		t.Fatalf("missing updated_at = %v, want now", got)
	}
	if m := f.manifests["MAN-77"]; m.ShipmentCount != 2 || m.DepartedAt == nil {
		t.Fatalf("manifest = %+v", m)
	}
}

func TestSeed_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{name: "unknown key", doc: "shipments:\n  - tracking: TAC1\n"},
		{name: "not a tracking number", doc: "shipments:\n  - tracking_number: MAN-1\n", field: "tracking_number"},
		{name: "not a manifest number", doc: "manifests:\n  - manifest_number: TAC1\n", field: "manifest_number"},
		{name: "negative count", doc: "manifests:\n  - manifest_number: MNF-1\n    shipment_count: -3\n", field: "shipment_count"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeRepo{shipments: map[string]repo.RowShipment{}, manifests: map[string]repo.RowManifest{}}
			s := newSvc(f, Options{})
			_, err := s.Seed(context.Background(), strings.NewReader(tc.doc))
			if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
				t.Fatalf("err = %v", err)
			}
			if tc.field != "" {
				e, ok := perr.As(err)
				if !ok || e.Field() != tc.field {
					t.Fatalf("field of %v, want %q", err, tc.field)
				}
			}
			if len(f.shipments)+len(f.manifests) != 0 {
				t.Fatalf("rows written on invalid input")
			}
		})
	}
}

func TestSeed_EmptyAndRepoError(t *testing.T) {
	f := &fakeRepo{shipments: map[string]repo.RowShipment{}, manifests: map[string]repo.RowManifest{}}
	s := newSvc(f, Options{})
	if res, err := s.Seed(context.Background(), strings.NewReader("")); err != nil || res.Shipments+res.Manifests != 0 {
		t.Fatalf("empty seed = %+v, %v", res, err)
	}

	tx := s.db.(*fakeTx)
	tx.txs = 0
	f.err = errors.New("connection reset")
	_, err := s.Seed(context.Background(), strings.NewReader("shipments:\n  - tracking_number: TAC9\n"))
	if !perr.IsCode(err, perr.ErrorCodeDB) || tx.txs != 1 {
		t.Fatalf("repo err = %v after %d transactions", err, tx.txs)
	}

	tx.txs = 0
	f.err = errors.New("ERROR: deadlock detected (SQLSTATE 40P01)")
	if _, err := s.Seed(context.Background(), strings.NewReader("shipments:\n  - tracking_number: TAC9\n")); err == nil || tx.txs != seedAttempts {
		t.Fatalf("retryable err = %v after %d transactions", err, tx.txs)
	}
}
