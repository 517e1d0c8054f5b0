// Package repo provides postgres access for shipment and manifest lookups
package repo

import (
	"context"
	"time"

	"scandesk/internal/modkit/repokit"
	"scandesk/internal/platform/store"
)

// Schema creates the lookup tables when they do not exist
const Schema = `
create table if not exists shipments (
	tracking_number text primary key,
	status          text not null default 'created',
	origin          text not null default '',
	destination     text not null default '',
	consignee       text not null default '',
	updated_at      timestamptz not null default now()
);
create table if not exists manifests (
	manifest_number text primary key,
	status          text not null default 'open',
	carrier         text not null default '',
	shipment_count  integer not null default 0 check (shipment_count >= 0),
	departed_at     timestamptz
);
`

// Repo defines the repository contract for lookups
type Repo interface {
	Shipment(ctx context.Context, tracking string) (RowShipment, error)
	Manifest(ctx context.Context, number string) (RowManifest, error)
	PutShipment(ctx context.Context, s RowShipment) error
	PutManifest(ctx context.Context, m RowManifest) error
}

// RowShipment represents a shipments row
type RowShipment struct {
	TrackingNumber string
	Status         string
	Origin         string
	Destination    string
	Consignee      string
	UpdatedAt      time.Time
}

// RowManifest represents a manifests row
type RowManifest struct {
	ManifestNumber string
	Status         string
	Carrier        string
	ShipmentCount  int
	DepartedAt     *time.Time
}

type (
	// PG implements the Repo interface using Postgres
	PG struct{}

	// queries holds the database query methods
	queries struct{ q repokit.Queryer }
)

// NewPG creates a new Postgres repository binder
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind binds a Postgres queryer to the Repo implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// Migrate applies Schema
func Migrate(ctx context.Context, q repokit.Queryer) error {
	_, err := q.Exec(ctx, Schema)
	return err
}

func (r *queries) Shipment(ctx context.Context, tracking string) (RowShipment, error) {
	const sql = `
select tracking_number, status, origin, destination, consignee, updated_at
from shipments
where tracking_number = $1
`
	return store.One(ctx, r.q, func(row store.Row) (RowShipment, error) {
		var s RowShipment
		err := row.Scan(&s.TrackingNumber, &s.Status, &s.Origin, &s.Destination, &s.Consignee, &s.UpdatedAt)
		return s, err
	}, sql, tracking)
}

func (r *queries) Manifest(ctx context.Context, number string) (RowManifest, error) {
	const sql = `
select manifest_number, status, carrier, shipment_count, departed_at
from manifests
where manifest_number = $1
`
	return store.One(ctx, r.q, func(row store.Row) (RowManifest, error) {
		var m RowManifest
		err := row.Scan(&m.ManifestNumber, &m.Status, &m.Carrier, &m.ShipmentCount, &m.DepartedAt)
		return m, err
	}, sql, number)
}

func (r *queries) PutShipment(ctx context.Context, s RowShipment) error {
	const sql = `
insert into shipments (tracking_number, status, origin, destination, consignee, updated_at)
values ($1, $2, $3, $4, $5, coalesce($6, now()))
on conflict (tracking_number) do update set
	status = excluded.status,
	origin = excluded.origin,
	destination = excluded.destination,
	consignee = excluded.consignee,
	updated_at = excluded.updated_at
`
	var at *time.Time
	if !s.UpdatedAt.IsZero() {
		at = &s.UpdatedAt
	}
	return store.ExecOne(ctx, r.q, sql, s.TrackingNumber, s.Status, s.Origin, s.Destination, s.Consignee, at)
}

func (r *queries) PutManifest(ctx context.Context, m RowManifest) error {
	const sql = `
insert into manifests (manifest_number, status, carrier, shipment_count, departed_at)
values ($1, $2, $3, $4, $5)
on conflict (manifest_number) do update set
	status = excluded.status,
	carrier = excluded.carrier,
	shipment_count = excluded.shipment_count,
	departed_at = excluded.departed_at
`
	return store.ExecOne(ctx, r.q, sql, m.ManifestNumber, m.Status, m.Carrier, m.ShipmentCount, m.DepartedAt)
}
