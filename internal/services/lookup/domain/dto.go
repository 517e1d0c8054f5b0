// Package domain holds DTOs for lookup http and service contracts
package domain

import "time"

// ResolveInput asks for the preview record behind a scanned token
type ResolveInput struct {
	Token string `json:"token" validate:"required,max=512" example:"TAC2026000123"`
}

// Shipment is the preview record for a TAC token
type Shipment struct {
	TrackingNumber string    `json:"tracking_number" example:"TAC2026000123"`
	Status         string    `json:"status" example:"in_transit"`
	Origin         string    `json:"origin" example:"SYD"`
	Destination    string    `json:"destination" example:"MEL"`
	Consignee      string    `json:"consignee" example:"Acme Pty Ltd"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Manifest is the preview record for a MAN or MNF token
type Manifest struct {
	ManifestNumber string     `json:"manifest_number" example:"MNF-2026-001"`
	Status         string     `json:"status" example:"open"`
	Carrier        string     `json:"carrier" example:"Linehaul Co"`
	ShipmentCount  int        `json:"shipment_count" example:"42"`
	DepartedAt     *time.Time `json:"departed_at,omitempty"`
}

// Preview is what a preview dialog renders for one token
// exactly one of Shipment or Manifest is set unless Class is unknown
type Preview struct {
	Class    string    `json:"class" example:"shipment"`
	Token    string    `json:"token" example:"TAC2026000123"`
	Shipment *Shipment `json:"shipment,omitempty"`
	Manifest *Manifest `json:"manifest,omitempty"`
}

// SeedResult counts the rows a seed file upserted
type SeedResult struct {
	Shipments int `json:"shipments"`
	Manifests int `json:"manifests"`
}
