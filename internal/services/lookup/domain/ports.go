package domain

import "context"

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Shipment(ctx context.Context, tracking string) (Shipment, error)
	Manifest(ctx context.Context, number string) (Manifest, error)
	Resolve(ctx context.Context, in ResolveInput) (Preview, error)
}
