package domain

import "context"

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Create(ctx context.Context, in CreateInput) (StationView, error)
	List(ctx context.Context) ([]StationView, error)
	Get(ctx context.Context, id string) (StationView, error)
	Close(ctx context.Context, id string) error

	Key(ctx context.Context, id string, in KeyInput) (VerdictView, error)
	SetRoute(ctx context.Context, id string, in RouteInput) (StationView, error)
	SetOwnership(ctx context.Context, id string, in OwnershipInput) (OwnershipView, error)

	ManualScan(ctx context.Context, id string) (ManualScanView, error)
	SubmitManual(ctx context.Context, id string, in ManualInput) error
	CancelManual(ctx context.Context, id string) (CancelView, error)

	Inject(ctx context.Context, id string, in InjectInput) (InjectView, error)
	Events(ctx context.Context, id string, q FeedQuery) (FeedPage, error)
}
