// Package service contains station workflows
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"scandesk/internal/core/manualscan"
	"scandesk/internal/core/ownership"
	"scandesk/internal/core/router"
	"scandesk/internal/core/scan"
	"scandesk/internal/platform/clock"
	perr "scandesk/internal/platform/errors"
	"scandesk/internal/services/station/domain"
)

// Service defines the service contract for stations
type Service interface{ domain.ServicePort }

// Config controls station behaviour
type Config struct {
	Scan          scan.Options
	Router        router.Options
	FeedSize      int
	IdleTTL       time.Duration
	MaxStations   int
	ManualTimeout time.Duration
	DefaultPath   string
}

// Svc implements the Service interface
type Svc struct {
	reg *Registry
	cfg Config
}

// New creates a station service on its own registry
func New(cfg Config, clk clock.Clock) *Svc {
	if cfg.DefaultPath == "" {
		cfg.DefaultPath = "/"
	}
	return &Svc{reg: NewRegistry(clk, cfg.IdleTTL, cfg.MaxStations), cfg: cfg}
}

// Registry exposes the station registry for the janitor and shutdown
func (s *Svc) Registry() *Registry { return s.reg }

// Create opens a station
func (s *Svc) Create(_ context.Context, in domain.CreateInput) (domain.StationView, error) {
	owner, err := ownership.Parse(in.Ownership)
	if err != nil {
		return domain.StationView{}, perr.WithField(err, "ownership")
	}
	path := in.Path
	if path == "" {
		path = s.cfg.DefaultPath
	}
	st, err := s.reg.Create(StationOptions{
		Scan:     s.cfg.Scan,
		Router:   s.cfg.Router,
		Path:     path,
		Owner:    owner,
		Debug:    in.Debug,
		FeedSize: s.cfg.FeedSize,
		Operator: in.Operator,
	})
	if err != nil {
		return domain.StationView{}, err
	}
	return view(st), nil
}

// List returns every open station
func (s *Svc) List(_ context.Context) ([]domain.StationView, error) {
	sts := s.reg.List()
	out := make([]domain.StationView, 0, len(sts))
	for _, st := range sts {
		out = append(out, view(st))
	}
	return out, nil
}

// Get returns one station
func (s *Svc) Get(_ context.Context, id string) (domain.StationView, error) {
	st, err := s.reg.Get(id)
	if err != nil {
		return domain.StationView{}, err
	}
	return view(st), nil
}

// Close closes one station, cancelling any pending manual scan
func (s *Svc) Close(_ context.Context, id string) error { return s.reg.Close(id) }

// Key feeds one key-down to the station classifier
func (s *Svc) Key(_ context.Context, id string, in domain.KeyInput) (domain.VerdictView, error) {
	st, err := s.reg.Get(id)
	if err != nil {
		return domain.VerdictView{}, err
	}
	kind, err := scan.ParseTargetKind(in.Target.Kind)
	if err != nil {
		return domain.VerdictView{}, perr.WithField(err, "target.kind")
	}
	ev := scan.KeyEvent{
		Key:    in.Key,
		Ctrl:   in.Ctrl,
		Alt:    in.Alt,
		Meta:   in.Meta,
		Target: scan.Target{Kind: kind, ID: in.Target.ID},
	}
	if in.TimestampMs > 0 {
		ev.At = time.UnixMilli(in.TimestampMs)
	}
	v := st.Provider().HandleKey(ev)
	return domain.VerdictView{
		PreventDefault:  v.PreventDefault,
		StopPropagation: v.StopPropagation,
		ClearTarget:     v.ClearTarget,
	}, nil
}

// SetRoute replaces the station path
func (s *Svc) SetRoute(_ context.Context, id string, in domain.RouteInput) (domain.StationView, error) {
	st, err := s.reg.Get(id)
	if err != nil {
		return domain.StationView{}, err
	}
	st.SetRoute(in.Path)
	return view(st), nil
}

// SetOwnership overwrites the station scan owner
func (s *Svc) SetOwnership(_ context.Context, id string, in domain.OwnershipInput) (domain.OwnershipView, error) {
	st, err := s.reg.Get(id)
	if err != nil {
		return domain.OwnershipView{}, err
	}
	c, err := ownership.Parse(in.Context)
	if err != nil {
		return domain.OwnershipView{}, perr.WithField(err, "context")
	}
	prev := st.SetOwnership(c)
	return domain.OwnershipView{Previous: string(prev), Active: string(c)}, nil
}

// ManualScan blocks until the station's pending manual scan settles
func (s *Svc) ManualScan(ctx context.Context, id string) (domain.ManualScanView, error) {
	st, err := s.reg.Get(id)
	if err != nil {
		return domain.ManualScanView{}, err
	}
	if s.cfg.ManualTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ManualTimeout)
		defer cancel()
	}
	res, err := st.Provider().Scan(ctx)
	st.Touch()
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		return domain.ManualScanView{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "manual scan timed out")
	case errors.Is(err, context.Canceled):
		return domain.ManualScanView{}, perr.Wrap(err, perr.ErrorCodeCanceled, "manual scan abandoned")
	default:
		return domain.ManualScanView{}, err
	}
	return domain.ManualScanView{RequestID: res.RequestID, Token: res.Token, Source: string(res.Source)}, nil
}

// SubmitManual settles the pending manual scan with operator text
func (s *Svc) SubmitManual(_ context.Context, id string, in domain.ManualInput) error {
	st, err := s.reg.Get(id)
	if err != nil {
		return err
	}
	return st.Provider().SubmitManual(in.Text)
}

// CancelManual rejects the pending manual scan, a no-op when nothing is pending
func (s *Svc) CancelManual(_ context.Context, id string) (domain.CancelView, error) {
	st, err := s.reg.Get(id)
	if err != nil {
		return domain.CancelView{}, err
	}
	return domain.CancelView{Canceled: st.Provider().CancelScan()}, nil
}

// Inject broadcasts a token from a non-keyboard source, MANUAL by default
func (s *Svc) Inject(_ context.Context, id string, in domain.InjectInput) (domain.InjectView, error) {
	st, err := s.reg.Get(id)
	if err != nil {
		return domain.InjectView{}, err
	}
	src := scan.SourceManual
	if strings.TrimSpace(in.Source) != "" {
		if src, err = scan.ParseSource(in.Source); err != nil {
			return domain.InjectView{}, perr.WithField(err, "source")
		}
	}
	n, err := st.Provider().Inject(in.Data, src)
	if err != nil {
		return domain.InjectView{}, err
	}
	return domain.InjectView{Delivered: n}, nil
}

// Events pages the station feed
func (s *Svc) Events(_ context.Context, id string, q domain.FeedQuery) (domain.FeedPage, error) {
	st, err := s.reg.Get(id)
	if err != nil {
		return domain.FeedPage{}, err
	}
	limit := q.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	items, next, gap := st.Feed().After(q.After, limit)
	out := make([]domain.FeedItem, 0, len(items))
	for _, it := range items {
		out = append(out, domain.FeedItem{Seq: it.Seq, Kind: string(it.Kind), At: it.At.UTC(), Data: it.Data})
	}
	return domain.FeedPage{Items: out, Next: next, Gap: gap}, nil
}

func view(st *Station) domain.StationView {
	p := st.Provider()
	req, pending := p.Mailbox().Pending()
	stats := p.Stats()
	v := domain.StationView{
		ID:            st.ID,
		Path:          p.Path(),
		Ownership:     string(p.Ownership().Active()),
		Debug:         st.Debug,
		OpenedBy:      st.Operator,
		ManualPending: pending,
		Buffer:        p.Classifier().Snapshot().Buffer,
		Seq:           st.Feed().Seq(),
		Listeners:     stats.Listeners,
		Published:     stats.Published,
		Fallbacks:     stats.Fallbacks,
		CreatedAt:     st.CreatedAt.UTC(),
		LastSeen:      st.LastSeen().UTC(),
	}
	if pending {
		v.ManualRequestID = req.ID
	}
	return v
}

var _ manualscan.Modal = feedModal{}
