package service

import (
	"sync/atomic"
	"time"

	"scandesk/internal/core/broadcast"
	"scandesk/internal/core/manualscan"
	"scandesk/internal/core/ownership"
	"scandesk/internal/core/provider"
	"scandesk/internal/core/router"
	"scandesk/internal/core/scan"
	"scandesk/internal/platform/clock"
)

// PreviewData is the feed payload of a router hand-off
type PreviewData struct {
	Class router.Classification `json:"class"`
	Token string                `json:"token"`
}

// ModalData is the feed payload of manual scan modal changes
type ModalData struct {
	RequestID string             `json:"request_id"`
	Outcome   manualscan.Outcome `json:"outcome,omitempty"`
}

// OwnershipData is the feed payload of an ownership change
type OwnershipData struct {
	Previous ownership.Context `json:"previous"`
	Active   ownership.Context `json:"active"`
}

// TargetData is the feed payload of a clear target instruction
type TargetData struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
}

// Station is one scanning surface: a provider whose presenters write to a feed
type Station struct {
	ID        string
	CreatedAt time.Time
	Debug     bool
	// Operator is who opened the station, empty without operator auth
	Operator string

	prov     *provider.Provider
	feed     *Feed
	clock    clock.Clock
	lastSeen atomic.Int64
}

// StationOptions configure a new Station
type StationOptions struct {
	Scan     scan.Options
	Router   router.Options
	Path     string
	Owner    ownership.Context
	Debug    bool
	FeedSize int
	Clock    clock.Clock
	Operator string
}

// NewStation builds a station and wires every presenter into its feed
func NewStation(id string, o StationOptions) *Station {
	clk := o.Clock
	if clk == nil {
		clk = clock.Real()
	}
	st := &Station{
		ID:        id,
		CreatedAt: clk.Now(),
		Debug:     o.Debug,
		Operator:  o.Operator,
		feed:      NewFeed(o.FeedSize, clk),
		clock:     clk,
	}
	st.prov = provider.New(provider.Options{
		Scan:   o.Scan,
		Router: o.Router,
		Path:   o.Path,
		Clock:  clk,
		Notifier: broadcast.NotifierFunc(func(ev broadcast.Event) {
			st.feed.Append(KindFallback, ev)
		}),
		Presenter: router.PresenterFunc(func(c router.Classification, tok string) {
			st.feed.Append(KindPreview, PreviewData{Class: c, Token: tok})
		}),
		Modal: feedModal{feed: st.feed},
		ClearTarget: func(t scan.Target) {
			st.feed.Append(KindClearTarget, TargetData{Kind: t.Kind.String(), ID: t.ID})
		},
	})
	st.prov.Subscribe(func(ev broadcast.Event) { st.feed.Append(KindScan, ev) })
	if o.Debug {
		st.prov.SubscribeDebug(func(ev scan.DebugEvent) { st.feed.Append(KindDebug, ev) })
	}
	if o.Owner != "" && o.Owner != ownership.Global {
		st.prov.Ownership().Set(o.Owner)
	}
	st.Touch()
	return st
}

// Provider returns the station's scan core
func (s *Station) Provider() *provider.Provider { return s.prov }

// Feed returns the station's event feed
func (s *Station) Feed() *Feed { return s.feed }

// Touch marks the station as used now
func (s *Station) Touch() { s.lastSeen.Store(s.clock.Now().UnixNano()) }

// LastSeen returns when the station was last used
func (s *Station) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// SetRoute updates the path and records it
func (s *Station) SetRoute(path string) {
	s.prov.SetPath(path)
	s.feed.Append(KindRoute, path)
}

// SetOwnership overwrites the owner and records the change
func (s *Station) SetOwnership(c ownership.Context) (prev ownership.Context) {
	prev = s.prov.Ownership().Set(c)
	s.feed.Append(KindOwnership, OwnershipData{Previous: prev, Active: c})
	return prev
}

// Close releases the provider
func (s *Station) Close() { s.prov.Close() }

type feedModal struct{ feed *Feed }

func (m feedModal) Open(r manualscan.Request) {
	m.feed.Append(KindModalOpen, ModalData{RequestID: r.ID})
}

func (m feedModal) Close(r manualscan.Request, o manualscan.Outcome) {
	m.feed.Append(KindModalClose, ModalData{RequestID: r.ID, Outcome: o})
}
