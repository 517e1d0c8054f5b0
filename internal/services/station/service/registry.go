package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"scandesk/internal/platform/clock"
	perr "scandesk/internal/platform/errors"
	"scandesk/internal/platform/logger"
)

// Registry owns every open station
type Registry struct {
	clock clock.Clock
	ttl   time.Duration
	max   int
	log   *logger.Logger

	mu       sync.RWMutex
	stations map[string]*Station
}

// NewRegistry returns an empty registry
// ttl <= 0 disables idle expiry and max <= 0 means unlimited
func NewRegistry(clk clock.Clock, ttl time.Duration, max int) *Registry {
	if clk == nil {
		clk = clock.Real()
	}
	return &Registry{
		clock:    clk,
		ttl:      ttl,
		max:      max,
		log:      logger.Named("stations"),
		stations: make(map[string]*Station),
	}
}

// Create opens a new station with a random id
func (r *Registry) Create(o StationOptions) (*Station, error) {
	o.Clock = r.clock

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.max > 0 && len(r.stations) >= r.max {
		return nil, perr.Newf(perr.ErrorCodeTooManyRequests, "station limit of %d reached", r.max)
	}
	st := NewStation(uuid.NewString(), o)
	r.stations[st.ID] = st
	r.log.Info().Str("station", st.ID).Str("path", o.Path).Msg("station opened")
	return st, nil
}

// Get returns a station and marks it as used
func (r *Registry) Get(id string) (*Station, error) {
	r.mu.RLock()
	st, ok := r.stations[id]
	r.mu.RUnlock()
	if !ok {
		return nil, perr.NotFoundf("station %q not found", id)
	}
	st.Touch()
	return st, nil
}

// Close removes and releases a station
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	st, ok := r.stations[id]
	delete(r.stations, id)
	r.mu.Unlock()
	if !ok {
		return perr.NotFoundf("station %q not found", id)
	}
	st.Close()
	r.log.Info().Str("station", id).Msg("station closed")
	return nil
}

// List returns every station, oldest first
func (r *Registry) List() []*Station {
	r.mu.RLock()
	out := make([]*Station, 0, len(r.stations))
	for _, st := range r.stations {
		out = append(out, st)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of open stations
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stations)
}

// Sweep closes stations idle for longer than the ttl and returns how many it closed
// a station with a pending manual scan has a client waiting on it and is kept
func (r *Registry) Sweep(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}
	var expired []*Station
	r.mu.Lock()
	for id, st := range r.stations {
		if _, waiting := st.Provider().Mailbox().Pending(); waiting {
			continue
		}
		if now.Sub(st.LastSeen()) > r.ttl {
			expired = append(expired, st)
			delete(r.stations, id)
		}
	}
	r.mu.Unlock()

	for _, st := range expired {
		st.Close()
		r.log.Info().Str("station", st.ID).Dur("idle", now.Sub(st.LastSeen())).Msg("station expired")
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	if every <= 0 || r.ttl <= 0 {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.clock.After(every):
			r.Sweep(r.clock.Now())
		}
	}
}

// CloseAll releases every station
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.stations
	r.stations = make(map[string]*Station)
	r.mu.Unlock()
	for _, st := range all {
		st.Close()
	}
}
