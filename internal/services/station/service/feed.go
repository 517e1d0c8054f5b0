package service

import (
	"sync"
	"time"

	"scandesk/internal/platform/clock"
)

// DefaultFeedSize is the number of events a station retains
const DefaultFeedSize = 256

// Kind labels a feed item
type Kind string

const (
	KindScan        Kind = "scan"
	KindPreview     Kind = "preview"
	KindFallback    Kind = "fallback"
	KindModalOpen   Kind = "modal_open"
	KindModalClose  Kind = "modal_close"
	KindClearTarget Kind = "clear_target"
	KindOwnership   Kind = "ownership"
	KindRoute       Kind = "route"
	KindDebug       Kind = "debug"
)

// Item is one recorded station event
type Item struct {
	Seq  uint64
	Kind Kind
	At   time.Time
	Data any
}

// Feed is a fixed size ring of station events with monotonically increasing sequence numbers
//
// clients poll "everything after N"; once the ring wraps, the oldest items are overwritten and
// a poll that asks for them is told there is a gap. All methods are safe for concurrent use
type Feed struct {
	mu    sync.Mutex
	items []Item
	seq   uint64
	clock clock.Clock
}

// NewFeed returns a Feed retaining capacity items
func NewFeed(capacity int, clk clock.Clock) *Feed {
	if capacity <= 0 {
		capacity = DefaultFeedSize
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Feed{items: make([]Item, capacity), clock: clk}
}

// Append records an event and returns its sequence number, starting at 1
func (f *Feed) Append(kind Kind, data any) uint64 {
	now := f.clock.Now()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.items[(f.seq-1)%uint64(len(f.items))] = Item{Seq: f.seq, Kind: kind, At: now, Data: data}
	return f.seq
}

// After returns up to limit items with Seq > after, oldest first
// next is the cursor for the following call; gap reports that some requested items were overwritten
func (f *Feed) After(after uint64, limit int) (items []Item, next uint64, gap bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	next = after
	if after >= f.seq {
		return nil, next, false
	}

	capacity := uint64(len(f.items))
	stored := f.seq
	if stored > capacity {
		stored = capacity
	}
	oldest := f.seq - stored + 1

	from := after + 1
	if from < oldest {
		from = oldest
		gap = true
	}

	n := f.seq - from + 1
	if limit > 0 && uint64(limit) < n {
		n = uint64(limit)
	}
	items = make([]Item, 0, n)
	for s := from; s < from+n; s++ {
		items = append(items, f.items[(s-1)%capacity])
	}
	next = from + n - 1
	return items, next, gap
}

// Seq returns the sequence number of the newest item, zero when empty
func (f *Feed) Seq() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seq
}
