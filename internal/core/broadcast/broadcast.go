// Package broadcast fans decoded scan tokens out to any number of listeners
//
// delivery is synchronous and in registration order. A panicking listener is recovered and
// logged and never prevents delivery to the listeners after it. A hardware scan that finds
// nobody listening degrades to the fallback Notifier so a scan is never silently dropped
package broadcast

import (
	"fmt"
	"sync"
	"sync/atomic"

	"scandesk/internal/core/scan"
	"scandesk/internal/platform/logger"
)

// Event is the unit delivered to scan listeners
type Event struct {
	Data   string      `json:"data"`
	Source scan.Source `json:"source"`
}

// Listener receives scan events
type Listener func(Event)

// DebugListener receives classifier diagnostics
type DebugListener func(scan.DebugEvent)

// Notifier shows a raw value to the operator when no listener took a hardware scan
type Notifier interface {
	Fallback(Event)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Event)

// Fallback implements Notifier
func (f NotifierFunc) Fallback(ev Event) { f(ev) }

// Stats are cumulative counters for one Bus
type Stats struct {
	Published uint64 `json:"published"`
	Delivered uint64 `json:"delivered"`
	Panics    uint64 `json:"panics"`
	Fallbacks uint64 `json:"fallbacks"`
	Debug     uint64 `json:"debug"`
	Listeners int    `json:"listeners"`
	DebugSubs int    `json:"debug_listeners"`
}

type entry[T any] struct {
	id uint64
	fn T
}

// Bus is a scan pub/sub hub; the zero value is not usable, use New
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	subs     []entry[Listener]
	debug    []entry[DebugListener]
	notifier Notifier

	published atomic.Uint64
	delivered atomic.Uint64
	panics    atomic.Uint64
	fallbacks atomic.Uint64
	debugOut  atomic.Uint64

	log *logger.Logger
}

// New returns a Bus; a nil notifier logs unclaimed hardware scans at warn instead
func New(n Notifier) *Bus {
	return &Bus{notifier: n, log: logger.Named("broadcast")}
}

// Subscribe registers fn and returns a function that removes it
// the returned function is idempotent
func (b *Bus) Subscribe(fn Listener) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, entry[Listener]{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			b.subs = remove(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// SubscribeDebug registers a diagnostics listener and returns a function that removes it
func (b *Bus) SubscribeDebug(fn DebugListener) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.debug = append(b.debug, entry[DebugListener]{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			b.debug = remove(b.debug, id)
			b.mu.Unlock()
		})
	}
}

// Notify delivers data to every listener registered at call time and returns how many
// listeners returned normally
func (b *Bus) Notify(data string, src scan.Source) int {
	ev := Event{Data: data, Source: src}
	b.published.Add(1)

	b.mu.RLock()
	subs := append([]entry[Listener](nil), b.subs...)
	n := b.notifier
	b.mu.RUnlock()

	if len(subs) == 0 {
		if src == scan.SourceBarcodeScanner {
			b.fallback(n, ev)
		}
		return 0
	}

	ok := 0
	for _, s := range subs {
		if b.deliver(s.id, func() { s.fn(ev) }) {
			ok++
		}
	}
	b.delivered.Add(uint64(ok))
	return ok
}

// EmitDebug delivers ev to every diagnostics listener
func (b *Bus) EmitDebug(ev scan.DebugEvent) {
	b.mu.RLock()
	subs := append([]entry[DebugListener](nil), b.debug...)
	b.mu.RUnlock()

	for _, s := range subs {
		if b.deliver(s.id, func() { s.fn(ev) }) {
			b.debugOut.Add(1)
		}
	}
}

// Len returns the number of scan listeners
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Stats returns a snapshot of the counters
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	listeners, debugSubs := len(b.subs), len(b.debug)
	b.mu.RUnlock()
	return Stats{
		Published: b.published.Load(),
		Delivered: b.delivered.Load(),
		Panics:    b.panics.Load(),
		Fallbacks: b.fallbacks.Load(),
		Debug:     b.debugOut.Load(),
		Listeners: listeners,
		DebugSubs: debugSubs,
	}
}

func (b *Bus) deliver(id uint64, call func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			b.log.Error().
				Uint64("listener", id).
				Str("panic", fmt.Sprint(r)).
				Msg("scan listener panicked")
			ok = false
		}
	}()
	call()
	return true
}

func (b *Bus) fallback(n Notifier, ev Event) {
	b.fallbacks.Add(1)
	if n == nil {
		b.log.Warn().Int("len", len(ev.Data)).Msg("hardware scan with no listeners")
		return
	}
	b.deliver(0, func() { n.Fallback(ev) })
}

func remove[T any](in []entry[T], id uint64) []entry[T] {
	for i, e := range in {
		if e.id == id {
			out := make([]entry[T], 0, len(in)-1)
			out = append(out, in[:i]...)
			return append(out, in[i+1:]...)
		}
	}
	return in
}
