// Package router turns broadcast scan tokens into preview hand-offs
//
// the router owns no detection logic. For every token it reads the current path and owner
// fresh, then either ignores the token or classifies it by literal prefix and hands it to a
// Presenter, which does its own lookup
package router

import (
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/text/width"

	"scandesk/internal/core/broadcast"
	"scandesk/internal/platform/logger"
)

// DefaultScanningPrefix is the path prefix of the page that always handles scans itself
const DefaultScanningPrefix = "/scanning"

// Classification is the preview kind chosen for a token
type Classification string

const (
	Shipment Classification = "shipment"
	Manifest Classification = "manifest"
	Unknown  Classification = "unknown"
)

var prefixes = []struct {
	prefix string
	class  Classification
}{
	{"TAC", Shipment},
	{"MAN", Manifest},
	{"MNF", Manifest},
}

// Classify maps a token to a Classification by literal, case sensitive prefix
func Classify(token string) Classification {
	for _, p := range prefixes {
		if strings.HasPrefix(token, p.prefix) {
			return p.class
		}
	}
	return Unknown
}

// ClassifyFolded is Classify after folding full width characters to their narrow form
// some scanner keyboard layouts emit U+FF34 and friends for ASCII letters
func ClassifyFolded(token string) Classification {
	return Classify(width.Fold.String(token))
}

// Presenter opens a preview for a classified token
type Presenter interface {
	Preview(class Classification, token string)
}

// PresenterFunc adapts a function to Presenter
type PresenterFunc func(Classification, string)

// Preview implements Presenter
func (f PresenterFunc) Preview(c Classification, token string) { f(c, token) }

// PathSource returns the current route path
type PathSource interface {
	Path() string
}

// Gate reports whether the global router may act
type Gate interface {
	CanNavigate() bool
}

// Route is a reference cell for the current path, safe to read from any goroutine
type Route struct {
	v atomic.Pointer[string]
}

// NewRoute returns a Route holding path
func NewRoute(path string) *Route {
	r := &Route{}
	r.Set(path)
	return r
}

// Set replaces the current path
func (r *Route) Set(path string) { r.v.Store(&path) }

// Path implements PathSource
func (r *Route) Path() string {
	if p := r.v.Load(); p != nil {
		return *p
	}
	return ""
}

// Reason explains an ignored token
type Reason string

const (
	ReasonScanningPage Reason = "scanning-page"
	ReasonOwned        Reason = "owned"
)

// Decision is the outcome of one routing evaluation
type Decision struct {
	Preview bool           `json:"preview"`
	Reason  Reason         `json:"reason,omitempty"`
	Class   Classification `json:"class,omitempty"`
	Token   string         `json:"token"`
}

// Options configure a Listener
type Options struct {
	// ScanningPrefix is the path prefix that always owns scanning; empty means DefaultScanningPrefix
	ScanningPrefix string
	// FoldWidth folds full width characters before prefix matching
	FoldWidth bool
}

// Listener is the global scan listener
type Listener struct {
	path      PathSource
	gate      Gate
	presenter Presenter
	opts      Options
	log       *logger.Logger

	mu  sync.Mutex
	sub *attachment
}

// NewListener builds a Listener; path, gate and presenter are read on every token
func NewListener(path PathSource, gate Gate, presenter Presenter, opts Options) *Listener {
	if opts.ScanningPrefix == "" {
		opts.ScanningPrefix = DefaultScanningPrefix
	}
	return &Listener{
		path:      path,
		gate:      gate,
		presenter: presenter,
		opts:      opts,
		log:       logger.Named("router"),
	}
}

// Decide evaluates the decision table for token without side effects
func (l *Listener) Decide(token string) Decision {
	d := Decision{Token: token}
	if l.path != nil && strings.HasPrefix(l.path.Path(), l.opts.ScanningPrefix) {
		d.Reason = ReasonScanningPage
		return d
	}
	if l.gate != nil && !l.gate.CanNavigate() {
		d.Reason = ReasonOwned
		return d
	}
	d.Preview = true
	if l.opts.FoldWidth {
		d.Class = ClassifyFolded(token)
	} else {
		d.Class = Classify(token)
	}
	return d
}

// Handle decides on ev and hands previews to the presenter
func (l *Listener) Handle(ev broadcast.Event) Decision {
	d := l.Decide(ev.Data)
	if !d.Preview {
		l.log.Debug().Str("reason", string(d.Reason)).Msg("scan ignored by router")
		return d
	}
	if l.presenter != nil {
		l.presenter.Preview(d.Class, d.Token)
	}
	return d
}

// Attach subscribes the listener to b; attaching again returns the existing detach func
func (l *Listener) Attach(b *broadcast.Bus) (detach func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sub != nil {
		return l.sub.detach
	}
	a := &attachment{unsub: b.Subscribe(func(ev broadcast.Event) { l.Handle(ev) })}
	a.detach = func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.sub == a {
			a.unsub()
			l.sub = nil
		}
	}
	l.sub = a
	return a.detach
}

// Attached reports whether the listener is subscribed
func (l *Listener) Attached() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sub != nil
}

type attachment struct {
	unsub  func()
	detach func()
}
