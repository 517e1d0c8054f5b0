// Package provider composes the scan core for one scanning surface
//
// key events flow into the Classifier; every classified scan is broadcast to listeners
// (the global router among them) and then settles any pending manual scan request. Path
// and ownership live in reference cells that the router reads on every token, so nothing
// has to be re-registered when they change
package provider

import (
	"context"
	"strings"
	"sync"

	"scandesk/internal/core/broadcast"
	"scandesk/internal/core/manualscan"
	"scandesk/internal/core/ownership"
	"scandesk/internal/core/router"
	"scandesk/internal/core/scan"
	"scandesk/internal/platform/clock"
	perr "scandesk/internal/platform/errors"
	"scandesk/internal/platform/logger"
)

// Options configure a Provider; every presenter is optional
type Options struct {
	Scan   scan.Options
	Router router.Options
	// Path is the initial route path
	Path  string
	Clock clock.Clock

	// Notifier shows hardware scans nobody listened to
	Notifier broadcast.Notifier
	// Presenter opens router previews
	Presenter router.Presenter
	// Modal shows the manual entry surface
	Modal manualscan.Modal
	// ClearTarget wipes characters that leaked into a foreign field
	ClearTarget func(scan.Target)
}

// Provider owns one classifier, bus, mailbox, ownership arbiter and router
type Provider struct {
	bus        *broadcast.Bus
	classifier *scan.Classifier
	mailbox    *manualscan.Mailbox
	owner      *ownership.Arbiter
	route      *router.Route
	router     *router.Listener
	detach     func()

	log *logger.Logger

	closeOnce sync.Once
}

// New builds and wires a Provider
func New(o Options) *Provider {
	clk := o.Clock
	if clk == nil {
		clk = clock.Real()
	}

	p := &Provider{
		bus:     broadcast.New(o.Notifier),
		mailbox: manualscan.New(o.Modal, clk),
		owner:   ownership.New(),
		route:   router.NewRoute(o.Path),
		log:     logger.Named("provider"),
	}
	p.classifier = scan.New(o.Scan, scan.Hooks{
		OnScan:      p.onScan,
		OnDebug:     p.bus.EmitDebug,
		ClearTarget: o.ClearTarget,
	}, clk)
	p.router = router.NewListener(p.route, p.owner, o.Presenter, o.Router)
	p.detach = p.router.Attach(p.bus)
	return p
}

func (p *Provider) onScan(token string) {
	p.bus.Notify(token, scan.SourceBarcodeScanner)
	p.mailbox.Resolve(token, scan.SourceBarcodeScanner)
}

// HandleKey feeds one key-down to the classifier
func (p *Provider) HandleKey(ev scan.KeyEvent) scan.Verdict { return p.classifier.Handle(ev) }

// Scan waits for the next hardware scan or manual entry
func (p *Provider) Scan(ctx context.Context) (manualscan.Result, error) { return p.mailbox.Scan(ctx) }

// CancelScan rejects the pending manual scan, if any
func (p *Provider) CancelScan() bool { return p.mailbox.Cancel() }

// SubmitManual settles the pending manual scan with operator text
func (p *Provider) SubmitManual(text string) error { return p.mailbox.SubmitText(text) }

// Inject broadcasts a token that did not come from the keyboard stream
func (p *Provider) Inject(data string, src scan.Source) (int, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return 0, perr.WithField(perr.New(perr.ErrorCodeValidation, "scan data is empty"), "data")
	}
	return p.bus.Notify(data, src), nil
}

// SetPath updates the current route path
func (p *Provider) SetPath(path string) { p.route.Set(path) }

// Path returns the current route path
func (p *Provider) Path() string { return p.route.Path() }

// Subscribe registers a scan listener
func (p *Provider) Subscribe(fn broadcast.Listener) func() { return p.bus.Subscribe(fn) }

// SubscribeDebug registers a diagnostics listener
func (p *Provider) SubscribeDebug(fn broadcast.DebugListener) func() {
	return p.bus.SubscribeDebug(fn)
}

// Ownership returns the arbiter features claim scanning through
func (p *Provider) Ownership() *ownership.Arbiter { return p.owner }

// Classifier returns the keyboard classifier
func (p *Provider) Classifier() *scan.Classifier { return p.classifier }

// Mailbox returns the manual scan mailbox
func (p *Provider) Mailbox() *manualscan.Mailbox { return p.mailbox }

// Router returns the global scan listener
func (p *Provider) Router() *router.Listener { return p.router }

// Stats returns broadcast counters
func (p *Provider) Stats() broadcast.Stats { return p.bus.Stats() }

// Close cancels any pending manual scan, stops the classifier and detaches the router
func (p *Provider) Close() {
	p.closeOnce.Do(func() {
		p.mailbox.Cancel()
		p.classifier.Close()
		p.detach()
		p.log.Debug().Msg("provider closed")
	})
}
