// Package manualscan is a single slot mailbox that lets a caller wait for the next scan
//
// exactly one request may be outstanding. A second Scan while one is pending fails at once
// with ErrInProgress and is never queued. The request is settled by whichever comes first:
// a hardware scan, operator text from the modal, Cancel, or the caller's context
package manualscan

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"scandesk/internal/core/scan"
	"scandesk/internal/platform/clock"
	perr "scandesk/internal/platform/errors"
	"scandesk/internal/platform/logger"
)

var (
	// ErrInProgress is returned by Scan while another request is outstanding
	ErrInProgress = perr.New(perr.ErrorCodeConflict, "manual scan already in progress")

	// ErrCanceled settles a request dismissed by the operator or by Cancel
	ErrCanceled = perr.New(perr.ErrorCodeCanceled, "manual scan canceled")

	// ErrNotPending is returned by SubmitText when nothing is waiting
	ErrNotPending = perr.New(perr.ErrorCodeNotFound, "no manual scan pending")
)

// Outcome says how a request was settled
type Outcome string

const (
	OutcomeResolved Outcome = "resolved"
	OutcomeCanceled Outcome = "canceled"
	OutcomeExpired  Outcome = "expired"
)

// Request identifies one outstanding manual scan
type Request struct {
	ID       string    `json:"id"`
	OpenedAt time.Time `json:"opened_at"`
}

// Result is the value a request settles with
type Result struct {
	RequestID string      `json:"request_id"`
	Token     string      `json:"token"`
	Source    scan.Source `json:"source"`
}

// Modal presents the manual entry surface
// Open and Close are called in order for each request and must not call back into the Mailbox
type Modal interface {
	Open(Request)
	Close(Request, Outcome)
}

type nopModal struct{}

func (nopModal) Open(Request)           {}
func (nopModal) Close(Request, Outcome) {}

type settled struct {
	res Result
	err error
}

type pending struct {
	req  Request
	done chan settled
}

// Mailbox holds at most one pending manual scan
type Mailbox struct {
	modal Modal
	clock clock.Clock
	log   *logger.Logger

	// pmu orders modal calls so Close never overtakes Open
	pmu sync.Mutex

	mu  sync.Mutex
	cur *pending
}

// New returns a Mailbox; nil modal and clock fall back to a no-op modal and the real clock
func New(modal Modal, clk clock.Clock) *Mailbox {
	if modal == nil {
		modal = nopModal{}
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Mailbox{modal: modal, clock: clk, log: logger.Named("manualscan")}
}

// Scan opens the modal and blocks until the request is settled
func (m *Mailbox) Scan(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	m.pmu.Lock()
	m.mu.Lock()
	if m.cur != nil {
		m.mu.Unlock()
		m.pmu.Unlock()
		return Result{}, ErrInProgress
	}
	p := &pending{
		req:  Request{ID: uuid.NewString(), OpenedAt: m.clock.Now()},
		done: make(chan settled, 1),
	}
	m.cur = p
	m.mu.Unlock()
	m.modal.Open(p.req)
	m.pmu.Unlock()

	m.log.Debug().Str("request_id", p.req.ID).Msg("manual scan opened")

	select {
	case s := <-p.done:
		return s.res, s.err
	case <-ctx.Done():
		m.settle(p, settled{err: ctx.Err()}, OutcomeExpired)
		// either our expiry or a resolve that raced it is in the channel now
		s := <-p.done
		return s.res, s.err
	}
}

// Resolve settles the pending request with token; it reports whether a request was waiting
func (m *Mailbox) Resolve(token string, src scan.Source) bool {
	p := m.current()
	if p == nil {
		return false
	}
	return m.settle(p, settled{res: Result{RequestID: p.req.ID, Token: token, Source: src}}, OutcomeResolved)
}

// SubmitText settles the pending request with operator typed text
// blank text is rejected and the request stays pending
func (m *Mailbox) SubmitText(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return perr.WithField(perr.New(perr.ErrorCodeValidation, "manual scan text is empty"), "text")
	}
	if !m.Resolve(text, scan.SourceManual) {
		return ErrNotPending
	}
	return nil
}

// Cancel rejects the pending request with ErrCanceled; it is a no-op when nothing is pending
func (m *Mailbox) Cancel() bool {
	p := m.current()
	if p == nil {
		return false
	}
	return m.settle(p, settled{err: ErrCanceled}, OutcomeCanceled)
}

// Pending returns the outstanding request, if any
func (m *Mailbox) Pending() (Request, bool) {
	p := m.current()
	if p == nil {
		return Request{}, false
	}
	return p.req, true
}

func (m *Mailbox) current() *pending {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur
}

// settle frees the slot if p still holds it and delivers s; false means p was already settled
func (m *Mailbox) settle(p *pending, s settled, outcome Outcome) bool {
	m.mu.Lock()
	if m.cur != p {
		m.mu.Unlock()
		return false
	}
	m.cur = nil
	m.mu.Unlock()

	p.done <- s

	m.pmu.Lock()
	m.modal.Close(p.req, outcome)
	m.pmu.Unlock()

	m.log.Debug().Str("request_id", p.req.ID).Str("outcome", string(outcome)).Msg("manual scan settled")
	return true
}
