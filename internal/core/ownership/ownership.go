// Package ownership records which feature currently owns scan interpretation
//
// there is exactly one owner at any instant. Set is an unconditional overwrite (last write
// wins, not a stack): a feature claims on mount and restores Global on unmount. Two features
// claiming at once clobber each other; Claim logs that case but does not prevent it
package ownership

import (
	"strings"
	"sync"

	perr "scandesk/internal/platform/errors"
	"scandesk/internal/platform/logger"
)

// Context is an ownership value
type Context string

const (
	Global          Context = "GLOBAL"
	ManifestBuilder Context = "MANIFEST_BUILDER"
	ScanningPage    Context = "SCANNING_PAGE"
	ArrivalAudit    Context = "ARRIVAL_AUDIT"
	Disabled        Context = "DISABLED"
)

// All lists every Context in declaration order
var All = []Context{Global, ManifestBuilder, ScanningPage, ArrivalAudit, Disabled}

// Valid reports whether c is a known Context
func (c Context) Valid() bool {
	for _, k := range All {
		if c == k {
			return true
		}
	}
	return false
}

// Parse maps a wire value to a Context, case insensitive; empty means Global
func Parse(s string) (Context, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Global, nil
	}
	c := Context(s)
	if !c.Valid() {
		return "", perr.InvalidArgf("unknown scan context %q", s)
	}
	return c, nil
}

// Arbiter holds the single active Context; the zero value is not usable, use New
type Arbiter struct {
	mu     sync.RWMutex
	active Context
	log    *logger.Logger
}

// New returns an Arbiter set to Global
func New() *Arbiter {
	return &Arbiter{active: Global, log: logger.Named("ownership")}
}

// Set overwrites the active Context and returns the previous one
func (a *Arbiter) Set(c Context) (prev Context) {
	a.mu.Lock()
	prev, a.active = a.active, c
	a.mu.Unlock()
	return prev
}

// Active returns the current owner
func (a *Arbiter) Active() Context {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.active
}

// CanNavigate reports whether the global router may act, i.e. nobody has claimed ownership
func (a *Arbiter) CanNavigate() bool { return a.Active() == Global }

// Claim sets c and returns a release func that restores Global once
func (a *Arbiter) Claim(c Context) (release func()) {
	prev := a.Set(c)
	if prev != Global && prev != c {
		a.log.Warn().Str("previous", string(prev)).Str("claimed", string(c)).Msg("scan ownership overwritten")
	}
	var once sync.Once
	return func() {
		once.Do(func() { a.Set(Global) })
	}
}
