// Package modkit is how service modules plug into the API: the deps they are
// built from, the Module contract and the Base each module embeds.
package modkit

import (
	"fmt"
	"net/http"
	"reflect"

	"scandesk/internal/modkit/httpkit"
	"scandesk/internal/modkit/repokit"
	"scandesk/internal/platform/config"
	pstrings "scandesk/internal/platform/strings"
)

// Deps are shared by every module. PG is nil when no database is configured.
type Deps struct {
	Cfg config.Conf
	PG  repokit.TxRunner
}

// Module mounts its routes under its own prefix and hands typed ports to main.
type Module interface {
	Name() string
	MountRoutes(r httpkit.Router)
	Ports() any
}

// Option adjusts a module's Base.
type Option func(*Base)

func WithName(name string) Option { return func(b *Base) { b.name = name } }

func WithPrefix(prefix string) Option { return func(b *Base) { b.prefix = prefix } }

// WithMiddlewares runs mw on every route of the module, in order.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Base) { b.mws = append(b.mws, mw...) }
}

// Base holds the name, prefix and middleware a module mounts with.
type Base struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
}

// Build applies opts over the module's own name and prefix.
func Build(name, prefix string, opts ...Option) Base {
	b := Base{name: name, prefix: prefix}
	for _, o := range opts {
		o(&b)
	}
	b.name = pstrings.MustString(b.name, "module name")
	b.prefix = pstrings.MustPrefix(b.prefix)
	return b
}

func (b Base) Name() string   { return b.name }
func (b Base) Prefix() string { return b.prefix }

// Mount scopes register under the module prefix behind its middleware.
func (b Base) Mount(r httpkit.Router, register func(httpkit.Router)) {
	r.Route(b.prefix, func(rr httpkit.Router) {
		rr.Use(b.mws...)
		register(rr)
	})
}

// PortsOf asserts m's ports to T.
func PortsOf[T any](m Module) (T, bool) {
	t, ok := m.Ports().(T)
	return t, ok
}

// MustPortsOf is PortsOf for wiring in main, where a mismatch is a bug.
func MustPortsOf[T any](m Module) T {
	t, ok := PortsOf[T](m)
	if !ok {
		panic(fmt.Sprintf("modkit: module %s does not offer %v", m.Name(), reflect.TypeFor[T]()))
	}
	return t
}
