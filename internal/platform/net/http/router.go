package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler is the plain handler func every route takes.
type Handler = func(http.ResponseWriter, *http.Request)

// Router is the routing surface modules mount against.
type Router interface {
	Get(path string, h Handler)
	Post(path string, h Handler)
	Put(path string, h Handler)
	Delete(path string, h Handler)
	Handle(path string, h http.Handler)
	Use(mw ...func(http.Handler) http.Handler)
	Group(fn func(Router))
	Route(prefix string, fn func(Router))

	// Mux is the root handler, whatever scope the Router was taken from.
	Mux() http.Handler
}

type chiRouter struct {
	root *chi.Mux
	r    chi.Router
}

// AdaptChi wraps m as a Router.
func AdaptChi(m *chi.Mux) Router { return chiRouter{root: m, r: m} }

func (c chiRouter) Get(p string, h Handler)                   { c.r.Get(p, h) }
func (c chiRouter) Post(p string, h Handler)                  { c.r.Post(p, h) }
func (c chiRouter) Put(p string, h Handler)                   { c.r.Put(p, h) }
func (c chiRouter) Delete(p string, h Handler)                { c.r.Delete(p, h) }
func (c chiRouter) Handle(p string, h http.Handler)           { c.r.Handle(p, h) }
func (c chiRouter) Use(mw ...func(http.Handler) http.Handler) { c.r.Use(mw...) }
func (c chiRouter) Mux() http.Handler                         { return c.root }

func (c chiRouter) Group(fn func(Router)) {
	c.r.Group(func(sub chi.Router) { fn(chiRouter{root: c.root, r: sub}) })
}

func (c chiRouter) Route(prefix string, fn func(Router)) {
	c.r.Route(prefix, func(sub chi.Router) { fn(chiRouter{root: c.root, r: sub}) })
}
