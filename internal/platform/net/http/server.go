package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"scandesk/internal/platform/config"
)

// Server pairs the chi root with the listening http.Server.
type Server struct {
	mux *chi.Mux
	srv *http.Server
}

// NewServer listens on API_PORT, ":4000" by default. opts see the root mux
// before any module mounts.
func NewServer(cfg config.Conf, opts ...func(*chi.Mux)) *Server {
	m := chi.NewRouter()
	for _, o := range opts {
		o(m)
	}
	return &Server{
		mux: m,
		srv: &http.Server{
			Addr:              cfg.MayString("API_PORT", ":4000"),
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Router() Router { return AdaptChi(s.mux) }
func (s *Server) Addr() string   { return s.srv.Addr }

// Run serves until Shutdown. Request contexts derive from ctx.
func (s *Server) Run(ctx context.Context) error {
	s.srv.BaseContext = func(net.Listener) context.Context { return ctx }
	if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
