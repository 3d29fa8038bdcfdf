package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"orderlens/internal/platform/config"
	"orderlens/internal/platform/logger"
)

// Server owns the root mux and the listener lifecycle
type Server struct {
	mux *chi.Mux
	srv *http.Server
}

// NewServer reads API_PORT and the API_*_TIMEOUT keys from cfg
func NewServer(cfg config.Conf) *Server {
	c := cfg.Prefix("API_")
	mux := chi.NewRouter()
	return &Server{
		mux: mux,
		srv: &http.Server{
			Addr:              c.MayString("PORT", ":4000"),
			Handler:           mux,
			ReadHeaderTimeout: c.MayDuration("READ_HEADER_TIMEOUT", 10*time.Second),
			IdleTimeout:       c.MayDuration("IDLE_TIMEOUT", 2*time.Minute),
		},
	}
}

// Router is the mount point for modules
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// Handler exposes the root mux, mostly for httptest
func (s *Server) Handler() http.Handler { return s.mux }

// Addr is the configured listen address
func (s *Server) Addr() string { return s.srv.Addr }

// Run listens until Shutdown. Request contexts derive from ctx
func (s *Server) Run(ctx context.Context) error {
	s.srv.BaseContext = func(net.Listener) context.Context { return ctx }
	logger.Named("http").Info().Str("addr", s.srv.Addr).Msg("http listening")
	if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains open connections until ctx expires
func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
