package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/deepworkai/deepwork/internal/config"
)

type Server struct {
	config  *config.Config
	handler *Handler
	server  *http.Server
}

// NewServer builds the dashboard and API server. live may be nil when no
// session runs in this process.
func NewServer(cfg *config.Config, repo Store, live LiveController, customPort int) *Server {
	handler := NewHandler(cfg, repo, live)
	mux := http.NewServeMux()
	handler.SetupRoutes(mux)

	port := cfg.Web.Port
	if customPort > 0 {
		port = customPort
	}

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		config:  cfg,
		handler: handler,
		server:  httpServer,
	}
}

func (s *Server) Start() error {
	log.Printf("Starting web server on http://%s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return s.server.Addr
}
