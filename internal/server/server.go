// Package server is the HTTP backend the chat widget talks to.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/diogo/simchat/internal/agent"
	"github.com/diogo/simchat/internal/llm"
	"github.com/diogo/simchat/internal/models"
	"github.com/diogo/simchat/internal/observability"
)

// Routes served by the backend
const (
	RouteChat    = "/api/chat"
	RouteAgent   = "/api/agent"
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)

// MissingKeyReply is returned, with status 200, when no upstream key is configured
const MissingKeyReply = "Missing OpenRouter API key. Check your environment setup."

// Config configures the backend
type Config struct {
	ListenAddr      string
	AllowedOrigins  []string
	DefaultModel    string
	UpstreamTimeout time.Duration
}

// Server routes chat and agent requests to the upstream completer
type Server struct {
	cfg        Config
	completer  llm.Completer
	agent      *agent.Agent
	logger     *observability.Logger
	router     chi.Router
	httpServer *http.Server
}

// New builds the backend. A nil completer means no API key was configured;
// every exchange then answers with MissingKeyReply.
func New(cfg Config, completer llm.Completer, mailer agent.Mailer, logger *observability.Logger) *Server {
	if logger == nil {
		logger = observability.Discard()
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = models.DefaultModel
	}
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = 120 * time.Second
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "localhost:8000"
	}

	s := &Server{
		cfg:       cfg,
		completer: completer,
		logger:    logger,
	}
	if completer != nil {
		s.agent = agent.New(completer, mailer, logger.Named("agent"))
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(s.corsMiddleware)
	router.Use(s.securityHeadersMiddleware)

	router.Post(RouteChat, s.handleChat)
	router.Post(RouteAgent, s.handleAgent)
	router.Get(RouteHealth, s.handleHealth)
	router.Method(http.MethodGet, RouteMetrics, promhttp.Handler())

	return router
}

// Handler returns the HTTP handler, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.cfg.ListenAddr
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("serving backend", "addr", s.cfg.ListenAddr, "origins", strings.Join(s.cfg.AllowedOrigins, ","))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down backend: %w", err)
		}
		return nil
	case err, ok := <-serverErr:
		if !ok {
			return nil
		}
		return fmt.Errorf("backend stopped: %w", err)
	}
}
