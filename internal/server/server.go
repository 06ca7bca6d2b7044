// Package server wires the store, the generation pipeline, and the HTTP
// endpoints into one process.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/quicktalog/quicktalog/internal/api"
	"github.com/quicktalog/quicktalog/internal/auth"
	"github.com/quicktalog/quicktalog/internal/config"
	"github.com/quicktalog/quicktalog/internal/images"
	"github.com/quicktalog/quicktalog/internal/pipeline"
	"github.com/quicktalog/quicktalog/internal/providers"
	"github.com/quicktalog/quicktalog/internal/server/endpoints"
	"github.com/quicktalog/quicktalog/internal/store"
	"github.com/quicktalog/quicktalog/internal/svcctx"
)

// Server is the main Quicktalog HTTP server.
type Server struct {
	httpServer *http.Server
	configMgr  *config.Manager
	logger     *slog.Logger

	store *store.Store

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.ConfigManager == nil {
		return nil, errors.New("config manager is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	c := cfg.ConfigManager.Get()
	s.httpServer = &http.Server{
		Addr:    net.JoinHostPort(c.Server.Host, c.Server.Port),
		Handler: s.withServices(mux),
		// Generation holds a request open across several upstream calls, so
		// the write timeout is far above the read timeout.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start connects to the database, builds the pipeline, and serves HTTP.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	c := s.configMgr.Get()

	s.logger.Info("connecting to database")
	st, err := store.New(ctx, config.ResolveEnvVars(c.Database.URL))
	if err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.store = st

	if err := st.Migrate(ctx); err != nil {
		st.Close()
		s.setNotRunning()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	s.mu.Lock()
	s.services = s.buildServices(c)
	s.mu.Unlock()

	// Rebuild the pipeline and verifier when the config file changes. The
	// store is deliberately not rebuilt; a database move needs a restart.
	s.configMgr.OnChange(func(c *config.Config) {
		svcs := s.buildServices(c)
		s.mu.Lock()
		s.services = svcs
		s.mu.Unlock()
		s.logger.Info("services reloaded from config")
	})

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// buildServices assembles the service set from the current configuration.
func (s *Server) buildServices(c *config.Config) *svcctx.Services {
	llm := providers.NewOpenAIClient(providers.OpenAIConfig{
		APIKey:      config.ResolveEnvVars(c.LLM.APIKey),
		Model:       c.LLM.Model,
		BaseURL:     c.LLM.BaseURL,
		Temperature: c.LLM.Temperature,
		MaxTokens:   c.LLM.MaxTokens,
		Timeout:     time.Duration(c.LLM.TimeoutSeconds) * time.Second,
		RateLimit:   int(c.LLM.RateLimit),
	})

	var searcher images.Searcher
	if c.Images.Enabled {
		searcher = images.NewClient(images.ClientConfig{
			APIKey:     config.ResolveEnvVars(c.Images.APIKey),
			BaseURL:    c.Images.BaseURL,
			MaxRetries: uint(c.Images.MaxRetries),
		})
	}

	generator := pipeline.New(pipeline.Config{
		LLM:                  llm,
		Searcher:             searcher,
		Logger:               s.logger,
		StructureConcurrency: c.LLM.StructureConcurrency,
	})

	var verifier auth.Verifier
	if c.Auth.IntrospectURL != "" {
		verifier = auth.NewTokenVerifier(auth.TokenVerifierConfig{
			IntrospectURL: c.Auth.IntrospectURL,
		})
	} else if len(c.Auth.StaticTokens) > 0 {
		verifier = &auth.StaticVerifier{Tokens: c.Auth.StaticTokens}
	}

	return &svcctx.Services{
		Store:         s.store,
		Generator:     generator,
		Verifier:      verifier,
		Logger:        s.logger,
		PublicBaseURL: c.Server.PublicBaseURL,
	}
}

// shutdown performs graceful shutdown of the HTTP server and the store.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if s.store != nil {
		s.store.Close()
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// currentServices returns the active service set, nil before Start.
func (s *Server) currentServices() *svcctx.Services {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.services
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svcs := s.currentServices(); svcs != nil {
			ctx = svcctx.WithServices(ctx, svcs)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable until the store and pipeline are ready.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.currentServices() == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
