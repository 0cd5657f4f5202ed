// Package server wires the Provider Registry, Health Tracker, Route
// Selector, Auth Resolver, Deduplication Index, and Request Orchestrator
// into a runnable HTTP server for the Anthropic Messages API surface.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"provider-balancer/balancer/pkg/auth"
	"provider-balancer/balancer/pkg/config"
	"provider-balancer/balancer/pkg/dedup"
	"provider-balancer/balancer/pkg/orchestrator"
	"provider-balancer/balancer/pkg/processing/tokens"
	"provider-balancer/balancer/pkg/providers"
	"provider-balancer/balancer/pkg/proxy/handlers"
	"provider-balancer/balancer/pkg/proxy/middleware"
	"provider-balancer/balancer/pkg/routing"
	sectls "provider-balancer/balancer/pkg/security/tls"
	"provider-balancer/balancer/pkg/telemetry/health"
	"provider-balancer/balancer/pkg/telemetry/metrics"
)

// VersionInfo is build metadata surfaced on GET /version.
type VersionInfo struct {
	Version   string
	GitCommit string
	BuildDate string
}

// Server is the balancer's HTTP server: the Anthropic Messages API surface
// plus liveness/readiness/provider-health admin endpoints.
type Server struct {
	proxyConfig    *config.ProxyConfig
	securityConfig *config.SecurityConfig
	configPath     string

	registry     *providers.Registry
	tracker      *providers.Tracker
	selector     *routing.Selector
	sticky       *routing.StickyState
	dedupIdx     *dedup.Index
	authResolver *auth.Resolver
	orch         *orchestrator.Orchestrator
	estimator    tokens.Estimator
	metrics      *metrics.Collector
	healthCheck  *health.Checker
	versionInfo  VersionInfo

	closeTokenSources func()

	certReloader *sectls.CertificateReloader
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New builds a Server and every collaborator the Request Orchestrator needs
// from a loaded configuration. configPath is remembered so the admin
// POST /providers/reload endpoint can re-read the file it was started with.
// versionInfo backs GET /version; its zero value is fine outside cmd/balancer.
func New(cfg *config.Config, configPath string, versionInfo VersionInfo) (*Server, error) {
	registry := providers.NewRegistry(config.BuildProviders(cfg.Providers), config.BuildRoutes(cfg.ModelRoutes))
	tracker := providers.NewTracker(config.BuildHealthConfig(cfg.Settings))

	selector, sticky, err := config.BuildSelector(registry, tracker, cfg.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to build route selector: %w", err)
	}

	tokenSources, closeTokenSources, err := config.BuildTokenSources(cfg.Settings.OAuth)
	if err != nil {
		return nil, err
	}
	authResolver := auth.NewResolver(tokenSources)

	dedupIdx := dedup.NewIndex(cfg.Settings.Deduplication.SSEErrorCleanupDelay)
	orchSettings := config.BuildOrchestratorSettings(cfg.Settings)
	metricsCollector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	orch := orchestrator.New(registry, tracker, selector, sticky, dedupIdx, authResolver, orchSettings, metricsCollector)

	healthCheck := health.New(5 * time.Second)
	healthCheck.RegisterCheck("providers", func(ctx context.Context) error {
		for _, p := range registry.List() {
			if p.Enabled && tracker.IsHealthy(p.Name) {
				return nil
			}
		}
		return errors.New("no healthy providers available")
	})

	return &Server{
		proxyConfig:       &cfg.Proxy,
		securityConfig:    &cfg.Security,
		configPath:        configPath,
		registry:          registry,
		tracker:           tracker,
		selector:          selector,
		sticky:            sticky,
		dedupIdx:          dedupIdx,
		authResolver:      authResolver,
		orch:              orch,
		estimator:         tokens.NewSimpleEstimator(),
		metrics:           metricsCollector,
		healthCheck:       healthCheck,
		versionInfo:       versionInfo,
		closeTokenSources: closeTokenSources,
		shutdownChan:      make(chan struct{}),
	}, nil
}

// Registry exposes the Provider Registry for admin tooling (reload, the
// providers CLI subcommand) that lives outside this package.
func (s *Server) Registry() *providers.Registry {
	return s.registry
}

// Tracker exposes the Health Tracker for periodic sweep scheduling.
func (s *Server) Tracker() *providers.Tracker {
	return s.tracker
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.proxyConfig.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.proxyConfig.ReadTimeout,
		WriteTimeout:   s.proxyConfig.WriteTimeout,
		IdleTimeout:    s.proxyConfig.IdleTimeout,
		MaxHeaderBytes: s.proxyConfig.MaxHeaderBytes,
	}

	if s.securityConfig.TLS.Enabled {
		tlsConfig, err := s.configureTLS()
		if err != nil {
			return fmt.Errorf("failed to configure TLS: %w", err)
		}
		s.httpServer.TLSConfig = tlsConfig

		if s.certReloader != nil {
			if err := s.certReloader.Start(ctx); err != nil {
				return fmt.Errorf("failed to start certificate reloader: %w", err)
			}
		}
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting balancer server",
			"address", s.proxyConfig.ListenAddress,
			"tls_enabled", s.securityConfig.TLS.Enabled,
		)

		var err error
		if s.securityConfig.TLS.Enabled {
			err = s.httpServer.ListenAndServeTLS(s.securityConfig.TLS.CertFile, s.securityConfig.TLS.KeyFile)
		} else {
			err = s.httpServer.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.proxyConfig.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.proxyConfig.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		if s.closeTokenSources != nil {
			s.closeTokenSources()
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("balancer server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	messagesHandler := handlers.NewMessagesHandler(s.orch)
	countTokensHandler := handlers.NewCountTokensHandler(s.estimator)
	providersHandler := handlers.NewProvidersHandler(s.registry, s.tracker)
	reloadHandler := handlers.NewReloadHandler(s.registry, s.configPath)
	livenessHandler := s.healthCheck.LivenessHandler()
	readinessHandler := s.healthCheck.ReadinessHandler()
	versionHandler := health.VersionHandler(s.versionInfo.Version, s.versionInfo.GitCommit, s.versionInfo.BuildDate)

	mux.Handle("/v1/messages", messagesHandler)
	mux.Handle("/v1/messages/count_tokens", countTokensHandler)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		livenessHandler(w, r)
	})
	mux.HandleFunc("/health", livenessHandler)
	mux.HandleFunc("/ready", readinessHandler)
	mux.HandleFunc("/version", versionHandler)
	mux.Handle("/health/providers", providersHandler)
	mux.Handle("/providers", providersHandler)
	mux.Handle("/providers/reload", reloadHandler)
	mux.Handle("/metrics", s.metrics.Handler())

	var handler http.Handler = mux

	handler = middleware.CORSMiddleware(s.convertCORSConfig())(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)

	return handler
}

// configureTLS builds the server's TLS configuration by delegating to
// pkg/security/tls, which honors the configured min version, cipher suite
// allowlist, and optional mTLS client-certificate verification. When
// cert_reload_interval is set, certificates are served through a
// CertificateReloader so renewed certs (e.g. Let's Encrypt) take effect
// without a restart.
func (s *Server) configureTLS() (*tls.Config, error) {
	secCfg := &sectls.Config{
		Enabled:        s.securityConfig.TLS.Enabled,
		CertFile:       s.securityConfig.TLS.CertFile,
		KeyFile:        s.securityConfig.TLS.KeyFile,
		MinVersion:     s.securityConfig.TLS.MinVersion,
		CipherSuites:   s.securityConfig.TLS.CipherSuites,
		ReloadInterval: s.securityConfig.TLS.ReloadInterval.String(),
		MTLS: sectls.MTLSConfig{
			Enabled:        s.securityConfig.TLS.MTLS.Enabled,
			ClientCAFile:   s.securityConfig.TLS.MTLS.ClientCAFile,
			ClientAuthType: s.securityConfig.TLS.MTLS.ClientAuthType,
			IdentitySource: s.securityConfig.TLS.MTLS.IdentitySource,
		},
	}

	tlsConfig, err := secCfg.ToTLSConfig()
	if err != nil {
		return nil, err
	}

	if s.securityConfig.TLS.ReloadInterval > 0 {
		s.certReloader = sectls.NewCertificateReloader(secCfg.CertFile, secCfg.KeyFile, s.securityConfig.TLS.ReloadInterval)
		tlsConfig.Certificates = nil
		tlsConfig.GetCertificate = s.certReloader.GetCertificateFunc()
	}

	return tlsConfig, nil
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler, for use in tests.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Health reports whether the server is running and at least one provider
// is healthy.
func (s *Server) Health() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return fmt.Errorf("server is not running")
	}

	for _, p := range s.registry.List() {
		if p.Enabled && s.tracker.IsHealthy(p.Name) {
			return nil
		}
	}
	return fmt.Errorf("no healthy providers available")
}

func (s *Server) convertCORSConfig() *middleware.CORSConfig {
	c := s.proxyConfig.CORS
	return &middleware.CORSConfig{
		Enabled:          c.Enabled,
		AllowedOrigins:   c.AllowedOrigins,
		AllowedMethods:   c.AllowedMethods,
		AllowedHeaders:   c.AllowedHeaders,
		ExposedHeaders:   c.ExposedHeaders,
		MaxAge:           c.MaxAge,
		AllowCredentials: c.AllowCredentials,
	}
}
