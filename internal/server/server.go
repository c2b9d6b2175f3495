package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/merchke/storefront/config"
	"github.com/merchke/storefront/internal/apiclient"
	"github.com/merchke/storefront/internal/endpoints"
	"github.com/merchke/storefront/internal/handlers"
	"github.com/merchke/storefront/internal/storage"
	"github.com/sirupsen/logrus"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	store      *storage.Storage
	log        logrus.FieldLogger
}

// New opens the configured credential storage and builds the gateway.
func New(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (*Server, error) {
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	router, err := NewRouter(store, cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	port := cfg.Server.Port
	if port == 0 {
		port = 3000
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		store:      store,
		log:        logger,
	}, nil
}

// NewRouter mounts every gateway route. Visitor credentials are kept in
// store.
func NewRouter(store *storage.Storage, cfg config.Config, logger logrus.FieldLogger) (*chi.Mux, error) {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	opts := apiclient.Options{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout}

	healthClient, err := apiclient.New(storage.NewStorage(storage.NewMemoryBackend()), opts)
	if err != nil {
		return nil, err
	}
	visitors := handlers.NewVisitorFactory(store, opts, cfg.Server.CookieSecure, logger)
	loginPath := cfg.Server.LoginPath

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		handlers.RequestLogger(logger),
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz(endpoints.New(healthClient)))

	router.Group(func(r chi.Router) {
		r.Use(visitors.Middleware)
		r.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, logger, loginPath)
		})
		handlers.StorefrontRouter(r, logger, loginPath)
		r.Route("/admin", func(r chi.Router) {
			handlers.AdminRouter(r, logger, loginPath)
		})
	})

	return router, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("storefront gateway listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and releases the credential storage.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if cerr := s.store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
