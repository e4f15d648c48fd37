// Package server exposes dashboard sessions over HTTP for the browser UI.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Config holds server configuration
type Config struct {
	Log        zerolog.Logger
	Sessions   *SessionRegistry
	APIBaseURL string
	Port       int
	DevMode    bool
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	port           int
	sessions       *SessionRegistry
	systemHandlers *SystemHandlers
	eventsStream   *EventsStreamHandler
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		port:           cfg.Port,
		sessions:       cfg.Sessions,
		systemHandlers: NewSystemHandlers(cfg.Sessions, cfg.APIBaseURL, cfg.Log),
		eventsStream:   NewEventsStreamHandler(cfg.Log),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "If-None-Match"},
		ExposedHeaders:   []string{"ETag"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5, "application/json"))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.systemHandlers.HandleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Use(s.sessionMiddleware)

			// Long-lived; kept outside the request timeout.
			r.Get("/events", s.eventsStream.ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(60 * time.Second))

				r.Delete("/", s.handleDeleteSession)
				r.Get("/state", s.handleState)

				r.Post("/dashboard/load", s.handleLoadDashboard)

				r.Route("/transactions", func(r chi.Router) {
					r.Post("/load", s.handleLoadTransactions)
					r.Post("/next", s.handleNextPage)
					r.Post("/prev", s.handlePrevPage)
					r.Post("/types", s.handleLoadTransactionTypes)
					r.Post("/search", s.handleSearchTransactions)
					r.Put("/filters", s.handleSetFilters)
					r.Post("/filters/reset", s.handleResetFilters)
					r.Get("/{txID}", s.handleGetTransaction)
					r.Delete("/{txID}", s.handleDeleteTransaction)
				})

				r.Route("/customers", func(r chi.Router) {
					r.Post("/load", s.handleLoadCustomers)
					r.Post("/next", s.handleNextCustomersPage)
					r.Post("/prev", s.handlePrevCustomersPage)
					r.Post("/top", s.handleLoadTopCustomers)
					r.Post("/search", s.handleSearchCustomer)
					r.Delete("/profile", s.handleClearCustomerProfile)
					r.Get("/{customerID}", s.handleGetCustomerProfile)
					r.Post("/{customerID}/transactions", s.handleLoadCustomerTransactions)
				})

				r.Post("/fraud/load", s.handleLoadFraud)
				r.Post("/fraud/predict", s.handlePredictFraud)
				r.Post("/stats/load", s.handleLoadStats)
				r.Post("/cache/invalidate", s.handleInvalidateCache)
			})
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
