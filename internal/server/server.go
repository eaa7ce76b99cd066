// Package server provides the HTTP server and routing for the persona.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/persona/internal/database"
	"github.com/aristath/persona/internal/events"
	evaluationhandlers "github.com/aristath/persona/internal/modules/evaluation/handlers"
	markethandlers "github.com/aristath/persona/internal/modules/market/handlers"
	"github.com/aristath/persona/internal/modules/persona"
	portfoliohandlers "github.com/aristath/persona/internal/modules/portfolio/handlers"
	"github.com/aristath/persona/internal/modules/trading"
	tradinghandlers "github.com/aristath/persona/internal/modules/trading/handlers"
)

// Config holds server configuration
type Config struct {
	Log          zerolog.Logger
	Agent        *persona.Agent
	EventManager *events.Manager
	LedgerDB     *database.DB // nil when the ledger is disabled
	DataDir      string
	Port         int
	DevMode      bool
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	agent          *persona.Agent
	eventManager   *events.Manager
	ledgerDB       *database.DB
	tradeRepo      *trading.TradeRepository
	dataDir        string
	port           int
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		log:          cfg.Log.With().Str("component", "server").Logger(),
		agent:        cfg.Agent,
		eventManager: cfg.EventManager,
		ledgerDB:     cfg.LedgerDB,
		dataDir:      cfg.DataDir,
		port:         cfg.Port,
	}

	if cfg.LedgerDB != nil {
		s.tradeRepo = trading.NewTradeRepository(cfg.LedgerDB.Conn(), cfg.Log)
	}

	s.systemHandlers = NewSystemHandlers(cfg.Log, cfg.Agent, s.tradeRepo, cfg.LedgerDB)

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // The event stream is long-lived
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5, "application/json"))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Event stream (SSE) is exempt from the request timeout
		if s.eventManager != nil {
			r.Get("/events/stream", NewEventsStreamHandler(s.eventManager, s.log).ServeHTTP)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Route("/system", func(r chi.Router) {
				r.Get("/status", s.systemHandlers.HandleSystemStatus)
			})

			portfoliohandlers.NewHandler(s.agent, s.dataDir, s.log).RegisterRoutes(r)
			markethandlers.NewHandler(s.agent, s.log).RegisterRoutes(r)
			evaluationhandlers.NewHandler(s.agent, s.log).RegisterRoutes(r)

			// Keep the interface nil when there is no ledger
			var history tradinghandlers.TradeHistoryReader
			if s.tradeRepo != nil {
				history = s.tradeRepo
			}
			tradinghandlers.NewTradingHandlers(s.agent, history, s.log).RegisterRoutes(r)
		})
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
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

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
