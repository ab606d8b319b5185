// Package api provides the HTTP API server and handlers for the PromptVault application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/promptvaultapp/promptvault-server/internal/backup"
	"github.com/promptvaultapp/promptvault-server/internal/config"
	"github.com/promptvaultapp/promptvault-server/internal/service"
	"github.com/promptvaultapp/promptvault-server/internal/validation"
)

// Version is the API version reported by the health endpoint and the
// OpenAPI document.
const Version = "1.0.0"

// Server holds dependencies for HTTP handlers.
type Server struct {
	config    *config.Config
	prompts   *service.PromptService
	backups   *backup.Service
	validator *validation.Validator
	router    *chi.Mux
	api       huma.API
	logger    *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, prompts *service.PromptService, backups *backup.Service, logger *slog.Logger) *Server {
	s := &Server{
		config:    cfg,
		prompts:   prompts,
		backups:   backups,
		validator: validation.New(),
		router:    chi.NewRouter(),
		logger:    logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("PromptVault API", Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "API key",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerPromptRoutes()
	s.registerVersionRoutes()
	s.registerRenderRoutes()
	s.registerStatsRoutes()
	s.registerBackupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack. Order matters: rate
// limiting runs before auth so brute forcing a key costs tokens too.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	if s.config.RateLimit.RequestsPerSecond > 0 {
		limiter := NewRateLimiter(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst)
		s.router.Use(RateLimitMiddleware(limiter, s.logger))
	}

	s.router.Use(s.requireAPIKey)
}
