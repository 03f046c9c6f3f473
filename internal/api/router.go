// Package api provides the HTTP API for the crop recommendation
// service.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/khusa71/agritech-chat-assistant/internal/api/handler"
	"github.com/khusa71/agritech-chat-assistant/internal/api/middleware"
	"github.com/khusa71/agritech-chat-assistant/internal/crop"
	"github.com/khusa71/agritech-chat-assistant/internal/location"
	"github.com/khusa71/agritech-chat-assistant/internal/recommend"
	"github.com/khusa71/agritech-chat-assistant/internal/source/resilience"
)

// RouterConfig holds the router's dependencies.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger
	Metrics   *middleware.Metrics
	Catalog   *crop.Catalog
	Locations *location.Service
	Ranker    *recommend.Ranker
	Registry  *resilience.Registry
}

// NewRouter creates a chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS)
	r.Use(middleware.ContentTypeJSON)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Catalog, cfg.Registry, cfg.Locations)
	cropHandler := handler.NewCropHandler(cfg.Catalog)
	snapshotHandler := handler.NewSnapshotHandler(cfg.Locations)
	recommendHandler := handler.NewRecommendHandler(cfg.Locations, cfg.Ranker)

	// Snapshot and recommendation calls fan out to four upstream
	// sources, so they get the tight budget.
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Crop catalog (read-only) - standard rate limiting
		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/crops", cropHandler.List)
			r.Get("/crops:by-month", cropHandler.ByMonth)
			r.Get("/crops/{name}", cropHandler.Get)
		})

		// Aggregation endpoints - strict rate limiting
		r.With(expensiveRateLimit).Post("/snapshots:fetch", snapshotHandler.FetchSnapshot)
		r.With(expensiveRateLimit).Post("/recommendations:compute", recommendHandler.ComputeRecommendations)
	})

	return r
}
