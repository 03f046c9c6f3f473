// Package handler provides the HTTP handlers for the API.
package handler

import (
	"net/http"

	"github.com/khusa71/agritech-chat-assistant/internal/api/models"
	"github.com/khusa71/agritech-chat-assistant/internal/api/response"
	"github.com/khusa71/agritech-chat-assistant/internal/crop"
	"github.com/khusa71/agritech-chat-assistant/internal/location"
	"github.com/khusa71/agritech-chat-assistant/internal/source/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	catalog   *crop.Catalog
	registry  *resilience.Registry
	locations *location.Service
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, catalog *crop.Catalog, registry *resilience.Registry, locations *location.Service) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		catalog:   catalog,
		registry:  registry,
		locations: locations,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.HealthResponse{
		Status:    "ok",
		Version:   h.version,
		BuildTime: h.buildTime,
	})
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The
// service is ready when the crop catalog is loaded and at least one
// upstream source is registered.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"catalog": "ok",
		"sources": "ok",
	}
	status := "ok"

	if h.catalog == nil || h.catalog.Len() == 0 {
		checks["catalog"] = "empty"
		status = "degraded"
	}
	if h.registry == nil || h.registry.Count() == 0 {
		checks["sources"] = "none registered"
		status = "degraded"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, r, code, models.ReadinessResponse{Status: status, Checks: checks})
}

// SystemStatus handles GET /v1/ops/status - source circuit breaker and
// cache status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	sources := make([]models.SourceStatus, 0)
	status := "ok"

	if h.registry != nil {
		for _, health := range h.registry.AllHealth() {
			if !health.Healthy() {
				status = "degraded"
			}
			sources = append(sources, models.SourceStatusFrom(health))
		}
	}

	resp := models.SystemStatusResponse{
		Status:  status,
		Sources: sources,
	}
	if h.locations != nil {
		resp.Cache = models.CacheStatusFrom(h.locations.CacheStats())
	}

	response.JSON(w, r, http.StatusOK, resp)
}
