package models

import (
	"time"

	"github.com/khusa71/agritech-chat-assistant/internal/location"
	"github.com/khusa71/agritech-chat-assistant/internal/source/resilience"
)

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	BuildTime string `json:"buildTime,omitempty"`
}

// ReadinessResponse is the readiness payload.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// SourceStatus reports the health of one upstream data source.
type SourceStatus struct {
	Name          string     `json:"name"`
	CircuitState  string     `json:"circuitState"`
	Healthy       bool       `json:"healthy"`
	LastSuccessAt *time.Time `json:"lastSuccessAt,omitempty"`
	LastFailureAt *time.Time `json:"lastFailureAt,omitempty"`
	LastError     string     `json:"lastError,omitempty"`
}

// CacheStatus reports snapshot cache counters.
type CacheStatus struct {
	Entries   int    `json:"entries"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// SystemStatusResponse is the full operational status payload.
type SystemStatusResponse struct {
	Status  string         `json:"status"`
	Sources []SourceStatus `json:"sources"`
	Cache   CacheStatus    `json:"cache"`
}

// SourceStatusFrom converts registry health into the wire shape.
func SourceStatusFrom(h *resilience.SourceHealth) SourceStatus {
	return SourceStatus{
		Name:          h.Name,
		CircuitState:  h.CircuitState.String(),
		Healthy:       h.Healthy(),
		LastSuccessAt: h.LastSuccessAt,
		LastFailureAt: h.LastFailureAt,
		LastError:     h.LastError,
	}
}

// CacheStatusFrom converts cache stats into the wire shape.
func CacheStatusFrom(s location.CacheStats) CacheStatus {
	return CacheStatus{
		Entries:   s.Entries,
		Hits:      s.Hits,
		Misses:    s.Misses,
		Evictions: s.Evictions,
	}
}
