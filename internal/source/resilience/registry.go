package resilience

import (
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// SourceHealth is a point-in-time health view of one upstream source.
type SourceHealth struct {
	Name          string
	CircuitState  gobreaker.State
	Counts        gobreaker.Counts
	LastSuccessAt *time.Time
	LastFailureAt *time.Time
	LastError     string
}

// Healthy reports whether the source's breaker is closed.
func (h *SourceHealth) Healthy() bool { return h.CircuitState == gobreaker.StateClosed }

// Degraded reports whether the breaker is probing in half-open state.
func (h *SourceHealth) Degraded() bool { return h.CircuitState == gobreaker.StateHalfOpen }

// Registry tracks the resilient clients for all upstream data sources
// so operational endpoints can report per-source health.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]*trackedSource
}

type trackedSource struct {
	client        *Client
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]*trackedSource)}
}

// Register adds a source client under the given name, replacing any
// previous registration.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[name] = &trackedSource{client: client}
}

// RecordSuccess notes a successful fetch from the named source.
func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sources[name]; ok {
		now := time.Now()
		s.lastSuccessAt = &now
	}
}

// RecordFailure notes a failed fetch from the named source.
func (r *Registry) RecordFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sources[name]; ok {
		now := time.Now()
		s.lastFailureAt = &now
		if err != nil {
			s.lastError = err.Error()
		}
	}
}

// Health returns the health of a single source, or nil if unknown.
func (r *Registry) Health(name string) *SourceHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[name]
	if !ok {
		return nil
	}
	return snapshotHealth(name, s)
}

// AllHealth returns the health of every registered source.
func (r *Registry) AllHealth() []*SourceHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*SourceHealth, 0, len(r.sources))
	for name, s := range r.sources {
		out = append(out, snapshotHealth(name, s))
	}
	return out
}

// Count returns the number of registered sources.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources)
}

func snapshotHealth(name string, s *trackedSource) *SourceHealth {
	return &SourceHealth{
		Name:          name,
		CircuitState:  s.client.BreakerState(),
		Counts:        s.client.BreakerCounts(),
		LastSuccessAt: s.lastSuccessAt,
		LastFailureAt: s.lastFailureAt,
		LastError:     s.lastError,
	}
}
