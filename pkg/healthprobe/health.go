// Package healthprobe provides liveness and readiness handlers. Each
// long-lived component registers itself by name; the process is ready
// only once every component is.
package healthprobe

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthChecker tracks per-component readiness.
type HealthChecker struct {
	startTime time.Time

	mu         sync.RWMutex
	components map[string]bool
}

// New creates a new HealthChecker.
func New() *HealthChecker {
	return &HealthChecker{
		startTime:  time.Now(),
		components: make(map[string]bool),
	}
}

// SetComponentReady marks one component's readiness. Registering a
// component not-ready before startup makes readiness gate on it.
func (h *HealthChecker) SetComponentReady(name string, ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.components[name] = ready
}

// SetReady marks or clears readiness for the whole process.
func (h *HealthChecker) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.components["app"] = ready
}

// IsReady reports whether every registered component is ready. No
// registered components means not ready.
func (h *HealthChecker) IsReady() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.components) == 0 {
		return false
	}

	for _, ready := range h.components {
		if !ready {
			return false
		}
	}

	return true
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status     string          `json:"status"`
	Uptime     string          `json:"uptime"`
	Components map[string]bool `json:"components,omitempty"`
	Message    string          `json:"message,omitempty"`
}

// Health returns an HTTP handler for liveness checks.
// Always returns 200 OK if the application is running.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status: "healthy",
			Uptime: time.Since(h.startTime).String(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// Ready returns an HTTP handler for readiness checks.
// Returns 200 OK if every component is ready, 503 otherwise.
func (h *HealthChecker) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.mu.RLock()
		components := make(map[string]bool, len(h.components))
		for name, ready := range h.components {
			components[name] = ready
		}
		h.mu.RUnlock()

		if !h.IsReady() {
			resp := HealthResponse{
				Status:     "not_ready",
				Components: components,
				Message:    "one or more components are not ready",
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(resp)
			return
		}

		resp := HealthResponse{
			Status:     "ready",
			Uptime:     time.Since(h.startTime).String(),
			Components: components,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
