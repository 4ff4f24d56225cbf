package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"
)

const healthProbeTimeout = 2 * time.Second

// Check is one dependency probe reported by the health endpoint.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

type HealthHandler struct {
	checks    []Check
	version   string
	startedAt time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(version string, checks ...Check) *HealthHandler {
	return &HealthHandler{
		checks:    checks,
		version:   version,
		startedAt: time.Now(),
	}
}

// Handle serves GET and HEAD /api/health. HEAD is the site's warm-up probe and
// gets the status code only. Any failing dependency turns the answer into 503.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()

	deps, healthy := h.probe(ctx)

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(code)
		return
	}

	writeJSON(w, code, HealthResponse{
		Status:       status,
		Version:      h.version,
		Uptime:       time.Since(h.startedAt).Round(time.Second).String(),
		Dependencies: deps,
	})
}

func (h *HealthHandler) probe(ctx context.Context) (map[string]string, bool) {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		deps    = make(map[string]string, len(h.checks))
		healthy = true
	)
	for _, c := range h.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.Probe(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				deps[c.Name] = "unhealthy: " + err.Error()
				healthy = false
				return
			}
			deps[c.Name] = "healthy"
		}()
	}
	wg.Wait()
	return deps, healthy
}
