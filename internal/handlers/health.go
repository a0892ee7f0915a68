package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/velours-paris/api/internal/repositories"
)

const defaultReadinessTimeout = 1500 * time.Millisecond

// BuildInfo identifies the running binary in health payloads.
type BuildInfo struct {
	Version     string
	CommitSHA   string
	Environment string
	StartedAt   time.Time
}

// HealthHandlers serves the /healthz liveness and /readyz readiness probes.
type HealthHandlers struct {
	build     BuildInfo
	readiness repositories.HealthRepository
	timeout   time.Duration
	clock     func() time.Time
}

// HealthOption customises HealthHandlers construction.
type HealthOption func(*HealthHandlers)

// WithHealthBuildInfo attaches build metadata to health payloads.
func WithHealthBuildInfo(info BuildInfo) HealthOption {
	return func(h *HealthHandlers) {
		h.build = info
	}
}

// WithHealthReadiness wires the downstream probe executed by /readyz.
func WithHealthReadiness(repo repositories.HealthRepository) HealthOption {
	return func(h *HealthHandlers) {
		h.readiness = repo
	}
}

// WithHealthClock injects a custom clock, primarily for tests.
func WithHealthClock(clock func() time.Time) HealthOption {
	return func(h *HealthHandlers) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// NewHealthHandlers constructs the health endpoints.
func NewHealthHandlers(opts ...HealthOption) *HealthHandlers {
	h := &HealthHandlers{
		build:   BuildInfo{StartedAt: time.Now()},
		timeout: defaultReadinessTimeout,
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Healthz reports process liveness with build metadata.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	now := h.clock()
	payload := map[string]any{
		"status":    "ok",
		"uptime":    now.Sub(h.build.StartedAt).String(),
		"timestamp": now.UTC().Format(time.RFC3339),
	}
	if h.build.Version != "" {
		payload["version"] = h.build.Version
	}
	if h.build.CommitSHA != "" {
		payload["commitSha"] = h.build.CommitSHA
	}
	if h.build.Environment != "" {
		payload["environment"] = h.build.Environment
	}
	writeHealthJSON(w, http.StatusOK, payload)
}

// Readyz verifies downstream dependencies and reports 503 when any fails.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"status":    "ok",
		"timestamp": h.clock().UTC().Format(time.RFC3339),
	}

	if h.readiness != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		start := h.clock()
		if err := h.readiness.Ping(ctx); err != nil {
			payload["status"] = "degraded"
			payload["details"] = []string{"firestore: " + err.Error()}
			writeHealthJSON(w, http.StatusServiceUnavailable, payload)
			return
		}
		payload["checks"] = map[string]any{
			"firestore": map[string]any{
				"status":  "ok",
				"latency": h.clock().Sub(start).String(),
			},
		}
	}

	writeHealthJSON(w, http.StatusOK, payload)
}

func writeHealthJSON(w http.ResponseWriter, status int, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
