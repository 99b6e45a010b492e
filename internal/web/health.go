package web

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// Pinger is the reachability probe the readiness check runs against the
// remote scheduling API.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	upstream Pinger
	redis    *redis.Client
	env      string
	version  string
}

func NewHealthHandler(upstream Pinger, redis *redis.Client, env, version string) *HealthHandler {
	return &HealthHandler{
		upstream: upstream,
		redis:    redis,
		env:      env,
		version:  version,
	}
}

type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Env     string `json:"env,omitempty"`
}

type ReadinessResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version,omitempty"`
	Env          string            `json:"env,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	resp := LivenessResponse{
		Status:  "ok",
		Version: h.version,
		Env:     h.env,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string)
	status := "ok"

	// Check the scheduling API
	upCtx, upCancel := context.WithTimeout(ctx, 1*time.Second)
	err := h.upstream.Ping(upCtx)
	upCancel()
	if err != nil {
		deps["scheduling_api"] = "down"
		status = "error"
	} else {
		deps["scheduling_api"] = "ok"
	}

	// Check Redis (session store)
	redisCtx, redisCancel := context.WithTimeout(ctx, 1*time.Second)
	err = h.redis.Ping(redisCtx).Err()
	redisCancel()
	if err != nil {
		deps["redis"] = "down"
		if status == "ok" {
			status = "degraded"
		} else {
			status = "error"
		}
	} else {
		deps["redis"] = "ok"
	}

	resp := ReadinessResponse{
		Status:       status,
		Version:      h.version,
		Env:          h.env,
		Dependencies: deps,
	}

	httpStatus := http.StatusOK
	if status == "error" {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
