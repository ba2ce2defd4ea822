package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"infinite-experiment/bouncer/internal/models/entities"
)

const pingTimeout = 2 * time.Second

// HealthCheckHandler handles GET /healthCheck. It reports 503 until the
// operating context is resolved or when a backing store is unreachable.
func (h *Handlers) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		services := make(map[string]entities.ServiceStatus)
		services["database"] = pingStatus(ctx, h.deps.Stats, "Database connected")
		if h.deps.Cache != nil {
			services["redis"] = pingStatus(ctx, h.deps.Cache, "Redis connected")
		}

		resp := entities.HealthCheckResponse{
			Services: services,
			UpSince:  h.deps.UpSince,
			Uptime:   time.Since(h.deps.UpSince).Round(time.Second).String(),
		}

		if opCtx, ok := h.deps.State.Current(); ok {
			resp.Guild = opCtx.Guild.Name
			services["context"] = entities.ServiceStatus{Status: "ok", Details: "Resolved for guild " + opCtx.Guild.ID}
		} else {
			services["context"] = entities.ServiceStatus{Status: "down", Details: "Operating context not resolved"}
		}

		resp.Status = "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				resp.Status = "down"
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status != "ok" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func pingStatus(ctx context.Context, p Pinger, ok string) entities.ServiceStatus {
	if err := p.Ping(ctx); err != nil {
		return entities.ServiceStatus{Status: "down", Details: err.Error()}
	}
	return entities.ServiceStatus{Status: "ok", Details: ok}
}
