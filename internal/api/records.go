package api

import (
	"net/http"
	"strconv"

	"infinite-experiment/bouncer/internal/config"
	"infinite-experiment/bouncer/internal/logging"
	"infinite-experiment/bouncer/internal/models/dtos/responses"

	"github.com/go-chi/chi/v5"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

// RecordHandler handles GET /api/v1/records/{userID}
func (h *Handlers) RecordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		if !config.Snowflake(userID).Valid() {
			respondWithError(w, http.StatusBadRequest, "userID must be a Discord snowflake")
			return
		}

		rec, err := h.deps.Records.Find(r.Context(), userID)
		if err != nil {
			logging.Error("Failed to fetch record", "user_id", userID, "error", err.Error())
			respondWithError(w, http.StatusInternalServerError, "failed to fetch record")
			return
		}
		if rec == nil {
			respondWithError(w, http.StatusNotFound, "record not found")
			return
		}

		respondWithSuccess(w, http.StatusOK, responses.NewRecordResponse(rec))
	}
}

// StatsHandler handles GET /api/v1/stats?limit=N
func (h *Handlers) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultRecentLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = min(n, maxRecentLimit)
		}

		counts, err := h.deps.Stats.CountByStatus(r.Context())
		if err != nil {
			logging.Error("Failed to count records", "error", err.Error())
			respondWithError(w, http.StatusInternalServerError, "failed to load stats")
			return
		}
		recent, err := h.deps.Stats.RecentInterviews(r.Context(), limit)
		if err != nil {
			logging.Error("Failed to load recent interviews", "error", err.Error())
			respondWithError(w, http.StatusInternalServerError, "failed to load stats")
			return
		}

		respondWithSuccess(w, http.StatusOK, &responses.StatsResponse{
			Records:          counts,
			RecentInterviews: recent,
		})
	}
}
