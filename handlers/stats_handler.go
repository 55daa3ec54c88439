package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"almostArchiveAPI/internal/logger"
	"almostArchiveAPI/internal/types/story"
	"almostArchiveAPI/services"
)

type StatsHandler struct {
	statsService *services.StatsService
}

func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	snapshot, err := h.statsService.Compute(ctx, time.Now())
	if err != nil {
		logger.Log.Error("compute_stats_failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Loading stats failed, please try again")
		return
	}

	respondWithJSON(w, http.StatusOK, snapshot)
}

func (h *StatsHandler) GetMoods(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, story.MoodOptions)
}
