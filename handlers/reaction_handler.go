package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"almostArchiveAPI/internal/logger"
	"almostArchiveAPI/internal/types/story"
	"almostArchiveAPI/middleware"
	"almostArchiveAPI/services"
)

type ReactionHandler struct {
	reactionService *services.ReactionService
}

func NewReactionHandler(reactionService *services.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactionService: reactionService}
}

// React records this browser's single reaction to a story. A browser that
// already reacted is turned away before anything reaches the store.
func (h *ReactionHandler) React(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]
	tracker := trackerFrom(ctx)
	if tracker.HasReacted(id) {
		respondWithError(w, http.StatusConflict, services.ErrAlreadyReacted.Error())
		return
	}

	var req story.ReactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Type.Valid() {
		respondWithError(w, http.StatusBadRequest, services.ErrInvalidReaction.Error())
		return
	}

	fingerprint, _ := middleware.GetFingerprint(ctx)
	event, err := h.reactionService.React(ctx, id, req.Type, fingerprint)
	if err != nil {
		if errors.Is(err, services.ErrStoryNotFound) {
			respondWithError(w, http.StatusNotFound, "story not found")
			return
		}
		logger.Log.Error("react_failed", zap.String("story_id", id), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Reacting failed, please try again")
		return
	}

	tracker.RecordReaction(id, req.Type)
	middleware.RecordReaction(string(req.Type))
	respondWithJSON(w, http.StatusCreated, event)
}

func (h *ReactionHandler) GetReactionOptions(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, story.ReactionOptions)
}
