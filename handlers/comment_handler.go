package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"almostArchiveAPI/internal/logger"
	"almostArchiveAPI/internal/types/comment"
	"almostArchiveAPI/middleware"
	"almostArchiveAPI/services"
)

type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]
	comments, err := h.commentService.List(ctx, id)
	if err != nil {
		logger.Log.Error("list_comments_failed", zap.String("story_id", id), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Loading comments failed, please try again")
		return
	}

	respondWithJSON(w, http.StatusOK, comments)
}

func (h *CommentHandler) SubmitComment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]
	var req comment.CommentSubmission
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c, err := h.commentService.Submit(ctx, id, req)
	if err != nil {
		if respondWithValidation(w, err) {
			middleware.RecordValidationFailure("comment")
			return
		}
		if errors.Is(err, services.ErrStoryNotFound) {
			respondWithError(w, http.StatusNotFound, "story not found")
			return
		}
		logger.Log.Error("submit_comment_failed", zap.String("story_id", id), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Posting your comment failed, please try again")
		return
	}

	respondWithJSON(w, http.StatusCreated, c)
}

// HeartComment adds this browser's single heart to a comment.
func (h *CommentHandler) HeartComment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]
	tracker := trackerFrom(ctx)
	if tracker.HasLiked(id) {
		respondWithError(w, http.StatusConflict, services.ErrAlreadyHearted.Error())
		return
	}

	if err := h.commentService.Heart(ctx, id); err != nil {
		if errors.Is(err, services.ErrCommentNotFound) {
			respondWithError(w, http.StatusNotFound, "comment not found")
			return
		}
		logger.Log.Error("heart_comment_failed", zap.String("comment_id", id), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Hearting the comment failed, please try again")
		return
	}

	tracker.RecordLike(id)
	middleware.RecordReaction("heart")
	respondWithJSON(w, http.StatusOK, map[string]bool{"hearted": true})
}
