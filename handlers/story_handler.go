package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"almostArchiveAPI/internal/archive"
	"almostArchiveAPI/internal/logger"
	"almostArchiveAPI/internal/types/comment"
	"almostArchiveAPI/internal/types/story"
	"almostArchiveAPI/middleware"
	"almostArchiveAPI/services"
)

type StoryHandler struct {
	storyService    *services.StoryService
	commentService  *services.CommentService
	reactionService *services.ReactionService
}

func NewStoryHandler(storyService *services.StoryService, commentService *services.CommentService, reactionService *services.ReactionService) *StoryHandler {
	return &StoryHandler{
		storyService:    storyService,
		commentService:  commentService,
		reactionService: reactionService,
	}
}

// StoryDetail is everything the story page renders.
type StoryDetail struct {
	Story           story.Story          `json:"story"`
	Comments        []comment.Comment    `json:"comments"`
	ReactionCounts  story.Reactions      `json:"reactionCounts"`
	UserReaction    story.ReactionType   `json:"userReaction,omitempty"`
	HasLiked        bool                 `json:"hasLiked"`
	HeartedComments []string             `json:"heartedComments"`
	Related         []story.RelatedStory `json:"related"`
}

// ListStories serves one page of the archive for the filters in the query.
func (h *StoryHandler) ListStories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	previews, err := h.storyService.ListPreviews(ctx)
	if err != nil {
		logger.Log.Error("list_stories_failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Loading stories failed, please try again")
		return
	}

	respondWithJSON(w, http.StatusOK, archive.Run(previews, stateFromQuery(r)))
}

func stateFromQuery(r *http.Request) archive.State {
	q := r.URL.Query()

	moods := make([]story.MoodType, 0, len(q["mood"]))
	for _, m := range q["mood"] {
		moods = append(moods, story.MoodType(m))
	}
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil {
		page = 1
	}

	return archive.NewState().
		WithSearch(q.Get("q")).
		WithMoods(moods).
		WithTags(q["tag"]).
		WithSort(archive.ParseSort(q.Get("sort"))).
		WithPage(page).
		Since(q.Get("state"))
}

func (h *StoryHandler) GetTags(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	previews, err := h.storyService.ListPreviews(ctx)
	if err != nil {
		logger.Log.Error("list_tags_failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Loading tags failed, please try again")
		return
	}

	respondWithJSON(w, http.StatusOK, archive.AllTags(previews))
}

// GetStory serves the story page. The first view from a browser bumps the
// read counter; comments, counts and related stories degrade to empty when
// their loads fail.
func (h *StoryHandler) GetStory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]
	st, err := h.storyService.GetStory(ctx, id)
	if errors.Is(err, services.ErrStoryNotFound) {
		respondWithError(w, http.StatusNotFound, "story not found")
		return
	}
	if err != nil {
		logger.Log.Error("get_story_failed", zap.String("story_id", id), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Loading the story failed, please try again")
		return
	}

	tracker := trackerFrom(ctx)
	if tracker.RecordView(id) {
		if err := h.storyService.IncrementRead(ctx, id); err != nil {
			logger.Log.Warn("increment_read_failed", zap.String("story_id", id), zap.Error(err))
		} else {
			st.ReadCount++
			middleware.RecordStoryView()
		}
	}

	detail := StoryDetail{
		Story:           *st,
		Comments:        []comment.Comment{},
		HasLiked:        tracker.HasLikedStory(id),
		HeartedComments: []string{},
		Related:         []story.RelatedStory{},
	}
	if reaction, ok := tracker.ReactionFor(id); ok {
		detail.UserReaction = reaction
	}

	if comments, err := h.commentService.List(ctx, id); err != nil {
		logger.Log.Warn("list_comments_failed", zap.String("story_id", id), zap.Error(err))
	} else {
		detail.Comments = comments
		for _, c := range comments {
			if tracker.HasLiked(c.ID) {
				detail.HeartedComments = append(detail.HeartedComments, c.ID)
			}
		}
	}

	if counts, err := h.reactionService.Counts(ctx, id); err != nil {
		logger.Log.Warn("reaction_counts_failed", zap.String("story_id", id), zap.Error(err))
	} else {
		detail.ReactionCounts = counts
	}

	if related, err := h.storyService.Related(ctx, *st); err != nil {
		logger.Log.Warn("related_stories_failed", zap.String("story_id", id), zap.Error(err))
	} else if related != nil {
		detail.Related = related
	}

	respondWithJSON(w, http.StatusOK, detail)
}

func (h *StoryHandler) SubmitStory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req story.StorySubmission
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.storyService.Submit(ctx, req)
	if err != nil {
		if respondWithValidation(w, err) {
			middleware.RecordValidationFailure("story")
			return
		}
		logger.Log.Error("submit_story_failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Submitting your story failed, please try again")
		return
	}

	middleware.RecordStorySubmitted()
	respondWithJSON(w, http.StatusCreated, resp)
}

// LikeStory is the one-tap like from the archive grid.
func (h *StoryHandler) LikeStory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]
	tracker := trackerFrom(ctx)
	if tracker.HasLikedStory(id) {
		respondWithError(w, http.StatusConflict, services.ErrAlreadyLiked.Error())
		return
	}

	if err := h.storyService.LikeStory(ctx, id); err != nil {
		if errors.Is(err, services.ErrStoryNotFound) {
			respondWithError(w, http.StatusNotFound, "story not found")
			return
		}
		logger.Log.Error("like_story_failed", zap.String("story_id", id), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Liking the story failed, please try again")
		return
	}

	tracker.RecordStoryLike(id)
	middleware.RecordReaction("like")
	respondWithJSON(w, http.StatusOK, map[string]bool{"liked": true})
}
