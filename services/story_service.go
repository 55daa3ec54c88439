package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"almostArchiveAPI/internal/archive"
	"almostArchiveAPI/internal/docstore"
	"almostArchiveAPI/internal/logger"
	"almostArchiveAPI/internal/types/story"
	"almostArchiveAPI/internal/validation"
	"almostArchiveAPI/utils"
)

const submittedMessage = "Your story has been added to the archive."

type StoryService struct {
	store     docstore.Store
	validator *validation.Validator
	now       func() time.Time
}

func NewStoryService(store docstore.Store, validator *validation.Validator) *StoryService {
	return &StoryService{store: store, validator: validator, now: time.Now}
}

// ListStories loads every published story in load order.
func (s *StoryService) ListStories(ctx context.Context) ([]story.Story, error) {
	docs, err := s.store.List(ctx, story.CollectionStories, docstore.Eq("isPublished", true))
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	stories := make([]story.Story, 0, len(docs))
	for _, d := range docs {
		stories = append(stories, story.FromDocument(d.ID, d.Data))
	}
	return stories, nil
}

func (s *StoryService) ListPreviews(ctx context.Context) ([]story.StoryPreview, error) {
	stories, err := s.ListStories(ctx)
	if err != nil {
		return nil, err
	}
	previews := make([]story.StoryPreview, len(stories))
	for i, st := range stories {
		previews[i] = st.Preview()
	}
	return previews, nil
}

// GetStory returns ErrStoryNotFound for missing and unpublished stories.
func (s *StoryService) GetStory(ctx context.Context, id string) (*story.Story, error) {
	data, err := s.store.Get(ctx, story.CollectionStories, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrStoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get story %s: %w", id, err)
	}
	st := story.FromDocument(id, data)
	if !st.IsPublished {
		return nil, ErrStoryNotFound
	}
	return &st, nil
}

// Submit validates and stores a new story. A failed validation comes back
// as validation.Errors and nothing is written.
func (s *StoryService) Submit(ctx context.Context, sub story.StorySubmission) (*story.SubmissionResponse, error) {
	sub.Tags = validation.NormalizeTags(sub.Tags)
	if errs := s.validator.ValidateStory(sub); len(errs) > 0 {
		return nil, errs
	}

	mood, _ := story.LookupMood(sub.Mood)
	now := s.now().UTC()
	st := story.Story{
		Title:         strings.TrimSpace(sub.Title),
		Body:          strings.TrimSpace(sub.Body),
		AuthorName:    strings.TrimSpace(sub.AuthorName),
		DateOfMemory:  strings.TrimSpace(sub.DateOfMemory),
		DateSubmitted: now,
		Tags:          sub.Tags,
		Mood:          mood,
		IsPublished:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	st.Slug = utils.Slugify(st.Title)

	id, err := s.store.Create(ctx, story.CollectionStories, st.Document())
	if err != nil {
		return nil, fmt.Errorf("failed to create story: %w", err)
	}

	logger.Log.Info("story_submitted",
		zap.String("story_id", id),
		zap.String("mood", string(st.Mood.Type)),
		zap.Int("tags", len(st.Tags)),
	)
	return &story.SubmissionResponse{StoryID: id, Slug: st.Slug, Message: submittedMessage}, nil
}

func (s *StoryService) IncrementRead(ctx context.Context, id string) error {
	return s.increment(ctx, id, "readCount")
}

// LikeStory is the archive quick-like: it only bumps reactions.total.
func (s *StoryService) LikeStory(ctx context.Context, id string) error {
	return s.increment(ctx, id, "reactions.total")
}

func (s *StoryService) increment(ctx context.Context, id, field string) error {
	err := s.store.Increment(ctx, story.CollectionStories, id, field, 1)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrStoryNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to increment %s on story %s: %w", field, id, err)
	}
	return nil
}

func (s *StoryService) Related(ctx context.Context, target story.Story) ([]story.RelatedStory, error) {
	previews, err := s.ListPreviews(ctx)
	if err != nil {
		return nil, err
	}
	return archive.Related(target, previews, story.RelatedStoriesCount), nil
}
