package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"almostArchiveAPI/internal/docstore"
	"almostArchiveAPI/internal/logger"
	"almostArchiveAPI/internal/types/story"
)

type ReactionService struct {
	store docstore.Store
	now   func() time.Time
}

func NewReactionService(store docstore.Store) *ReactionService {
	return &ReactionService{store: store, now: time.Now}
}

// React bumps the story tally for t and records the event. The tally is
// written first so a missing story leaves no orphan event behind.
func (s *ReactionService) React(ctx context.Context, storyID string, t story.ReactionType, fingerprint string) (*story.UserReaction, error) {
	key, ok := t.FieldKey()
	if !ok {
		return nil, ErrInvalidReaction
	}

	for _, field := range []string{"reactions." + key, "reactions.total"} {
		err := s.store.Increment(ctx, story.CollectionStories, storyID, field, 1)
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrStoryNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to increment %s: %w", field, err)
		}
	}

	event := story.UserReaction{
		StoryID:         storyID,
		ReactionType:    t,
		Timestamp:       s.now().UTC(),
		UserFingerprint: fingerprint,
	}
	id, err := s.store.Create(ctx, story.CollectionReactions, event.Document())
	if err != nil {
		return nil, fmt.Errorf("failed to record reaction: %w", err)
	}
	event.ID = id

	logger.Log.Info("reaction_recorded",
		zap.String("story_id", storyID),
		zap.String("type", string(t)),
	)
	return &event, nil
}

// Counts aggregates the reaction events of a story by type.
func (s *ReactionService) Counts(ctx context.Context, storyID string) (story.Reactions, error) {
	docs, err := s.store.List(ctx, story.CollectionReactions, docstore.Eq("storyId", storyID))
	if err != nil {
		return story.Reactions{}, fmt.Errorf("failed to list reactions: %w", err)
	}

	var counts story.Reactions
	for _, d := range docs {
		switch story.ReactionFromDocument(d.ID, d.Data).ReactionType {
		case story.ReactionHeartbroken:
			counts.Heartbroken++
		case story.ReactionLol:
			counts.Lol++
		case story.ReactionHug:
			counts.Hug++
		case story.ReactionExSucks:
			counts.ExSucks++
		default:
			continue
		}
		counts.Total++
	}
	return counts, nil
}
