package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"almostArchiveAPI/internal/docstore"
	"almostArchiveAPI/internal/logger"
	"almostArchiveAPI/internal/types/comment"
	"almostArchiveAPI/internal/types/story"
	"almostArchiveAPI/internal/validation"
)

type CommentService struct {
	store     docstore.Store
	validator *validation.Validator
	now       func() time.Time
}

func NewCommentService(store docstore.Store, validator *validation.Validator) *CommentService {
	return &CommentService{store: store, validator: validator, now: time.Now}
}

// List returns the comments of a story, newest first.
func (s *CommentService) List(ctx context.Context, storyID string) ([]comment.Comment, error) {
	docs, err := s.store.List(ctx, story.CollectionComments, docstore.Eq("storyId", storyID))
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	comments := decodeComments(docs)
	slices.SortStableFunc(comments, func(a, b comment.Comment) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return comments, nil
}

// ListAll loads every comment of the archive.
func (s *CommentService) ListAll(ctx context.Context) ([]comment.Comment, error) {
	docs, err := s.store.List(ctx, story.CollectionComments)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return decodeComments(docs), nil
}

func decodeComments(docs []docstore.Document) []comment.Comment {
	comments := make([]comment.Comment, 0, len(docs))
	for _, d := range docs {
		comments = append(comments, comment.FromDocument(d.ID, d.Data))
	}
	return comments
}

// Submit validates and stores a supportive comment on storyID. Email is
// checked but never written.
func (s *CommentService) Submit(ctx context.Context, storyID string, sub comment.CommentSubmission) (*comment.Comment, error) {
	if errs := s.validator.ValidateComment(sub); len(errs) > 0 {
		return nil, errs
	}

	if _, err := s.store.Get(ctx, story.CollectionStories, storyID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrStoryNotFound
		}
		return nil, fmt.Errorf("failed to get story %s: %w", storyID, err)
	}

	c := comment.Comment{
		StoryID:    storyID,
		AuthorName: strings.TrimSpace(sub.AuthorName),
		Body:       strings.TrimSpace(sub.Body),
		Timestamp:  s.now().UTC(),
		IsSupport:  true,
	}
	id, err := s.store.Create(ctx, story.CollectionComments, c.Document())
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	c.ID = id

	logger.Log.Info("comment_submitted", zap.String("story_id", storyID), zap.String("comment_id", id))
	return &c, nil
}

func (s *CommentService) Heart(ctx context.Context, commentID string) error {
	err := s.store.Increment(ctx, story.CollectionComments, commentID, "reactions.hearts", 1)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrCommentNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to heart comment %s: %w", commentID, err)
	}
	return nil
}
