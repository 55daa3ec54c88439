package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"almostArchiveAPI/internal/docstore"
	"almostArchiveAPI/internal/logger"
	"almostArchiveAPI/internal/stats"
	statstypes "almostArchiveAPI/internal/types/stats"
	"almostArchiveAPI/internal/types/story"
)

type StatsService struct {
	store    docstore.Store
	stories  *StoryService
	comments *CommentService
}

func NewStatsService(store docstore.Store, stories *StoryService, comments *CommentService) *StatsService {
	return &StatsService{store: store, stories: stories, comments: comments}
}

func (s *StatsService) Compute(ctx context.Context, now time.Time) (*statstypes.SiteStats, error) {
	all, err := s.stories.ListStories(ctx)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := stats.Compute(all, comments, now)
	return &snapshot, nil
}

// Publish recomputes the snapshot and overwrites site-stats/current.
func (s *StatsService) Publish(ctx context.Context, now time.Time) (*statstypes.SiteStats, error) {
	snapshot, err := s.Compute(ctx, now)
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, story.CollectionSiteStats, statstypes.CurrentDocID, snapshot.Document()); err != nil {
		return nil, fmt.Errorf("failed to publish stats: %w", err)
	}
	logger.Log.Info("stats_published",
		zap.Int("total_stories", snapshot.TotalStories),
		zap.Int("total_comments", snapshot.TotalComments),
	)
	return snapshot, nil
}
