package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"almostArchiveAPI/internal/logger"
	statstypes "almostArchiveAPI/internal/types/stats"
)

type StatsPublisher interface {
	Publish(ctx context.Context, now time.Time) (*statstypes.SiteStats, error)
}

// StartStatsRefresher republishes site-stats/current once at start and
// then every interval until ctx is done. A failed run is logged and the
// next tick tries again.
func StartStatsRefresher(ctx context.Context, publisher StatsPublisher, interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		refreshStats(ctx, publisher)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refreshStats(ctx, publisher)
			}
		}
	}()
}

func refreshStats(ctx context.Context, publisher StatsPublisher) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	snapshot, err := publisher.Publish(ctx, time.Now())
	if err != nil {
		logger.Log.Warn("stats_refresh_failed", zap.Error(err))
		return
	}
	logger.Log.Debug("stats_refreshed", zap.Int("total_stories", snapshot.TotalStories))
}
