package stats

import (
	"time"

	"almostArchiveAPI/internal/docstore"
	"almostArchiveAPI/internal/types/story"
)

// CurrentDocID is the id of the published snapshot inside site-stats.
const CurrentDocID = "current"

type TagCount struct {
	Tag   string `json:"tag" yaml:"tag"`
	Count int    `json:"count" yaml:"count"`
}

type MoodCount struct {
	Mood  story.MoodType `json:"mood" yaml:"mood"`
	Count int            `json:"count" yaml:"count"`
}

type SiteStats struct {
	TotalStories     int         `json:"totalStories"`
	TotalReactions   int         `json:"totalReactions"`
	TotalComments    int         `json:"totalComments"`
	PopularTags      []TagCount  `json:"popularTags"`
	MoodDistribution []MoodCount `json:"moodDistribution"`
	StoriesThisWeek  int         `json:"storiesThisWeek"`
	StoriesThisMonth int         `json:"storiesThisMonth"`
	LastUpdated      time.Time   `json:"lastUpdated"`
}

func (s SiteStats) Document() map[string]any {
	tags := make([]any, 0, len(s.PopularTags))
	for _, t := range s.PopularTags {
		tags = append(tags, map[string]any{"tag": t.Tag, "count": t.Count})
	}
	moods := make([]any, 0, len(s.MoodDistribution))
	for _, m := range s.MoodDistribution {
		moods = append(moods, map[string]any{"mood": string(m.Mood), "count": m.Count})
	}
	return map[string]any{
		"totalStories":     s.TotalStories,
		"totalReactions":   s.TotalReactions,
		"totalComments":    s.TotalComments,
		"popularTags":      tags,
		"moodDistribution": moods,
		"storiesThisWeek":  s.StoriesThisWeek,
		"storiesThisMonth": s.StoriesThisMonth,
		"lastUpdated":      docstore.FormatTime(s.LastUpdated),
	}
}
