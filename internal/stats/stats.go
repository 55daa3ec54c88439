// Package stats aggregates the published archive into the site-wide
// numbers shown on the landing page.
package stats

import (
	"cmp"
	"slices"
	"time"

	"almostArchiveAPI/internal/types/comment"
	statstypes "almostArchiveAPI/internal/types/stats"
	"almostArchiveAPI/internal/types/story"
)

const (
	week  = 7 * 24 * time.Hour
	month = 30 * 24 * time.Hour
)

// Compute builds a snapshot. Unpublished stories and their comments are
// ignored; week and month are rolling windows ending at now.
func Compute(stories []story.Story, comments []comment.Comment, now time.Time) statstypes.SiteStats {
	out := statstypes.SiteStats{
		PopularTags:      []statstypes.TagCount{},
		MoodDistribution: []statstypes.MoodCount{},
		LastUpdated:      now.UTC(),
	}

	tagCounts := make(map[string]int)
	moodCounts := make(map[story.MoodType]int)
	published := make(map[string]bool)
	for _, s := range stories {
		if !s.IsPublished {
			continue
		}
		published[s.ID] = true
		out.TotalStories++
		out.TotalReactions += s.Reactions.Total
		for _, t := range s.Tags {
			tagCounts[t]++
		}
		moodCounts[s.Mood.Type]++

		age := now.Sub(s.DateSubmitted)
		if age >= 0 && age < week {
			out.StoriesThisWeek++
		}
		if age >= 0 && age < month {
			out.StoriesThisMonth++
		}
	}

	for _, c := range comments {
		if published[c.StoryID] {
			out.TotalComments++
		}
	}

	out.PopularTags = topTags(tagCounts, story.PopularTagsCount)
	for _, m := range story.MoodOptions {
		if n := moodCounts[m.Type]; n > 0 {
			out.MoodDistribution = append(out.MoodDistribution, statstypes.MoodCount{Mood: m.Type, Count: n})
		}
	}
	return out
}

func topTags(counts map[string]int, n int) []statstypes.TagCount {
	tags := make([]statstypes.TagCount, 0, len(counts))
	for tag, c := range counts {
		tags = append(tags, statstypes.TagCount{Tag: tag, Count: c})
	}
	slices.SortFunc(tags, func(a, b statstypes.TagCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Tag, b.Tag)
	})
	if len(tags) > n {
		tags = tags[:n]
	}
	return tags
}
