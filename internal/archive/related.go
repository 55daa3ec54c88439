package archive

import (
	"cmp"
	"slices"

	"almostArchiveAPI/internal/types/story"
)

const (
	sharedTagWeight = 2
	sameMoodWeight  = 1
)

// Related picks up to n other previews that share tags or mood with
// target. Previews sharing nothing are never returned.
func Related(target story.Story, previews []story.StoryPreview, n int) []story.RelatedStory {
	var out []story.RelatedStory
	for _, p := range previews {
		if p.ID == target.ID {
			continue
		}
		shared := 0
		for _, t := range p.Tags {
			if slices.Contains(target.Tags, t) {
				shared++
			}
		}
		score := shared * sharedTagWeight
		if p.Mood.Type == target.Mood.Type {
			score += sameMoodWeight
		}
		if score == 0 {
			continue
		}
		reason := "Similar mood"
		if shared > 0 {
			reason = "Same tags"
		}
		out = append(out, story.RelatedStory{Story: p, RelationScore: score, RelationReason: reason})
	}

	slices.SortStableFunc(out, func(a, b story.RelatedStory) int {
		return cmp.Compare(b.RelationScore, a.RelationScore)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
