package story

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almostArchiveAPI/internal/docstore"
)

func TestDocumentRoundTrip(t *testing.T) {
	mood, _ := LookupMood(MoodHealing)
	now := time.Date(2025, 8, 3, 10, 0, 0, 0, time.UTC)
	in := Story{
		Title:         "The Day I Laughed Again",
		Body:          "Six months after the divorce, I laughed.",
		AuthorName:    "Rising Phoenix",
		DateOfMemory:  "2025-06-20",
		DateSubmitted: now,
		Tags:          []string{"healing", "hope"},
		Mood:          mood,
		Reactions:     Reactions{Lol: 22, Hug: 18, ExSucks: 1, Total: 41},
		ReadCount:     62,
		IsPublished:   true,
		Slug:          "the-day-i-laughed-again",
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	stored, err := docstore.Normalize(in.Document())
	require.NoError(t, err)

	out := FromDocument("s1", stored)
	in.ID = "s1"
	assert.Equal(t, in, out)
	assert.Contains(t, docstore.Map(stored["reactions"]), "exSucks")
}

func TestFromDocument_LegacyShapes(t *testing.T) {
	data := map[string]any{
		"title":         "Thank You, Next",
		"mood":          "grateful",
		"dateSubmitted": time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC),
		"reactions": map[string]any{
			"heartbroken": int64(5),
			"lol":         15.0,
			"hug":         8,
			"ex-sucks":    int64(25),
		},
		"isPublished": true,
	}

	s := FromDocument("s5", data)

	assert.Equal(t, MoodGrateful, s.Mood.Type)
	assert.Equal(t, "🙏", s.Mood.Emoji)
	assert.Equal(t, 25, s.Reactions.ExSucks)
	assert.Equal(t, 53, s.Reactions.Total, "a missing total is the sum of the per-type counts")
	assert.Equal(t, 0, s.ReadCount)
	assert.Equal(t, []string{}, s.Tags)
	assert.Equal(t, 2025, s.DateSubmitted.Year())
}

func TestFromDocument_UnknownMoodFallsBack(t *testing.T) {
	s := FromDocument("x", map[string]any{"mood": map[string]any{"type": "ecstatic"}})
	assert.Equal(t, DefaultMood(), s.Mood)

	s = FromDocument("x", map[string]any{})
	assert.Equal(t, DefaultMood(), s.Mood)
	assert.Equal(t, Reactions{}, s.Reactions)
}

func TestFromDocument_ObjectMoodUsesCatalogue(t *testing.T) {
	// documents written by the seeding script carry an empty emoji
	s := FromDocument("x", map[string]any{"mood": map[string]any{"type": "nostalgic", "emoji": ""}})
	assert.Equal(t, "🌅", s.Mood.Emoji)
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("é", 200)
	s := Story{ID: "s1", Body: long}

	p := s.Preview()
	assert.Equal(t, strings.Repeat("é", PreviewLength)+"...", p.Preview)
	assert.Equal(t, []string{}, p.Tags)

	short := Story{Body: "short body"}.Preview()
	assert.Equal(t, "short body", short.Preview)
	assert.Equal(t, strings.Repeat("x", 150), Truncate(strings.Repeat("x", 150), 150))
}

func TestReactionTypes(t *testing.T) {
	key, ok := ReactionExSucks.FieldKey()
	assert.True(t, ok)
	assert.Equal(t, "exSucks", key)
	assert.True(t, ReactionLol.Valid())
	assert.False(t, ReactionType("exSucks").Valid())
	assert.Equal(t, 4, Reactions{Hug: 4}.Count(ReactionHug))
}

func TestUserReactionRoundTrip(t *testing.T) {
	in := UserReaction{
		StoryID:         "s1",
		ReactionType:    ReactionExSucks,
		Timestamp:       time.Date(2025, 8, 6, 0, 0, 0, 0, time.UTC),
		UserFingerprint: "anonymous-123",
	}
	out := ReactionFromDocument("r1", in.Document())
	in.ID = "r1"
	assert.Equal(t, in, out)
}

func TestCollectionNames(t *testing.T) {
	// shared with documents already written by the web client
	assert.Equal(t, []string{"stories", "comments", "reactions", "site-stats"},
		[]string{CollectionStories, CollectionComments, CollectionReactions, CollectionSiteStats})
}
