package docstore

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInt_AcceptsEveryBackendNumber(t *testing.T) {
	assert.Equal(t, 7, Int(int64(7)))
	assert.Equal(t, 7, Int(float64(7)))
	assert.Equal(t, 7, Int(json.Number("7")))
	assert.Equal(t, 7, Int("7"))
	assert.Equal(t, 0, Int(nil))
	assert.Equal(t, 0, Int("seven"))
}

func TestTime(t *testing.T) {
	want := time.Date(2025, 8, 1, 14, 30, 0, 0, time.UTC)

	assert.True(t, want.Equal(Time(want)))
	assert.True(t, want.Equal(Time("2025-08-01T14:30:00Z")))
	assert.True(t, want.Equal(Time(FormatTime(want.In(time.FixedZone("X", 3600))))))
	assert.True(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC).Equal(Time("2025-08-01")))
	assert.True(t, Time("yesterday").IsZero())
	assert.True(t, Time(42).IsZero())
}

func TestLookupAndMatches(t *testing.T) {
	doc := map[string]any{
		"storyId":   "s1",
		"reactions": map[string]any{"hearts": float64(3)},
	}

	v, ok := Lookup(doc, "reactions.hearts")
	assert.True(t, ok)
	assert.Equal(t, float64(3), v)

	_, ok = Lookup(doc, "reactions.hugs")
	assert.False(t, ok)
	_, ok = Lookup(doc, "storyId.nested")
	assert.False(t, ok)

	assert.True(t, Matches(doc, []Predicate{Eq("storyId", "s1"), Eq("reactions.hearts", 3)}))
	assert.False(t, Matches(doc, []Predicate{Eq("storyId", "s2")}))
	assert.False(t, Matches(doc, []Predicate{Eq("missing", nil)}))
	assert.True(t, Matches(doc, nil))
}

func TestAddAt_CreatesMissingPath(t *testing.T) {
	doc := map[string]any{"title": "x"}
	addAt(doc, "reactions.total", 2)
	addAt(doc, "reactions.total", 1)

	assert.Equal(t, float64(3), Map(doc["reactions"])["total"])
}

func TestStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Strings([]any{"a", 3, "b"}))
	assert.Equal(t, []string{}, Strings(nil))
}

func TestContainment(t *testing.T) {
	got := containment([]Predicate{Eq("storyId", "s1"), Eq("reactions.hearts", 2)})
	assert.Equal(t, map[string]any{
		"storyId":   "s1",
		"reactions": map[string]any{"hearts": 2},
	}, got)
}
