package docstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNativeTimes(t *testing.T) {
	submitted := time.Date(2025, 8, 1, 14, 30, 0, 0, time.UTC)
	in := map[string]any{
		"title":         "The Coffee Shop Goodbye",
		"dateSubmitted": "2025-08-01T16:30:00+02:00",
		"createdAt":     "not a date",
		"slug":          "2025-08-01T14:30:00Z",
		"reactions":     map[string]any{"total": 3},
		"mood":          map[string]any{"type": "hopeful", "updatedAt": "2025-08-01T14:30:00Z"},
	}

	got := nativeTimes(in)

	assert.True(t, submitted.Equal(got["dateSubmitted"].(time.Time)))
	assert.Equal(t, "not a date", got["createdAt"])
	assert.Equal(t, "2025-08-01T14:30:00Z", got["slug"], "only timestamp fields convert")
	assert.Equal(t, "The Coffee Shop Goodbye", got["title"])
	assert.Equal(t, map[string]any{"total": 3}, got["reactions"])
	assert.True(t, submitted.Equal(got["mood"].(map[string]any)["updatedAt"].(time.Time)))

	assert.Equal(t, "2025-08-01T16:30:00+02:00", in["dateSubmitted"], "input is not modified")
}

func TestNativeTimes_ReadsBackThroughTime(t *testing.T) {
	stored := nativeTimes(map[string]any{"timestamp": FormatTime(time.Date(2025, 8, 2, 9, 0, 0, 0, time.UTC))})
	assert.True(t, time.Date(2025, 8, 2, 9, 0, 0, 0, time.UTC).Equal(Time(stored["timestamp"])))
}
