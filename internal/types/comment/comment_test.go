package comment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almostArchiveAPI/internal/docstore"
)

func TestDocumentRoundTrip(t *testing.T) {
	in := Comment{
		StoryID:    "s1",
		AuthorName: "Someone Who Gets It",
		Body:       "I felt this in my soul.",
		Timestamp:  time.Date(2025, 8, 1, 14, 30, 0, 0, time.UTC),
		IsSupport:  true,
		Reactions:  Reactions{Hearts: 5, Hugs: 3},
	}

	stored, err := docstore.Normalize(in.Document())
	require.NoError(t, err)

	out := FromDocument("c1", stored)
	in.ID = "c1"
	assert.Equal(t, in, out)
}

func TestDocument_AnonymousOmitsAuthor(t *testing.T) {
	doc := Comment{Body: "Sending virtual hugs!"}.Document()
	assert.NotContains(t, doc, "authorName")

	out := FromDocument("c2", map[string]any{"body": "x"})
	assert.Equal(t, Reactions{}, out.Reactions)
	assert.True(t, out.Timestamp.IsZero())
}
