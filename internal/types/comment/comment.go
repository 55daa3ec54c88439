package comment

import (
	"time"

	"almostArchiveAPI/internal/docstore"
)

const MaxCommentLength = 500

type Comment struct {
	ID         string    `json:"id"`
	StoryID    string    `json:"storyId"`
	AuthorName string    `json:"authorName,omitempty"`
	Body       string    `json:"body"`
	Timestamp  time.Time `json:"timestamp"`
	IsSupport  bool      `json:"isSupport"`
	Reactions  Reactions `json:"reactions"`
}

type Reactions struct {
	Hearts int `json:"hearts"`
	Hugs   int `json:"hugs"`
}

// CommentSubmission is the comment form. Email is validated but never stored.
type CommentSubmission struct {
	AuthorName string `json:"authorName,omitempty"`
	Body       string `json:"body"`
	Email      string `json:"email,omitempty"`
}

func (c Comment) Document() map[string]any {
	doc := map[string]any{
		"storyId":   c.StoryID,
		"body":      c.Body,
		"timestamp": docstore.FormatTime(c.Timestamp),
		"isSupport": c.IsSupport,
		"reactions": map[string]any{
			"hearts": c.Reactions.Hearts,
			"hugs":   c.Reactions.Hugs,
		},
	}
	if c.AuthorName != "" {
		doc["authorName"] = c.AuthorName
	}
	return doc
}

func FromDocument(id string, data map[string]any) Comment {
	reactions := docstore.Map(data["reactions"])
	return Comment{
		ID:         id,
		StoryID:    docstore.String(data["storyId"]),
		AuthorName: docstore.String(data["authorName"]),
		Body:       docstore.String(data["body"]),
		Timestamp:  docstore.Time(data["timestamp"]),
		IsSupport:  docstore.Bool(data["isSupport"]),
		Reactions: Reactions{
			Hearts: docstore.Int(reactions["hearts"]),
			Hugs:   docstore.Int(reactions["hugs"]),
		},
	}
}
