package story

import (
	"almostArchiveAPI/internal/docstore"
)

// Document encodes s in the canonical stored shape.
func (s Story) Document() map[string]any {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	doc := map[string]any{
		"title":         s.Title,
		"body":          s.Body,
		"dateSubmitted": docstore.FormatTime(s.DateSubmitted),
		"tags":          tags,
		"mood": map[string]any{
			"type":  string(s.Mood.Type),
			"emoji": s.Mood.Emoji,
			"label": s.Mood.Label,
			"color": s.Mood.Color,
		},
		"reactions":   s.Reactions.Document(),
		"readCount":   s.ReadCount,
		"isPublished": s.IsPublished,
		"slug":        s.Slug,
		"createdAt":   docstore.FormatTime(s.CreatedAt),
		"updatedAt":   docstore.FormatTime(s.UpdatedAt),
	}
	if s.AuthorName != "" {
		doc["authorName"] = s.AuthorName
	}
	if s.DateOfMemory != "" {
		doc["dateOfMemory"] = s.DateOfMemory
	}
	return doc
}

func (r Reactions) Document() map[string]any {
	return map[string]any{
		"heartbroken": r.Heartbroken,
		"lol":         r.Lol,
		"hug":         r.Hug,
		"exSucks":     r.ExSucks,
		"total":       r.Total,
	}
}

// FromDocument decodes a stored story, tolerating the older shapes: mood
// as a bare string, the "ex-sucks" tally key, missing counters.
func FromDocument(id string, data map[string]any) Story {
	return Story{
		ID:            id,
		Title:         docstore.String(data["title"]),
		Body:          docstore.String(data["body"]),
		AuthorName:    docstore.String(data["authorName"]),
		DateOfMemory:  docstore.String(data["dateOfMemory"]),
		DateSubmitted: docstore.Time(data["dateSubmitted"]),
		Tags:          docstore.Strings(data["tags"]),
		Mood:          decodeMood(data["mood"]),
		Reactions:     decodeReactions(data["reactions"]),
		ReadCount:     docstore.Int(data["readCount"]),
		IsPublished:   docstore.Bool(data["isPublished"]),
		Slug:          docstore.String(data["slug"]),
		CreatedAt:     docstore.Time(data["createdAt"]),
		UpdatedAt:     docstore.Time(data["updatedAt"]),
	}
}

func decodeMood(v any) Mood {
	var t MoodType
	switch m := v.(type) {
	case string:
		t = MoodType(m)
	case map[string]any:
		t = MoodType(docstore.String(m["type"]))
	}
	if mood, ok := LookupMood(t); ok {
		return mood
	}
	return DefaultMood()
}

func decodeReactions(v any) Reactions {
	m := docstore.Map(v)
	if m == nil {
		return Reactions{}
	}
	r := Reactions{
		Heartbroken: docstore.Int(m["heartbroken"]),
		Lol:         docstore.Int(m["lol"]),
		Hug:         docstore.Int(m["hug"]),
		// Writes only ever go to exSucks; the hyphenated key is legacy data.
		ExSucks: docstore.Int(m["exSucks"]) + docstore.Int(m["ex-sucks"]),
	}
	if total, ok := m["total"]; ok {
		r.Total = docstore.Int(total)
	} else {
		r.Total = r.Heartbroken + r.Lol + r.Hug + r.ExSucks
	}
	return r
}

// Document encodes a reaction event.
func (u UserReaction) Document() map[string]any {
	return map[string]any{
		"storyId":         u.StoryID,
		"reactionType":    string(u.ReactionType),
		"timestamp":       docstore.FormatTime(u.Timestamp),
		"userFingerprint": u.UserFingerprint,
	}
}

func ReactionFromDocument(id string, data map[string]any) UserReaction {
	return UserReaction{
		ID:              id,
		StoryID:         docstore.String(data["storyId"]),
		ReactionType:    ReactionType(docstore.String(data["reactionType"])),
		Timestamp:       docstore.Time(data["timestamp"]),
		UserFingerprint: docstore.String(data["userFingerprint"]),
	}
}
