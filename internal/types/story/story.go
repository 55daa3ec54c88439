package story

import (
	"time"
)

const (
	PreviewLength       = 150
	MaxTagsPerStory     = 5
	MaxTitleLength      = 100
	MaxBodyLength       = 5000
	StoriesPerPage      = 12
	RelatedStoriesCount = 3
	PopularTagsCount    = 10
)

// Firestore collection names.
const (
	CollectionStories   = "stories"
	CollectionComments  = "comments"
	CollectionReactions = "reactions"
	CollectionSiteStats = "site-stats"
)

type Story struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	AuthorName    string    `json:"authorName,omitempty"`
	DateOfMemory  string    `json:"dateOfMemory,omitempty"`
	DateSubmitted time.Time `json:"dateSubmitted"`
	Tags          []string  `json:"tags"`
	Mood          Mood      `json:"mood"`
	Reactions     Reactions `json:"reactions"`
	ReadCount     int       `json:"readCount"`
	IsPublished   bool      `json:"isPublished"`
	Slug          string    `json:"slug"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// StoryPreview is the list-view projection of a Story. It is derived on
// load and never written back.
type StoryPreview struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Preview       string    `json:"preview"`
	AuthorName    string    `json:"authorName,omitempty"`
	DateSubmitted time.Time `json:"dateSubmitted"`
	Tags          []string  `json:"tags"`
	Mood          Mood      `json:"mood"`
	Reactions     Reactions `json:"reactions"`
	ReadCount     int       `json:"readCount"`
	Slug          string    `json:"slug"`
}

// Preview projects s for list rendering, truncating the body to
// PreviewLength runes.
func (s Story) Preview() StoryPreview {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	return StoryPreview{
		ID:            s.ID,
		Title:         s.Title,
		Preview:       Truncate(s.Body, PreviewLength),
		AuthorName:    s.AuthorName,
		DateSubmitted: s.DateSubmitted,
		Tags:          tags,
		Mood:          s.Mood,
		Reactions:     s.Reactions,
		ReadCount:     s.ReadCount,
		Slug:          s.Slug,
	}
}

// Truncate cuts text to n runes and appends "..." when anything was cut.
func Truncate(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n]) + "..."
}

type StorySubmission struct {
	Title        string   `json:"title"`
	Body         string   `json:"body"`
	AuthorName   string   `json:"authorName,omitempty"`
	DateOfMemory string   `json:"dateOfMemory,omitempty"`
	Tags         []string `json:"tags"`
	Mood         MoodType `json:"mood"`
}

type SubmissionResponse struct {
	StoryID string `json:"storyId"`
	Slug    string `json:"slug"`
	Message string `json:"message"`
}

type ReactRequest struct {
	Type ReactionType `json:"type"`
}

// UserReaction is one anonymous reaction event.
type UserReaction struct {
	ID              string       `json:"id,omitempty"`
	StoryID         string       `json:"storyId"`
	ReactionType    ReactionType `json:"reactionType"`
	Timestamp       time.Time    `json:"timestamp"`
	UserFingerprint string       `json:"userFingerprint"`
}

type RelatedStory struct {
	Story          StoryPreview `json:"story"`
	RelationScore  int          `json:"relationScore"`
	RelationReason string       `json:"relationReason"`
}
