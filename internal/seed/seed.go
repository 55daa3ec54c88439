// Package seed loads sample stories and comments from YAML into the
// document store.
package seed

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"almostArchiveAPI/internal/docstore"
	"almostArchiveAPI/internal/logger"
	"almostArchiveAPI/internal/types/comment"
	"almostArchiveAPI/internal/types/story"
	"almostArchiveAPI/internal/validation"
	"almostArchiveAPI/utils"
)

type File struct {
	Stories []Story `yaml:"stories"`
}

type Story struct {
	Title         string         `yaml:"title"`
	Body          string         `yaml:"body"`
	AuthorName    string         `yaml:"authorName"`
	DateOfMemory  string         `yaml:"dateOfMemory"`
	DateSubmitted time.Time      `yaml:"dateSubmitted"`
	Tags          []string       `yaml:"tags"`
	Mood          story.MoodType `yaml:"mood"`
	ReadCount     int            `yaml:"readCount"`
	Reactions     Reactions      `yaml:"reactions"`
	Comments      []Comment      `yaml:"comments"`
}

type Reactions struct {
	Heartbroken int `yaml:"heartbroken"`
	Lol         int `yaml:"lol"`
	Hug         int `yaml:"hug"`
	ExSucks     int `yaml:"exSucks"`
}

type Comment struct {
	AuthorName string    `yaml:"authorName"`
	Body       string    `yaml:"body"`
	Timestamp  time.Time `yaml:"timestamp"`
	Hearts     int       `yaml:"hearts"`
	Hugs       int       `yaml:"hugs"`
}

type Result struct {
	Stories   int `json:"stories"`
	Comments  int `json:"comments"`
	Reactions int `json:"reactions"`
}

// Load decodes a seed file. Unknown keys are rejected.
func Load(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}
	return &f, nil
}

// Validate runs every story and comment through the submission rules and
// reports the first entry that fails.
func (f *File) Validate(v *validation.Validator) error {
	for i, s := range f.Stories {
		if errs := v.ValidateStory(s.submission()); len(errs) > 0 {
			return fmt.Errorf("story %d (%q): %w", i+1, s.Title, errs)
		}
		for j, c := range s.Comments {
			sub := comment.CommentSubmission{AuthorName: c.AuthorName, Body: c.Body}
			if errs := v.ValidateComment(sub); len(errs) > 0 {
				return fmt.Errorf("story %d comment %d: %w", i+1, j+1, errs)
			}
		}
	}
	return nil
}

func (s Story) submission() story.StorySubmission {
	return story.StorySubmission{
		Title:        s.Title,
		Body:         s.Body,
		AuthorName:   s.AuthorName,
		DateOfMemory: s.DateOfMemory,
		Tags:         validation.NormalizeTags(s.Tags),
		Mood:         s.Mood,
	}
}

// Apply validates the whole file and only then writes it. Stories without
// a submission date get now.
func Apply(ctx context.Context, store docstore.Store, v *validation.Validator, f *File, now time.Time) (Result, error) {
	var res Result
	if err := f.Validate(v); err != nil {
		return res, err
	}

	for _, s := range f.Stories {
		st := s.toStory(now)
		id, err := store.Create(ctx, story.CollectionStories, st.Document())
		if err != nil {
			return res, fmt.Errorf("failed to create story %q: %w", st.Title, err)
		}
		res.Stories++
		logger.Log.Debug("seed_story_created", zap.String("story_id", id), zap.String("slug", st.Slug))

		n, err := createReactions(ctx, store, id, st)
		res.Reactions += n
		if err != nil {
			return res, err
		}

		for _, c := range s.Comments {
			ts := c.Timestamp
			if ts.IsZero() {
				ts = st.DateSubmitted
			}
			doc := comment.Comment{
				StoryID:    id,
				AuthorName: strings.TrimSpace(c.AuthorName),
				Body:       strings.TrimSpace(c.Body),
				Timestamp:  ts.UTC(),
				IsSupport:  true,
				Reactions:  comment.Reactions{Hearts: c.Hearts, Hugs: c.Hugs},
			}
			if _, err := store.Create(ctx, story.CollectionComments, doc.Document()); err != nil {
				return res, fmt.Errorf("failed to create comment on %q: %w", st.Title, err)
			}
			res.Comments++
		}
	}

	logger.Log.Info("seed_applied",
		zap.Int("stories", res.Stories),
		zap.Int("comments", res.Comments),
		zap.Int("reactions", res.Reactions),
	)
	return res, nil
}

// createReactions writes one event per seeded tally unit so per-type
// counts agree with the story's reactions map.
func createReactions(ctx context.Context, store docstore.Store, storyID string, st story.Story) (int, error) {
	created := 0
	for _, opt := range story.ReactionOptions {
		for i := 0; i < st.Reactions.Count(opt.Type); i++ {
			event := story.UserReaction{
				StoryID:         storyID,
				ReactionType:    opt.Type,
				Timestamp:       st.DateSubmitted,
				UserFingerprint: fmt.Sprintf("seed-%s-%d", opt.Type, i),
			}
			if _, err := store.Create(ctx, story.CollectionReactions, event.Document()); err != nil {
				return created, fmt.Errorf("failed to create reaction on %q: %w", st.Title, err)
			}
			created++
		}
	}
	return created, nil
}

func (s Story) toStory(now time.Time) story.Story {
	sub := s.submission()
	mood, _ := story.LookupMood(sub.Mood)

	submitted := s.DateSubmitted
	if submitted.IsZero() {
		submitted = now
	}
	submitted = submitted.UTC()

	r := story.Reactions{
		Heartbroken: s.Reactions.Heartbroken,
		Lol:         s.Reactions.Lol,
		Hug:         s.Reactions.Hug,
		ExSucks:     s.Reactions.ExSucks,
	}
	r.Total = r.Heartbroken + r.Lol + r.Hug + r.ExSucks

	title := strings.TrimSpace(sub.Title)
	return story.Story{
		Title:         title,
		Body:          strings.TrimSpace(sub.Body),
		AuthorName:    strings.TrimSpace(sub.AuthorName),
		DateOfMemory:  strings.TrimSpace(sub.DateOfMemory),
		DateSubmitted: submitted,
		Tags:          sub.Tags,
		Mood:          mood,
		Reactions:     r,
		ReadCount:     s.ReadCount,
		IsPublished:   true,
		Slug:          utils.Slugify(title),
		CreatedAt:     submitted,
		UpdatedAt:     submitted,
	}
}
