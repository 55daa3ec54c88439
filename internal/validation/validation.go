// Package validation checks story and comment drafts before anything is
// written. Every field is checked independently and all violations are
// returned together; a failed check is data, never a panic or an error
// return from the validator itself.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"almostArchiveAPI/internal/types/comment"
	"almostArchiveAPI/internal/types/story"
)

const (
	minTitleLength       = 3
	minStoryBodyLength   = 50
	minCommentBodyLength = 10
	minAuthorLength      = 2
	maxAuthorLength      = 50
	minTagLength         = 2
	maxTagLength         = 20
)

var (
	titlePattern  = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.,!?'"]+$`)
	authorPattern = regexp.MustCompile(`^[a-zA-Z\s\-_.']+$`)
	tagPattern    = regexp.MustCompile(`^[a-zA-Z0-9\s\-_]+$`)
	datePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	earliestMemory = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the full list of violations for one draft. Services return it
// as an error so handlers can render every message at once.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field has at least one violation.
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

type Validator struct {
	now func() time.Time
}

func New() *Validator {
	return &Validator{now: time.Now}
}

// NewWithClock pins "today" for the date-of-memory check.
func NewWithClock(now func() time.Time) *Validator {
	return &Validator{now: now}
}

func (v *Validator) ValidateStory(s story.StorySubmission) Errors {
	var errs Errors
	add := func(field, msg string) {
		if msg != "" {
			errs = append(errs, FieldError{Field: field, Message: msg})
		}
	}

	add("title", checkTitle(s.Title))
	add("body", checkText("body", s.Body, minStoryBodyLength, story.MaxBodyLength))
	add("authorName", checkAuthor(s.AuthorName))
	add("dateOfMemory", v.checkDate(s.DateOfMemory))
	add("tags", checkTags(s.Tags))
	add("mood", checkMood(s.Mood))

	return errs
}

func (v *Validator) ValidateComment(c comment.CommentSubmission) Errors {
	var errs Errors
	add := func(field, msg string) {
		if msg != "" {
			errs = append(errs, FieldError{Field: field, Message: msg})
		}
	}

	add("authorName", checkAuthor(c.AuthorName))
	add("body", checkText("body", c.Body, minCommentBodyLength, comment.MaxCommentLength))
	add("email", checkEmail(c.Email))

	return errs
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}

func checkTitle(title string) string {
	trimmed := strings.TrimSpace(title)
	switch {
	case trimmed == "":
		return "title is required"
	case length(trimmed) < minTitleLength:
		return "title too short"
	case length(title) > story.MaxTitleLength:
		return "title too long"
	case !titlePattern.MatchString(title):
		return "title contains invalid characters"
	}
	return ""
}

// checkText applies the required / min (trimmed) / max (raw) rules shared
// by story and comment bodies.
func checkText(field, text string, min, max int) string {
	trimmed := strings.TrimSpace(text)
	switch {
	case trimmed == "":
		return field + " is required"
	case length(trimmed) < min:
		return field + " too short"
	case length(text) > max:
		return field + " too long"
	}
	return ""
}

func checkAuthor(name string) string {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return ""
	case length(trimmed) < minAuthorLength:
		return "authorName too short"
	case length(name) > maxAuthorLength:
		return "authorName too long"
	case !authorPattern.MatchString(name):
		return "authorName contains invalid characters"
	}
	return ""
}

func (v *Validator) checkDate(date string) string {
	if strings.TrimSpace(date) == "" {
		return ""
	}
	if !datePattern.MatchString(date) {
		return "dateOfMemory must be a valid date"
	}
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "dateOfMemory must be a valid date"
	}
	switch {
	case parsed.After(v.now()):
		return "dateOfMemory cannot be in the future"
	case parsed.Before(earliestMemory):
		return "dateOfMemory must be after 1900"
	}
	return ""
}

func checkTags(tags []string) string {
	switch {
	case len(tags) == 0:
		return "at least one tag is required"
	case len(tags) > story.MaxTagsPerStory:
		return fmt.Sprintf("at most %d tags are allowed", story.MaxTagsPerStory)
	}
	for _, tag := range tags {
		if length(strings.TrimSpace(tag)) < minTagLength || length(tag) > maxTagLength || !tagPattern.MatchString(tag) {
			return "tags must be 2-20 characters and contain only letters, numbers, spaces, hyphens, and underscores"
		}
	}
	return ""
}

func checkMood(mood story.MoodType) string {
	if mood == "" {
		return "mood is required"
	}
	if _, ok := story.LookupMood(mood); !ok {
		return "mood is invalid"
	}
	return ""
}

func checkEmail(email string) string {
	if strings.TrimSpace(email) == "" {
		return ""
	}
	if !emailPattern.MatchString(email) {
		return "email is invalid"
	}
	return ""
}
