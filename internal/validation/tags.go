package validation

import (
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"almostArchiveAPI/internal/types/story"
)

var (
	tagDisallowed = regexp.MustCompile(`[^a-z0-9\s\-_]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// SanitizeTag lowercases tag, strips disallowed characters, collapses
// whitespace and cuts the result to the maximum tag length. It is
// idempotent.
func SanitizeTag(tag string) string {
	s := cases.Lower(language.Und).String(tag)
	s = tagDisallowed.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if len(s) > maxTagLength {
		// Only ASCII survives the strip, so byte and rune lengths agree.
		s = strings.TrimSpace(s[:maxTagLength])
	}
	return s
}

// AddTag sanitizes input and appends it to tags. Duplicates, tags that are
// too short after sanitizing and additions to a full list are rejected
// silently: the original slice comes back with false.
func AddTag(tags []string, input string) ([]string, bool) {
	tag := SanitizeTag(input)
	if length(tag) < minTagLength || slices.Contains(tags, tag) || len(tags) >= story.MaxTagsPerStory {
		return tags, false
	}
	out := make([]string, len(tags), len(tags)+1)
	copy(out, tags)
	return append(out, tag), true
}

// NormalizeTags sanitizes submitted tags and drops duplicates. Short tags
// and oversized lists are kept so the validator can report them.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		s := SanitizeTag(t)
		if slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}
