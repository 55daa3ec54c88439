// Package archive turns the loaded story previews into the visible page:
// search, mood and tag filters, a stable sort and fixed-size pages. All
// of it is pure and runs in memory over the full published set.
package archive

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"almostArchiveAPI/internal/types/story"
)

type Result struct {
	Stories         []story.StoryPreview `json:"stories"`
	TotalCount      int                  `json:"totalCount"`
	TotalPages      int                  `json:"totalPages"`
	CurrentPage     int                  `json:"currentPage"`
	HasNextPage     bool                 `json:"hasNextPage"`
	HasPreviousPage bool                 `json:"hasPreviousPage"`
	StateKey        string               `json:"stateKey"`
}

// Run filters, sorts and paginates previews. The input slice is not modified.
func Run(previews []story.StoryPreview, st State) Result {
	filtered := Filter(previews, st)
	Sort(filtered, st.Sort)

	page, totalPages := clampPage(st.Page, len(filtered), story.StoriesPerPage)
	start := (page - 1) * story.StoriesPerPage
	end := min(start+story.StoriesPerPage, len(filtered))

	return Result{
		Stories:         filtered[start:end],
		TotalCount:      len(filtered),
		TotalPages:      totalPages,
		CurrentPage:     page,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
		StateKey:        st.Key(),
	}
}

// Filter applies search, mood and tag filters. Categories are ANDed; the
// selected tags are ORed among themselves.
func Filter(previews []story.StoryPreview, st State) []story.StoryPreview {
	query := strings.TrimSpace(st.Search)
	fold := cases.Fold()
	if query != "" {
		query = fold.String(query)
	}

	out := make([]story.StoryPreview, 0, len(previews))
	for _, p := range previews {
		if query != "" && !matchesSearch(p, query, fold) {
			continue
		}
		if len(st.Moods) > 0 && !slices.Contains(st.Moods, p.Mood.Type) {
			continue
		}
		if len(st.Tags) > 0 && !hasAnyTag(p, st.Tags) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesSearch(p story.StoryPreview, query string, fold cases.Caser) bool {
	contains := func(s string) bool {
		return s != "" && strings.Contains(fold.String(s), query)
	}
	if contains(p.Title) || contains(p.Preview) || contains(p.AuthorName) {
		return true
	}
	return slices.ContainsFunc(p.Tags, contains)
}

func hasAnyTag(p story.StoryPreview, selected []string) bool {
	for _, t := range selected {
		if slices.Contains(p.Tags, t) {
			return true
		}
	}
	return false
}

// Sort orders previews in place. Equal keys keep their current order.
func Sort(previews []story.StoryPreview, opt SortOption) {
	var less func(a, b story.StoryPreview) int
	switch ParseSort(string(opt)) {
	case SortOldest:
		less = func(a, b story.StoryPreview) int { return a.DateSubmitted.Compare(b.DateSubmitted) }
	case SortMostRead:
		less = func(a, b story.StoryPreview) int { return cmp.Compare(b.ReadCount, a.ReadCount) }
	case SortMostReacted:
		less = func(a, b story.StoryPreview) int { return cmp.Compare(b.Reactions.Total, a.Reactions.Total) }
	default:
		less = func(a, b story.StoryPreview) int { return b.DateSubmitted.Compare(a.DateSubmitted) }
	}
	slices.SortStableFunc(previews, less)
}

func clampPage(page, total, size int) (int, int) {
	totalPages := (total + size - 1) / size
	last := max(totalPages, 1)
	return min(max(page, 1), last), totalPages
}

// AllTags lists every distinct tag of the unfiltered set, sorted.
func AllTags(previews []story.StoryPreview) []string {
	seen := make(map[string]struct{})
	tags := []string{}
	for _, p := range previews {
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	slices.Sort(tags)
	return tags
}
