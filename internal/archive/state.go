package archive

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"almostArchiveAPI/internal/types/story"
)

type SortOption string

const (
	SortNewest      SortOption = "newest"
	SortOldest      SortOption = "oldest"
	SortMostRead    SortOption = "most-read"
	SortMostReacted SortOption = "most-reacted"
)

// ParseSort maps a query value to a SortOption; anything unknown is newest.
func ParseSort(s string) SortOption {
	switch opt := SortOption(s); opt {
	case SortNewest, SortOldest, SortMostRead, SortMostReacted:
		return opt
	}
	return SortNewest
}

// State is everything the archive view is computed from. Changing a
// filter or the sort through the With* methods sends the view back to
// page 1.
type State struct {
	Search string
	Moods  []story.MoodType
	Tags   []string
	Sort   SortOption
	Page   int
}

func NewState() State {
	return State{Sort: SortNewest, Page: 1}
}

func (s State) WithSearch(q string) State {
	s.Search = q
	s.Page = 1
	return s
}

func (s State) WithMoods(moods []story.MoodType) State {
	s.Moods = slices.Clone(moods)
	s.Page = 1
	return s
}

func (s State) WithTags(tags []string) State {
	s.Tags = slices.Clone(tags)
	s.Page = 1
	return s
}

func (s State) WithSort(opt SortOption) State {
	s.Sort = opt
	s.Page = 1
	return s
}

func (s State) WithPage(page int) State {
	s.Page = page
	return s
}

// Key fingerprints the filter and sort inputs, not the page. Selection
// order does not matter.
func (s State) Key() string {
	moods := make([]string, len(s.Moods))
	for i, m := range s.Moods {
		moods[i] = string(m)
	}
	slices.Sort(moods)
	tags := slices.Clone(s.Tags)
	slices.Sort(tags)

	d := xxhash.New()
	d.WriteString(strings.TrimSpace(s.Search))
	d.WriteString("\x00")
	d.WriteString(strings.Join(moods, "\x1f"))
	d.WriteString("\x00")
	d.WriteString(strings.Join(tags, "\x1f"))
	d.WriteString("\x00")
	d.WriteString(string(ParseSort(string(s.Sort))))
	return strconv.FormatUint(d.Sum64(), 16)
}

// Since resets the page when the filters changed since the view that
// produced prevKey. An empty prevKey means no previous view.
func (s State) Since(prevKey string) State {
	if prevKey != "" && prevKey != s.Key() {
		s.Page = 1
	}
	return s
}
