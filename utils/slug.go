package utils

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	slugInvalid    = regexp.MustCompile(`[^a-z0-9 -]`)
	slugWhitespace = regexp.MustCompile(`\s+`)
	slugDashes     = regexp.MustCompile(`-+`)
)

// Slugify turns a story title into its URL slug. The result only holds
// a-z, 0-9 and single dashes, never at either end. It may be empty.
func Slugify(title string) string {
	s := cases.Lower(language.Und).String(title)
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugWhitespace.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
