// Package normalize builds the matching text for a profile.
package normalize

import (
	"regexp"
	"strings"

	"github.com/josephmathew0/Monty/internal/domain"
)

var (
	urlRe         = regexp.MustCompile(`http\S+|www\S+|linkedin\S+`)
	parentheticRe = regexp.MustCompile(`\([^)]*\)`)
	pageMarkerRe  = regexp.MustCompile(`Page \d+ of \d+`)
)

// Field strips URLs, parenthesized asides and "Page N of M" markers, then trims.
func Field(s string) string {
	if s == "" {
		return ""
	}
	s = urlRe.ReplaceAllString(s, "")
	s = parentheticRe.ReplaceAllString(s, "")
	s = pageMarkerRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// MatchText joins the cleaned title, summary, education, skills and experience with ". ".
// Empty fields are kept as empty segments so the layout stays fixed.
func MatchText(p domain.Profile) string {
	return strings.Join([]string{
		Field(p.Title),
		Field(p.Summary),
		Field(p.Education),
		Field(p.Skills),
		Field(p.Experience),
	}, ". ")
}
