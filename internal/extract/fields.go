package extract

import (
	"regexp"
	"sort"
	"strings"
)

// titleWindow is how many lines after the name are searched for a job title.
const titleWindow = 5

var (
	titleRe       = regexp.MustCompile(`(?i)(engineer|developer|scientist|manager|analyst|designer|specialist)`)
	newlineRunsRe = regexp.MustCompile(`\n+`)

	locationMarkers = []string{
		"area", "city", "usa", "united states", "california",
		"boston", "new york", "texas", "washington",
	}

	skillKeywords = []string{
		"python", "java", "react", "node", "sql", "docker", "aws", "kubernetes",
		"javascript", "typescript", "machine learning", "ai", "flask", "django", "graphql",
	}
)

// findTitle scans the lines following anchor for a role keyword.
func findTitle(lines []string, anchor string) (string, bool) {
	idx := indexOf(lines, anchor)
	if idx < 0 {
		return "", false
	}
	end := min(idx+1+titleWindow, len(lines))
	for _, l := range lines[idx+1 : end] {
		if titleRe.MatchString(l) {
			return l, true
		}
	}
	return "", false
}

func findLocation(lines []string) (string, bool) {
	for _, l := range lines {
		if containsAny(asciiLower(l), locationMarkers) {
			return l, true
		}
	}
	return "", false
}

// sectionBetween returns the text after the first occurrence of header and before the
// first occurrence of end, both searched from the start of the document.
// An absent end runs to the end of the document; an end that precedes the header
// yields "". lower must be asciiLower(text).
func sectionBetween(text, lower, header, end string) string {
	start := strings.Index(lower, header)
	if start < 0 {
		return ""
	}
	bodyStart := start + len(header)

	bodyEnd := len(text)
	if end != "" {
		if j := strings.Index(lower, end); j >= 0 {
			bodyEnd = j
		}
	}
	if bodyEnd <= bodyStart {
		return ""
	}

	snippet := strings.TrimSpace(text[bodyStart:bodyEnd])
	return strings.TrimSpace(newlineRunsRe.ReplaceAllString(snippet, " "))
}

// findSkills returns the known keywords present in lower, capitalized, sorted and comma-joined.
func findSkills(lower string) string {
	seen := make(map[string]struct{})
	var found []string
	for _, kw := range skillKeywords {
		if !strings.Contains(lower, kw) {
			continue
		}
		s := capitalize(kw)
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		found = append(found, s)
	}
	sort.Strings(found)
	return strings.Join(found, ", ")
}

// capitalize upper-cases the first byte and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func indexOf(lines []string, s string) int {
	for i, l := range lines {
		if l == s {
			return i
		}
	}
	return -1
}
