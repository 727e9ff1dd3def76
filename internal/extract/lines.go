package extract

import "strings"

var noiseMarkers = []string{"contact", "email", "linkedin.com", "page ", "resume"}

// splitLines returns the trimmed, non-empty lines of text.
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// dropNoise removes contact details, page markers and document boilerplate.
func dropNoise(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if !containsAny(asciiLower(l), noiseMarkers) {
			out = append(out, l)
		}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// asciiLower lowercases A-Z only, so byte offsets in the result match the input.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
