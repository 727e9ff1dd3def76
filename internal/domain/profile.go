package domain

import "unicode/utf8"

// NotAvailable is the placeholder value for fields that could not be extracted.
const NotAvailable = "N/A"

// previewLimit caps ExperiencePreview in runes.
const previewLimit = 300

// Profile is the structured view of a resume document.
// Name, Title and Location fall back to NotAvailable; the free-text sections fall back to "".
type Profile struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	Location   string `json:"location"`
	Summary    string `json:"summary"`
	Education  string `json:"education"`
	Experience string `json:"experience"`
	Skills     string `json:"skills"`
}

// FailedProfile returns the profile reported when the document could not be parsed.
func FailedProfile() Profile {
	return Profile{
		Name:       NotAvailable,
		Title:      NotAvailable,
		Location:   NotAvailable,
		Summary:    NotAvailable,
		Education:  NotAvailable,
		Experience: NotAvailable,
		Skills:     NotAvailable,
	}
}

// IsFailed reports whether every field carries the failure placeholder.
func (p Profile) IsFailed() bool {
	return p == FailedProfile()
}

// ExperiencePreview returns the first 300 runes of Experience followed by "...".
func (p Profile) ExperiencePreview() string {
	if utf8.RuneCountInString(p.Experience) <= previewLimit {
		return p.Experience + "..."
	}
	return string([]rune(p.Experience)[:previewLimit]) + "..."
}
