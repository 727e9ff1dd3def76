// Package extract turns a resume document into a domain.Profile using layout and
// keyword heuristics.
package extract

import "strings"

// Char is a single positioned glyph.
type Char struct {
	Text     string
	Top      float64 // distance from the top edge of the page
	X        float64
	Width    float64 // advance width; 0 when unknown
	FontSize float64
}

// Page is the text and glyph layout of one page.
type Page struct {
	Text  string
	Chars []Char
}

// Document is a parsed resume: pages in reading order.
type Document struct {
	Pages []Page
}

// Text returns the page texts joined with newlines.
func (d Document) Text() string {
	parts := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n")
}

// HasText reports whether any page carries non-whitespace text.
func (d Document) HasText() bool {
	for _, p := range d.Pages {
		if strings.TrimSpace(p.Text) != "" {
			return true
		}
	}
	return false
}
