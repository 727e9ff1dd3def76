package extract

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// glyphLine lays text out as evenly spaced glyphs of the given size, one per rune.
func glyphLine(text string, top, size float64) []Char {
	w := size * 0.5
	chars := make([]Char, 0, len(text))
	x := 36.0
	for _, r := range text {
		chars = append(chars, Char{Text: string(r), Top: top, X: x, Width: w, FontSize: size})
		x += w
	}
	return chars
}

func textPage(lines ...string) Page {
	return Page{Text: strings.Join(lines, "\n")}
}

type stubReader struct {
	doc Document
	err error
}

func (s *stubReader) Read(_ context.Context, _ []byte) (Document, error) {
	return s.doc, s.err
}

func newTestExtractor(doc Document) *Extractor {
	return New(&stubReader{doc: doc}, nil, zap.NewNop())
}

var linkedInLines = []string{
	"Contact",
	"Email: jane.doe@example.com",
	"www.linkedin.com/in/janedoe",
	"Jane Doe",
	"Senior Data Scientist",
	"San Francisco Bay Area",
	"Summary",
	"Data scientist focused on NLP.",
	"Education",
	"Stanford University",
	"Experience",
	"Acme Corp",
	"Built Python and SQL pipelines on AWS.",
	"Skills",
	"Docker, Kubernetes",
	"Page 1 of 1",
}
