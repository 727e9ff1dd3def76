package extract

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/josephmathew0/Monty/internal/domain"
)

// PDFReader reads PDF documents into positioned glyphs and reconstructed page text.
type PDFReader struct{}

// NewPDFReader creates a PDF document reader.
func NewPDFReader() *PDFReader {
	return &PDFReader{}
}

// Read parses data as a PDF. Malformed input, including input that makes the
// underlying parser panic, yields an error wrapping domain.ErrParseFailure.
func (r *PDFReader) Read(ctx context.Context, data []byte) (doc Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = Document{}, fmt.Errorf("%w: pdf reader panic: %v", domain.ErrParseFailure, rec)
		}
	}()

	if len(data) == 0 {
		return Document{}, fmt.Errorf("%w: empty document", domain.ErrParseFailure)
	}

	pr, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Document{}, fmt.Errorf("%w: open pdf: %w", domain.ErrParseFailure, err)
	}

	n := pr.NumPage()
	if n == 0 {
		return Document{}, fmt.Errorf("%w: pdf has no pages", domain.ErrParseFailure)
	}

	doc.Pages = make([]Page, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return Document{}, fmt.Errorf("read pdf: %w", err)
		}
		p := pr.Page(i)
		if p.V.IsNull() {
			continue
		}
		doc.Pages = append(doc.Pages, readPage(p))
	}
	return doc, nil
}

func readPage(p pdf.Page) Page {
	glyphs := p.Content().Text
	top := pageTop(p, glyphs)

	chars := make([]Char, 0, len(glyphs))
	for _, g := range glyphs {
		chars = append(chars, Char{
			Text:     g.S,
			Top:      top - g.Y,
			X:        g.X,
			Width:    g.W,
			FontSize: g.FontSize,
		})
	}
	return Page{Text: layoutText(chars), Chars: chars}
}

// pageTop returns the upper y bound of the page's MediaBox, which may be inherited
// from an ancestor in the page tree. Pages without one use the highest glyph.
func pageTop(p pdf.Page, glyphs []pdf.Text) float64 {
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		if box := v.Key("MediaBox"); box.Len() == 4 {
			return box.Index(3).Float64()
		}
	}
	var top float64
	for _, g := range glyphs {
		top = max(top, g.Y+g.FontSize)
	}
	return top
}

// layoutText rebuilds reading-order text: glyphs whose tops are within a fraction of
// the font size share a line, lines run top to bottom, glyphs left to right.
func layoutText(chars []Char) string {
	sorted := make([]Char, len(chars))
	copy(sorted, chars)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Top != sorted[j].Top {
			return sorted[i].Top < sorted[j].Top
		}
		return sorted[i].X < sorted[j].X
	})

	var (
		lines  []string
		cur    []Char
		curTop float64
	)
	flush := func() {
		if len(cur) == 0 {
			return
		}
		sort.SliceStable(cur, func(i, j int) bool { return cur[i].X < cur[j].X })
		if l := joinGlyphs(cur); l != "" {
			lines = append(lines, l)
		}
		cur = nil
	}

	for _, c := range sorted {
		if len(cur) > 0 && c.Top-curTop > lineTolerance(c.FontSize) {
			flush()
		}
		if len(cur) == 0 {
			curTop = c.Top
		}
		cur = append(cur, c)
	}
	flush()

	return strings.Join(lines, "\n")
}

func lineTolerance(fontSize float64) float64 {
	return max(0.4*fontSize, 1)
}
