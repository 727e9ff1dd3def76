package extract

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// DefaultNameFontSize is the minimum mean glyph size of a name headline.
const DefaultNameFontSize = 25.0

// NameStrategy tries to find the candidate's name. lines are the noise-filtered text lines.
type NameStrategy func(doc Document, lines []string) (string, bool)

var properNameRe = regexp.MustCompile(`^[A-Z][a-z]+ [A-Z][a-z]+$`)

// LargeFontName picks the first visual line, top to bottom and page by page, whose mean
// glyph size is at least minSize.
func LargeFontName(minSize float64) NameStrategy {
	return func(doc Document, _ []string) (string, bool) {
		for _, p := range doc.Pages {
			for _, line := range visualLines(p.Chars) {
				if line.meanSize >= minSize {
					return line.text, true
				}
			}
		}
		return "", false
	}
}

// ProperNameLine picks the first line made of exactly two capitalized words.
func ProperNameLine(_ Document, lines []string) (string, bool) {
	return properNameLine(lines)
}

func properNameLine(lines []string) (string, bool) {
	for _, l := range lines {
		if properNameRe.MatchString(l) {
			return l, true
		}
	}
	return "", false
}

// DefaultNameStrategies is the order used by New.
func DefaultNameStrategies() []NameStrategy {
	return []NameStrategy{LargeFontName(DefaultNameFontSize), ProperNameLine}
}

type visualLine struct {
	text     string
	meanSize float64
}

// visualLines groups glyphs by top coordinate rounded to 0.1, ordered top to bottom.
// Whitespace glyphs only contribute spacing; the mean size covers visible glyphs.
func visualLines(chars []Char) []visualLine {
	byTop := make(map[int64][]Char)
	for _, c := range chars {
		key := int64(math.Round(c.Top * 10))
		byTop[key] = append(byTop[key], c)
	}

	tops := make([]int64, 0, len(byTop))
	for k := range byTop {
		tops = append(tops, k)
	}
	sort.Slice(tops, func(i, j int) bool { return tops[i] < tops[j] })

	lines := make([]visualLine, 0, len(tops))
	for _, k := range tops {
		group := byTop[k]
		sort.SliceStable(group, func(i, j int) bool { return group[i].X < group[j].X })

		text := joinGlyphs(group)
		var size float64
		var visible int
		for _, c := range group {
			if strings.TrimSpace(c.Text) != "" {
				size += c.FontSize
				visible++
			}
		}
		if visible == 0 || text == "" {
			continue
		}
		lines = append(lines, visualLine{text: text, meanSize: size / float64(visible)})
	}
	return lines
}

// wordGap is the horizontal gap, relative to font size, read as a word break.
const wordGap = 0.2

// joinGlyphs concatenates X-ordered glyphs, inserting a space where the gap after a
// glyph of known width exceeds wordGap.
func joinGlyphs(glyphs []Char) string {
	var sb strings.Builder
	for i, c := range glyphs {
		if i > 0 {
			prev := glyphs[i-1]
			if prev.Width > 0 && c.X-(prev.X+prev.Width) > wordGap*c.FontSize &&
				!strings.HasSuffix(prev.Text, " ") && !strings.HasPrefix(c.Text, " ") {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(c.Text)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
