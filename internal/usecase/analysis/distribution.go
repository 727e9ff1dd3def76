package analysis

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/josephmathew0/Monty/internal/domain"
	"github.com/josephmathew0/Monty/internal/domain/geo"
)

// minOverlap is the token Jaccard score a geo title needs to stand in for the requested one.
const minOverlap = 0.5

var titleStopwords = map[string]struct{}{
	"and": {}, "of": {}, "the": {}, "all": {}, "other": {}, "except": {}, "in": {},
}

// SelectGeoRows picks the rows describing title: exact title match first, then the single
// best token-overlap title, then every title containing its first word. A tie at the best
// overlap is ambiguous and selects nothing.
func SelectGeoRows(rows []domain.GeoEmploymentRecord, title string) []domain.GeoEmploymentRecord {
	want := strings.ToLower(strings.TrimSpace(title))
	if want == "" {
		return nil
	}

	var out []domain.GeoEmploymentRecord
	for _, r := range rows {
		if strings.ToLower(strings.TrimSpace(r.Title)) == want {
			out = append(out, r)
		}
	}
	if len(out) > 0 {
		return out
	}

	wantTok := titleTokens(want)
	best, bestScore, tie := "", 0.0, false
	seen := make(map[string]struct{})
	for _, r := range rows {
		t := strings.ToLower(strings.TrimSpace(r.Title))
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		score := jaccard(wantTok, titleTokens(t))
		switch {
		case score > bestScore:
			best, bestScore, tie = t, score, false
		case score == bestScore && score > 0:
			tie = true
		}
	}
	if bestScore >= minOverlap {
		if tie {
			return nil
		}
		for _, r := range rows {
			if strings.ToLower(strings.TrimSpace(r.Title)) == best {
				out = append(out, r)
			}
		}
		return out
	}

	first := strings.Fields(want)[0]
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(first) + `\b`)
	for _, r := range rows {
		if re.MatchString(strings.ToLower(r.Title)) {
			out = append(out, r)
		}
	}
	return out
}

// Distribute sums employment per state, orders states by employment descending and keeps
// those in region that have positive employment and known coordinates.
func Distribute(rows []domain.GeoEmploymentRecord, title string, region geo.Region) Distribution {
	d := Distribution{
		Title:  title,
		Region: region,
		Center: geo.Center,
		States: []StateEmployment{},
	}
	if len(rows) == 0 {
		d.Notice = NoticeNoGeoData
		return d
	}

	totals := make(map[string]float64)
	for _, r := range rows {
		if r.State == geo.National {
			d.National += r.TotalEmployment
			continue
		}
		totals[r.State] += r.TotalEmployment
	}

	states := make([]string, 0, len(totals))
	for s := range totals {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool {
		if totals[states[i]] != totals[states[j]] {
			return totals[states[i]] > totals[states[j]]
		}
		return states[i] < states[j]
	})

	for _, s := range states {
		jobs := totals[s]
		if !region.Contains(s) || jobs <= 0 {
			continue
		}
		p, ok := geo.Centroid(s)
		if !ok {
			continue
		}
		d.States = append(d.States, StateEmployment{
			State:      s,
			Region:     geo.RegionOf(s),
			Employment: jobs,
			Lat:        p.Lat,
			Lon:        p.Lon,
			Radius:     markerRadius(jobs),
		})
	}

	if len(d.States) == 0 {
		d.Notice = fmt.Sprintf(noticeNoRegionFormat, region)
	}
	return d
}

func markerRadius(jobs float64) float64 {
	return 6 + math.Sqrt(jobs)/12
}

func titleTokens(s string) map[string]struct{} {
	words := strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, stop := titleStopwords[w]; stop || len(w) < 2 {
			continue
		}
		if len(w) > 3 && strings.HasSuffix(w, "s") {
			w = strings.TrimSuffix(w, "s")
		}
		out[w] = struct{}{}
	}
	return out
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}
