package analysis

import (
	"context"
	"strings"

	"github.com/josephmathew0/Monty/internal/domain"
	"github.com/josephmathew0/Monty/internal/domain/geo"
)

type stubExtractor struct {
	profile domain.Profile
	calls   int
}

func (s *stubExtractor) Extract(_ context.Context, _ []byte) domain.Profile {
	s.calls++
	return s.profile
}

type stubSource struct {
	national  domain.OccupationTable
	geo       domain.GeoTable
	geoCalls  int
	geoFilter []string
}

func (s *stubSource) LoadJobData(_ context.Context) domain.OccupationTable {
	return s.national
}

func (s *stubSource) LoadGeographicJobData(_ context.Context, filter string) domain.GeoTable {
	s.geoCalls++
	s.geoFilter = append(s.geoFilter, filter)
	out := domain.EmptyGeoTable()
	for _, r := range s.geo.Rows {
		if filter == "" || strings.Contains(strings.ToLower(r.Title), strings.ToLower(filter)) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

type stubMatcher struct {
	matches  []domain.RankedMatch
	err      error
	gotText  string
	gotTopN  int
	prepared int
}

func (m *stubMatcher) FindTopRoles(
	_ context.Context, text string, _ domain.OccupationTable, topN int,
) ([]domain.RankedMatch, error) {
	m.gotText = text
	m.gotTopN = topN
	return m.matches, m.err
}

func (m *stubMatcher) Prepare(_ context.Context, _ domain.OccupationTable) error {
	m.prepared++
	return nil
}

func nationalTable() domain.OccupationTable {
	t := domain.EmptyOccupationTable()
	for _, r := range []domain.OccupationRecord{
		{Title: "All Occupations", MeanAnnualSalary: 65470},
		{Title: "Software Developers", MeanAnnualSalary: 138110},
		{Title: "Registered Nurses", MeanAnnualSalary: 94480},
		{Title: "Cashiers", MeanAnnualSalary: 31070},
		{Title: "Mystery Role"},
	} {
		r.Description = r.Title
		t.Rows = append(t.Rows, r)
	}
	return t
}

func geoRow(state, title string, emp float64) domain.GeoEmploymentRecord {
	return domain.GeoEmploymentRecord{State: state, Title: title, TotalEmployment: emp}
}

func geoTable() domain.GeoTable {
	t := domain.EmptyGeoTable()
	t.Rows = []domain.GeoEmploymentRecord{
		geoRow(geo.National, "Software Developers", 1600000),
		geoRow("California", "Software Developers", 300000),
		geoRow("Texas", "Software Developers", 120000),
		geoRow("Washington", "Software Developers", 110000),
		geoRow("Ohio", "Software Developers", 0),
		geoRow("California", "Registered Nurses", 320000),
		geoRow("New York", "Registered Nurses", 190000),
		geoRow("California", "Nurse Practitioners", 20000),
	}
	return t
}

func newTestService(matches []domain.RankedMatch) (*Service, *stubExtractor, *stubSource, *stubMatcher) {
	ext := &stubExtractor{profile: domain.Profile{
		Name:       "Jane Doe",
		Title:      "Software Engineer",
		Location:   "San Francisco Bay Area",
		Summary:    "Builds services (mostly Go)",
		Education:  "BS Computer Science",
		Experience: strings.Repeat("a", 400),
		Skills:     "Go, Python",
	}}
	src := &stubSource{national: nationalTable(), geo: geoTable()}
	m := &stubMatcher{matches: matches}
	return New(ext, src, m, 3), ext, src, m
}
