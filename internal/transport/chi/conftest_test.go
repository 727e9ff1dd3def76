package chi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/josephmathew0/Monty/internal/domain"
	"github.com/josephmathew0/Monty/internal/domain/geo"
	analysisuc "github.com/josephmathew0/Monty/internal/usecase/analysis"
	healthuc "github.com/josephmathew0/Monty/internal/usecase/health"
)

// --- Mocks ---

type stubAnalyzer struct {
	result analysisuc.Result
	err    error
	// tokens, when set, are recorded as embedding usage by Analyze and Match.
	tokens *int

	gotResume []byte
	gotRegion geo.Region
	gotText   string
	gotTopN   int
	gotTitle  string
	gotFilter string
}

func (s *stubAnalyzer) Analyze(ctx context.Context, resume []byte, region geo.Region) (analysisuc.Result, error) {
	s.spend(ctx)
	s.gotResume = resume
	s.gotRegion = region
	return s.result, s.err
}

func (s *stubAnalyzer) Match(ctx context.Context, text string, topN int) ([]domain.RankedMatch, error) {
	s.spend(ctx)
	s.gotText = text
	s.gotTopN = topN
	if s.err != nil {
		return nil, s.err
	}
	return s.result.Matches, nil
}

func (s *stubAnalyzer) Distribution(_ context.Context, title string, region geo.Region) analysisuc.Distribution {
	s.gotTitle = title
	s.gotRegion = region
	return s.result.Geo
}

func (s *stubAnalyzer) Occupations(_ context.Context, filter string) domain.OccupationTable {
	s.gotFilter = filter
	t := domain.EmptyOccupationTable()
	if s.result.TopRole != nil {
		t.Rows = append(t.Rows, *s.result.TopRole)
	}
	return t
}

func (s *stubAnalyzer) GeoRows(_ context.Context, filter string) domain.GeoTable {
	s.gotFilter = filter
	t := domain.EmptyGeoTable()
	t.Rows = s.result.GeoRows
	return t
}

func (s *stubAnalyzer) spend(ctx context.Context) {
	if s.tokens != nil && s.err == nil {
		domain.UsageFromContext(ctx).AddTokens(*s.tokens)
	}
}

type stubHealth struct {
	report healthuc.Report
}

func (s *stubHealth) Check(_ context.Context) healthuc.Report { return s.report }

// --- Helpers ---

func sampleResult() analysisuc.Result {
	top := domain.OccupationRecord{Title: "Software Developers", MeanAnnualSalary: 138110}
	return analysisuc.Result{
		ID:      "a1",
		Profile: domain.Profile{Name: "Jane Doe", Title: "Engineer"},
		Matches: []domain.RankedMatch{{Title: "Software Developers", Score: 0.91}},
		TopRole: &top,
		GeoRows: []domain.GeoEmploymentRecord{{State: "California", Title: "Software Developers", TotalEmployment: 300000}},
		Geo: analysisuc.Distribution{
			Title:  "Software Developers",
			Region: geo.RegionAll,
			Center: geo.Center,
			States: []analysisuc.StateEmployment{{State: "California", Region: geo.RegionWest, Employment: 300000}},
		},
	}
}

func newTestRouter(a *stubAnalyzer, maxUpload int64) http.Handler {
	h := &stubHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{
		healthuc.ComponentDatasets: healthuc.CheckOK,
	}}}
	return newTestRouterWithHealth(a, h, maxUpload)
}

func newTestRouterWithHealth(a *stubAnalyzer, h *stubHealth, maxUpload int64) http.Handler {
	r := chi.NewRouter()
	NewServer(a, h, maxUpload, zap.NewNop()).Routes(r)
	return r
}
