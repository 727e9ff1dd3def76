// Package analysis orchestrates resume extraction, occupation matching and the salary and
// geographic insights derived from the best match.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/josephmathew0/Monty/internal/domain"
	"github.com/josephmathew0/Monty/internal/domain/geo"
	"github.com/josephmathew0/Monty/internal/logger"
	"github.com/josephmathew0/Monty/internal/normalize"
)

// Service runs the analysis pipeline.
type Service struct {
	extractor ProfileExtractor
	source    OccupationSource
	matcher   RoleMatcher
	topN      int
}

// New creates an analysis service. topN <= 0 lets the matcher apply its default.
func New(extractor ProfileExtractor, source OccupationSource, matcher RoleMatcher, topN int) *Service {
	return &Service{extractor: extractor, source: source, matcher: matcher, topN: topN}
}

// Analyze extracts a profile from resume bytes and derives role, salary and geo insights.
// Extraction and dataset problems degrade the result; matcher errors are returned.
func (s *Service) Analyze(ctx context.Context, resume []byte, region geo.Region) (Result, error) {
	id := uuid.NewString()
	ctx, log := logger.With(ctx, zap.String("analysis_id", id))

	profile := s.extractor.Extract(ctx, resume)
	res := Result{
		ID:                id,
		Profile:           profile,
		ExperiencePreview: profile.ExperiencePreview(),
		MatchText:         normalize.MatchText(profile),
		Matches:           []domain.RankedMatch{},
		GeoRows:           []domain.GeoEmploymentRecord{},
	}

	table := s.source.LoadJobData(ctx)
	matches, err := s.matcher.FindTopRoles(ctx, res.MatchText, table, s.topN)
	if err != nil {
		return Result{}, fmt.Errorf("find top roles: %w", err)
	}
	if len(matches) == 0 {
		res.Salary = SalaryComparison{Notice: NoticeSalaryUnavailable}
		res.Geo = Distribute(nil, "", region)
		log.Info("Analysis found no matching role",
			zap.Bool("profile_failed", profile.IsFailed()),
			zap.Int("occupations", table.Len()),
		)
		return res, nil
	}

	res.Matches = matches

	top := matches[0].Title
	if r, ok := table.Find(top); ok {
		res.TopRole = &r
	}
	if r, ok := table.Find(domain.AllOccupationsTitle); ok {
		res.AllOccupations = &r
	}
	res.Salary = CompareSalary(table, top)

	res.Geo, res.GeoRows = s.distribution(ctx, top, region)

	log.Info("Analysis completed",
		zap.String("top_role", top),
		zap.Float64("score", matches[0].Score),
		zap.Bool("salary", res.Salary.Available()),
		zap.Int("states", len(res.Geo.States)),
	)
	return res, nil
}

// Match ranks occupations against free text, bypassing extraction.
func (s *Service) Match(ctx context.Context, text string, topN int) ([]domain.RankedMatch, error) {
	if topN <= 0 {
		topN = s.topN
	}
	matches, err := s.matcher.FindTopRoles(ctx, text, s.source.LoadJobData(ctx), topN)
	if err != nil {
		return nil, fmt.Errorf("find top roles: %w", err)
	}
	return matches, nil
}

// Distribution reports where title is employed within region.
func (s *Service) Distribution(ctx context.Context, title string, region geo.Region) Distribution {
	d, _ := s.distribution(ctx, title, region)
	return d
}

// Occupations returns national rows whose title contains filter, case-insensitively.
func (s *Service) Occupations(ctx context.Context, filter string) domain.OccupationTable {
	return filterOccupations(s.source.LoadJobData(ctx), filter)
}

// GeoRows returns raw state-level rows whose title contains filter.
func (s *Service) GeoRows(ctx context.Context, filter string) domain.GeoTable {
	return s.source.LoadGeographicJobData(ctx, filter)
}

// Warm loads both datasets and, when the matcher supports it, embeds the occupation corpus.
func (s *Service) Warm(ctx context.Context) error {
	table := s.source.LoadJobData(ctx)
	s.source.LoadGeographicJobData(ctx, "")
	if p, ok := s.matcher.(corpusPreparer); ok {
		if err := p.Prepare(ctx, table); err != nil {
			return fmt.Errorf("prepare corpus: %w", err)
		}
	}
	return nil
}

func (s *Service) distribution(
	ctx context.Context, title string, region geo.Region,
) (Distribution, []domain.GeoEmploymentRecord) {
	base := s.source.LoadGeographicJobData(ctx, "")
	rows := SelectGeoRows(base.Rows, title)
	if rows == nil {
		rows = []domain.GeoEmploymentRecord{}
	}
	return Distribute(rows, title, region), rows
}

func filterOccupations(t domain.OccupationTable, filter string) domain.OccupationTable {
	needle := strings.ToLower(strings.TrimSpace(filter))
	out := domain.OccupationTable{Columns: t.Columns, Rows: []domain.OccupationRecord{}}
	for _, r := range t.Rows {
		if needle == "" || strings.Contains(strings.ToLower(r.Title), needle) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}
