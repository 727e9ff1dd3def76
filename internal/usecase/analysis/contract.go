package analysis

import (
	"context"

	"github.com/josephmathew0/Monty/internal/domain"
)

// ProfileExtractor turns resume bytes into a Profile. It never fails; unreadable input
// yields domain.FailedProfile.
type ProfileExtractor interface {
	Extract(ctx context.Context, data []byte) domain.Profile
}

// OccupationSource provides the reference tables. Failures surface as empty tables.
type OccupationSource interface {
	LoadJobData(ctx context.Context) domain.OccupationTable
	LoadGeographicJobData(ctx context.Context, occupationFilter string) domain.GeoTable
}

// RoleMatcher ranks occupations against free text.
type RoleMatcher interface {
	FindTopRoles(ctx context.Context, text string, table domain.OccupationTable, topN int) ([]domain.RankedMatch, error)
}

// corpusPreparer is implemented by matchers that can embed the occupation corpus ahead of time.
type corpusPreparer interface {
	Prepare(ctx context.Context, table domain.OccupationTable) error
}
