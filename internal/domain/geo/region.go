package geo

import (
	"fmt"
	"strings"

	"github.com/josephmathew0/Monty/internal/domain"
)

// Region is a Census Bureau region filter.
type Region string

// Supported regions. RegionAll disables filtering.
const (
	RegionAll       Region = "All"
	RegionWest      Region = "West"
	RegionMidwest   Region = "Midwest"
	RegionSouth     Region = "South"
	RegionNortheast Region = "Northeast"
)

var regionStates = map[Region][]string{
	RegionWest: {
		"California", "Oregon", "Washington", "Nevada", "Idaho",
		"Montana", "Wyoming", "Utah", "Colorado", "Alaska", "Hawaii",
		"Arizona", "New Mexico",
	},
	RegionMidwest: {
		"North Dakota", "South Dakota", "Nebraska", "Kansas", "Minnesota",
		"Iowa", "Missouri", "Wisconsin", "Illinois", "Indiana", "Michigan", "Ohio",
	},
	RegionSouth: {
		"Delaware", "Maryland", "Virginia", "West Virginia", "Kentucky",
		"Tennessee", "North Carolina", "South Carolina", "Georgia",
		"Florida", "Alabama", "Mississippi", "Arkansas", "Louisiana", "Texas", "Oklahoma",
	},
	RegionNortheast: {
		"Maine", "New Hampshire", "Vermont", "Massachusetts", "Rhode Island",
		"Connecticut", "New York", "New Jersey", "Pennsylvania",
	},
}

// ParseRegion resolves a region token case-insensitively. An empty token means RegionAll.
func ParseRegion(s string) (Region, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RegionAll, nil
	}
	for _, r := range []Region{RegionAll, RegionWest, RegionMidwest, RegionSouth, RegionNortheast} {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: unknown region %q", domain.ErrInvalidInput, s)
}

// Contains reports whether state belongs to the region. RegionAll contains every state.
// The District of Columbia belongs to no specific region.
func (r Region) Contains(state string) bool {
	if r == RegionAll {
		return true
	}
	for _, s := range regionStates[r] {
		if s == state {
			return true
		}
	}
	return false
}

// RegionOf returns the Census region of a state, or RegionAll when it has none.
func RegionOf(state string) Region {
	for _, r := range []Region{RegionWest, RegionMidwest, RegionSouth, RegionNortheast} {
		if r.Contains(state) {
			return r
		}
	}
	return RegionAll
}
