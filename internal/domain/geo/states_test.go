package geo

import (
	"errors"
	"testing"

	"github.com/josephmathew0/Monty/internal/domain"
)

func TestStates_Allowlist(t *testing.T) {
	got := States()
	if len(got) != 51 {
		t.Fatalf("expected 51 states, got %d", len(got))
	}
	if got[0] != "Alabama" || got[len(got)-1] != "Wyoming" {
		t.Errorf("expected sorted list, got first=%q last=%q", got[0], got[len(got)-1])
	}
	if !IsState("District of Columbia") {
		t.Error("District of Columbia must be allowlisted")
	}
	if IsState(National) {
		t.Error("national area is not a state")
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		label string
		want  string
		ok    bool
	}{
		{"California", "California", true},
		{"  texas ", "Texas", true},
		{"U.S.", National, true},
		{"United States", National, true},
		{"West Virginia", "West Virginia", true},
		{"State of West Virginia", "West Virginia", true},
		{"Virginia statewide", "Virginia", true},
		{"Arkansas", "Arkansas", true},
		{"Boston-Cambridge-Nashua, MA-NH", "", false},
		{"Kansas City, MO-KS", "", false},
		{"North Texas nonmetropolitan area", "", false},
		{"Guam", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := Canonicalize(tt.label)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Canonicalize(%q) = (%q, %v), want (%q, %v)", tt.label, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestCentroid(t *testing.T) {
	for _, s := range States() {
		if _, ok := Centroid(s); !ok {
			t.Errorf("missing centroid for %s", s)
		}
	}
	p, ok := Centroid(National)
	if !ok || p != Center {
		t.Errorf("expected national centroid %v, got %v", Center, p)
	}
	if _, ok := Centroid("Atlantis"); ok {
		t.Error("unexpected centroid for unknown area")
	}
}

func TestParseRegion(t *testing.T) {
	for in, want := range map[string]Region{
		"":          RegionAll,
		"all":       RegionAll,
		"West":      RegionWest,
		"midwest":   RegionMidwest,
		"SOUTH":     RegionSouth,
		"Northeast": RegionNortheast,
	} {
		got, err := ParseRegion(in)
		if err != nil {
			t.Fatalf("ParseRegion(%q): unexpected error %v", in, err)
		}
		if got != want {
			t.Errorf("ParseRegion(%q) = %q, want %q", in, got, want)
		}
	}

	_, err := ParseRegion("Pacific")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRegionContains(t *testing.T) {
	if !RegionWest.Contains("California") {
		t.Error("California is in the West")
	}
	if RegionWest.Contains("Texas") {
		t.Error("Texas is not in the West")
	}
	if !RegionAll.Contains("District of Columbia") {
		t.Error("All contains every area")
	}
	if RegionSouth.Contains("District of Columbia") {
		t.Error("District of Columbia has no region")
	}

	seen := map[string]Region{}
	for r, list := range regionStates {
		for _, s := range list {
			if !IsState(s) {
				t.Errorf("%s lists unknown state %q", r, s)
			}
			if prev, dup := seen[s]; dup {
				t.Errorf("%s listed in both %s and %s", s, prev, r)
			}
			seen[s] = r
		}
	}
	if len(seen) != 50 {
		t.Errorf("expected 50 states across regions, got %d", len(seen))
	}
}

func TestRegionOf(t *testing.T) {
	tests := map[string]Region{
		"Arizona":              RegionWest,
		"Ohio":                 RegionMidwest,
		"Texas":                RegionSouth,
		"Maine":                RegionNortheast,
		"District of Columbia": RegionAll,
		National:               RegionAll,
	}
	for state, want := range tests {
		if got := RegionOf(state); got != want {
			t.Errorf("RegionOf(%q) = %s, want %s", state, got, want)
		}
	}
}
