package analysis

import (
	"github.com/josephmathew0/Monty/internal/domain"
	"github.com/josephmathew0/Monty/internal/domain/geo"
)

// Presentation placeholders for missing data.
const (
	NoticeSalaryUnavailable = "Salary data not available for this role."
	NoticeNoGeoData         = "No geographic data available for this role."
	noticeNoRegionFormat    = "No data available for %s region."
)

// Result is the full outcome of analyzing one resume.
type Result struct {
	ID                string                       `json:"id"`
	Profile           domain.Profile               `json:"profile"`
	ExperiencePreview string                       `json:"experience_preview"`
	MatchText         string                       `json:"match_text"`
	Matches           []domain.RankedMatch         `json:"matches"`
	TopRole           *domain.OccupationRecord     `json:"top_role,omitempty"`
	AllOccupations    *domain.OccupationRecord     `json:"all_occupations,omitempty"`
	Salary            SalaryComparison             `json:"salary"`
	GeoRows           []domain.GeoEmploymentRecord `json:"geo_rows"`
	Geo               Distribution                 `json:"geo"`
}

// SalaryComparison compares the top role's mean annual wage with the all-occupations mean.
// When either side is unknown only Notice is set.
type SalaryComparison struct {
	Role         string  `json:"role,omitempty"`
	RoleMean     float64 `json:"role_mean,omitempty"`
	NationalMean float64 `json:"national_mean,omitempty"`
	// Ratio is RoleMean / NationalMean rounded to one decimal.
	Ratio     float64 `json:"ratio,omitempty"`
	Direction string  `json:"direction,omitempty"`
	Insight   string  `json:"insight,omitempty"`
	Notice    string  `json:"notice,omitempty"`
}

// Available reports whether both salaries were found.
func (s SalaryComparison) Available() bool { return s.Notice == "" }

// StateEmployment is one map marker.
type StateEmployment struct {
	State      string     `json:"state"`
	Region     geo.Region `json:"region"`
	Employment float64    `json:"employment"`
	Lat        float64    `json:"lat"`
	Lon        float64    `json:"lon"`
	Radius     float64    `json:"radius"`
}

// Distribution is the per-state employment of one occupation within a region.
type Distribution struct {
	Title  string            `json:"title"`
	Region geo.Region        `json:"region"`
	Center geo.Point         `json:"center"`
	States []StateEmployment `json:"states"`
	// National is the employment reported for the whole country, 0 when absent.
	National float64 `json:"national"`
	Notice   string  `json:"notice,omitempty"`
}
