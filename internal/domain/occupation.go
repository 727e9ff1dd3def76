package domain

import "strings"

// Column names of the national occupation table.
const (
	ColOccupation  = "Occupation"
	ColDescription = "Description"
	ColMeanAnnual  = "A_MEAN"
	ColMedian      = "A_MEDIAN"
	ColMeanHourly  = "H_MEAN"
	ColEmployment  = "TOT_EMP"
)

// Column names of the state-level employment table.
const (
	ColAreaTitle = "AREA_TITLE"
	ColOccTitle  = "OCC_TITLE"
)

// AllOccupationsTitle is the title of the aggregate row in the national table.
const AllOccupationsTitle = "All Occupations"

// OccupationColumns is the schema every OccupationTable produced by the loader carries.
var OccupationColumns = []string{
	ColOccupation, ColDescription, ColMeanAnnual, ColMedian, ColMeanHourly, ColEmployment,
}

// GeoColumns is the schema every GeoTable produced by the loader carries.
var GeoColumns = []string{ColAreaTitle, ColOccTitle, ColEmployment, ColMeanHourly}

// OccupationRecord is one row of the national occupational table.
// Numeric fields are never negative; unparseable source values become 0.
type OccupationRecord struct {
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	MeanAnnualSalary   float64 `json:"mean_annual_salary"`
	MedianAnnualSalary float64 `json:"median_annual_salary"`
	MeanHourlyWage     float64 `json:"mean_hourly_wage"`
	TotalEmployment    float64 `json:"total_employment"`
}

// OccupationTable is an ordered set of occupation rows plus the schema that produced them.
type OccupationTable struct {
	Columns []string
	Rows    []OccupationRecord
}

// EmptyOccupationTable returns a table with the full schema and no rows.
func EmptyOccupationTable() OccupationTable {
	return OccupationTable{Columns: append([]string(nil), OccupationColumns...)}
}

// Len returns the number of rows.
func (t OccupationTable) Len() int { return len(t.Rows) }

// MissingColumns returns the requested columns absent from the schema, in request order.
func (t OccupationTable) MissingColumns(cols ...string) []string {
	return missing(t.Columns, cols)
}

// Find returns the first row whose title equals title, ignoring case.
func (t OccupationTable) Find(title string) (OccupationRecord, bool) {
	for _, r := range t.Rows {
		if strings.EqualFold(r.Title, title) {
			return r, true
		}
	}
	return OccupationRecord{}, false
}

// GeoEmploymentRecord is one state-level (or national) employment row.
type GeoEmploymentRecord struct {
	State           string  `json:"state"`
	Title           string  `json:"title"`
	TotalEmployment float64 `json:"total_employment"`
	MeanHourlyWage  float64 `json:"mean_hourly_wage"`
}

// GeoTable is an ordered set of state-level rows plus the schema that produced them.
type GeoTable struct {
	Columns []string
	Rows    []GeoEmploymentRecord
}

// EmptyGeoTable returns a table with the full schema and no rows.
func EmptyGeoTable() GeoTable {
	return GeoTable{Columns: append([]string(nil), GeoColumns...)}
}

// Len returns the number of rows.
func (t GeoTable) Len() int { return len(t.Rows) }

// RankedMatch is an occupation title with its cosine similarity score (4 decimals).
type RankedMatch struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

func missing(have, want []string) []string {
	set := make(map[string]struct{}, len(have))
	for _, c := range have {
		set[c] = struct{}{}
	}
	var out []string
	for _, c := range want {
		if _, ok := set[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}
