package analysis

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/josephmathew0/Monty/internal/domain"
)

var usd = message.NewPrinter(language.English)

// CompareSalary builds the salary comparison for role against the "All Occupations" row.
// Missing rows and zero means (unparseable source values) yield the unavailable notice.
func CompareSalary(table domain.OccupationTable, role string) SalaryComparison {
	roleRow, okRole := table.Find(role)
	allRow, okAll := table.Find(domain.AllOccupationsTitle)
	if !okRole || !okAll || roleRow.MeanAnnualSalary <= 0 || allRow.MeanAnnualSalary <= 0 {
		return SalaryComparison{Notice: NoticeSalaryUnavailable}
	}

	ratio := math.Round(roleRow.MeanAnnualSalary/allRow.MeanAnnualSalary*10) / 10
	direction := "lower"
	if ratio >= 1 {
		direction = "higher"
	}

	insight := "If you pursue a role like " + roleRow.Title +
		", your expected average salary is approximately " +
		strconv.FormatFloat(ratio, 'f', 1, 64) + "× " + direction +
		" than the national average (" + dollars(roleRow.MeanAnnualSalary) +
		" vs " + dollars(allRow.MeanAnnualSalary) + ")."

	return SalaryComparison{
		Role:         roleRow.Title,
		RoleMean:     roleRow.MeanAnnualSalary,
		NationalMean: allRow.MeanAnnualSalary,
		Ratio:        ratio,
		Direction:    direction,
		Insight:      insight,
	}
}

// dollars truncates to whole dollars with thousands separators.
func dollars(v float64) string {
	return usd.Sprintf("$%d", int64(v))
}
