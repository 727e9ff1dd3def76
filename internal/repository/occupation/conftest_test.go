package occupation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/josephmathew0/Monty/internal/domain"
	"github.com/josephmathew0/Monty/internal/lazy"
)

// writeXLSX stores rows in the first sheet of a new workbook.
func writeXLSX(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "national.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func writeCSV(t *testing.T, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func newTestLoader(opts Options) *Loader {
	return NewLoader(opts, &lazy.Slot[domain.GeoTable]{}, zap.NewNop())
}

var nationalRows = [][]any{
	{"OCC_CODE", "OCC_TITLE", "TOT_EMP", "H_MEAN", "A_MEAN", "A_MEDIAN"},
	{"00-0000", "All Occupations", 151853870, 31.48, 65470, 48060},
	{"15-2051", "Data Scientists", 192710, 58.4, 121470, 112590},
	{"15-2051", "Data Scientists", 1, 1, 1, 1},
	{"99-9999", "", 10, 10, 10, 10},
	{"27-2011", "Actors", 51280, 27.73, "*", "#"},
	{"45-2099", "  Farmworkers, all other  ", -5, "n/a", 36000, 35000},
}

var geoLines = []string{
	"AREA_TITLE,AREA_TYPE,I_GROUP,OCC_TITLE,TOT_EMP,H_MEAN",
	"U.S.,1,cross-industry,Registered Nurses,3175390,45.42",
	"California,2,cross-industry,Registered Nurses,\"325,620\",65.49",
	"Texas,2,cross-industry,Nurse Practitioners,21530,59.08",
	"Texas,2,cross-industry,Software Engineer,94080,62.10",
	"Texas,2,cross-industry,Data Scientist,9480,55.00",
	"\"Boston-Cambridge-Nashua, MA-NH\",4,cross-industry,Registered Nurses,68650,53.1",
	"Guam,3,cross-industry,Registered Nurses,1200,30",
	"U.S.,1,4-digit,Registered Nurses,900000,44",
	",2,cross-industry,Registered Nurses,10,10",
}
