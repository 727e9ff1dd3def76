package occupation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// sheet is a header row plus data rows, read from the first worksheet or a CSV file.
type sheet struct {
	header []string
	rows   [][]string
}

// readSheet reads at most maxRows data rows (0 = all) from an .xlsx or .csv file.
func readSheet(path string, maxRows int) (sheet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readXLSX(path, maxRows)
	case ".csv":
		return readCSV(path, maxRows)
	default:
		return sheet{}, fmt.Errorf("unsupported dataset format %q", filepath.Ext(path))
	}
}

func readXLSX(path string, maxRows int) (sheet, error) {
	f, err := excelize.OpenFile(filepath.Clean(path), excelize.Options{RawCellValue: true})
	if err != nil {
		return sheet{}, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return sheet{}, errors.New("workbook has no sheets")
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return sheet{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	defer func() { _ = rows.Close() }()

	var s sheet
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return sheet{}, fmt.Errorf("read row: %w", err)
		}
		if s.header == nil {
			s.header = cols
			continue
		}
		if maxRows > 0 && len(s.rows) >= maxRows {
			break
		}
		s.rows = append(s.rows, cols)
	}
	if err := rows.Error(); err != nil {
		return sheet{}, fmt.Errorf("iterate rows: %w", err)
	}
	if s.header == nil {
		return sheet{}, errors.New("sheet is empty")
	}
	return s, nil
}

func readCSV(path string, maxRows int) (sheet, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return sheet{}, fmt.Errorf("open csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var s sheet
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sheet{}, fmt.Errorf("read csv: %w", err)
		}
		if s.header == nil {
			if len(rec) > 0 {
				rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
			}
			s.header = rec
			continue
		}
		if maxRows > 0 && len(s.rows) >= maxRows {
			break
		}
		s.rows = append(s.rows, rec)
	}
	if s.header == nil {
		return sheet{}, errors.New("csv is empty")
	}
	return s, nil
}

// columns maps header names, matched case-insensitively, to column indexes.
type columns map[string]int

func indexColumns(header []string) columns {
	idx := make(columns, len(header))
	for i, h := range header {
		key := strings.ToUpper(strings.TrimSpace(h))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// require returns an error naming every missing column.
func (c columns) require(names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := c[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c columns) has(name string) bool {
	_, ok := c[name]
	return ok
}

// cell returns the trimmed value of column name in row, or "" when absent.
func (c columns) cell(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// number parses a numeric cell. Suppressed or garbage values ("*", "#", "N/A", ""),
// negatives, NaN and infinities all become 0. Thousands separators are accepted.
func (c columns) number(row []string, name string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(c.cell(row, name), ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
