// Package occupation loads the BLS occupational employment and wage tables.
package occupation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/josephmathew0/Monty/internal/domain"
	"github.com/josephmathew0/Monty/internal/domain/geo"
	"github.com/josephmathew0/Monty/internal/lazy"
	"github.com/josephmathew0/Monty/internal/metrics"
)

// DefaultGeoMaxRows caps how many data rows of the state-level file are read.
const DefaultGeoMaxRows = 100000

const (
	datasetNational = "national"
	datasetGeo      = "geo"
)

// Source column names.
const (
	srcOccTitle  = "OCC_TITLE"
	srcAreaTitle = "AREA_TITLE"
	srcAreaType  = "AREA_TYPE"
	srcIGroup    = "I_GROUP"
	srcMean      = "A_MEAN"
	srcMedian    = "A_MEDIAN"
	srcHourly    = "H_MEAN"
	srcEmp       = "TOT_EMP"
)

// Options locates the source files.
type Options struct {
	NationalPath string
	GeoPath      string
	GeoMaxRows   int
}

// Loader reads the national and state-level occupation tables.
// Successful reads are cached; a failed read yields an empty table and is retried on the next call.
type Loader struct {
	opts     Options
	national lazy.Slot[domain.OccupationTable]
	geoBase  *lazy.Slot[domain.GeoTable]
	logger   *zap.Logger
}

// NewLoader creates a loader. geoCache holds the unfiltered state-level table and may be
// shared; nil allocates a private slot.
func NewLoader(opts Options, geoCache *lazy.Slot[domain.GeoTable], logger *zap.Logger) *Loader {
	if opts.GeoMaxRows <= 0 {
		opts.GeoMaxRows = DefaultGeoMaxRows
	}
	if geoCache == nil {
		geoCache = &lazy.Slot[domain.GeoTable]{}
	}
	return &Loader{opts: opts, geoBase: geoCache, logger: logger}
}

// LoadJobData returns the national occupation table. Any failure yields an empty table
// with the full schema.
func (l *Loader) LoadJobData(ctx context.Context) domain.OccupationTable {
	tbl, err := l.national.Get(ctx, l.readNational)
	if err != nil {
		l.logger.Error("Failed to load national occupation data",
			zap.String("path", l.opts.NationalPath),
			zap.Error(err),
		)
		return domain.EmptyOccupationTable()
	}
	return cloneOccupations(tbl)
}

// LoadGeographicJobData returns state-level (and national) rows, optionally restricted to
// titles containing occupationFilter, case-insensitively. Any failure yields an empty
// table with the full schema.
func (l *Loader) LoadGeographicJobData(ctx context.Context, occupationFilter string) domain.GeoTable {
	base, err := l.geoBase.Get(ctx, l.readGeo)
	if err != nil {
		l.logger.Error("Failed to load geographic occupation data",
			zap.String("path", l.opts.GeoPath),
			zap.Error(err),
		)
		return domain.EmptyGeoTable()
	}

	needle := strings.ToLower(strings.TrimSpace(occupationFilter))
	out := domain.EmptyGeoTable()
	for _, r := range base.Rows {
		if needle == "" || strings.Contains(strings.ToLower(r.Title), needle) {
			out.Rows = append(out.Rows, r)
		}
	}

	l.logger.Debug("Filtered geographic data",
		zap.String("filter", occupationFilter),
		zap.Int("rows", len(out.Rows)),
	)
	return out
}

// Reload drops both cached tables; the next calls read the files again.
func (l *Loader) Reload() {
	l.national.Invalidate()
	l.geoBase.Invalidate()
}

// HealthCheck loads the national table and reports domain.ErrDataUnavailable when it is empty.
func (l *Loader) HealthCheck(ctx context.Context) error {
	if l.LoadJobData(ctx).Len() == 0 {
		return fmt.Errorf("national table %s: %w", l.opts.NationalPath, domain.ErrDataUnavailable)
	}
	return nil
}

// Loaded reports which tables are currently cached.
func (l *Loader) Loaded() (national, geographic bool) {
	_, national = l.national.Peek()
	_, geographic = l.geoBase.Peek()
	return national, geographic
}

func (l *Loader) readNational(_ context.Context) (domain.OccupationTable, error) {
	start := time.Now()
	tbl, err := readNationalTable(l.opts.NationalPath)
	observeLoad(datasetNational, start, len(tbl.Rows), err)
	if err != nil {
		return domain.OccupationTable{}, err
	}

	l.logger.Info("National occupation data loaded",
		zap.String("path", l.opts.NationalPath),
		zap.Int("rows", len(tbl.Rows)),
		zap.Duration("duration", time.Since(start)),
	)
	return tbl, nil
}

func (l *Loader) readGeo(_ context.Context) (domain.GeoTable, error) {
	start := time.Now()
	tbl, err := readGeoTable(l.opts.GeoPath, l.opts.GeoMaxRows)
	observeLoad(datasetGeo, start, len(tbl.Rows), err)
	if err != nil {
		return domain.GeoTable{}, err
	}

	l.logger.Info("Geographic base data loaded",
		zap.String("path", l.opts.GeoPath),
		zap.Int("rows", len(tbl.Rows)),
		zap.Duration("duration", time.Since(start)),
	)
	return tbl, nil
}

func readNationalTable(path string) (domain.OccupationTable, error) {
	s, err := readSheet(path, 0)
	if err != nil {
		return domain.OccupationTable{}, fmt.Errorf("%w: %w", domain.ErrDataUnavailable, err)
	}
	cols := indexColumns(s.header)
	if err := cols.require(srcOccTitle, srcMean, srcMedian, srcHourly, srcEmp); err != nil {
		return domain.OccupationTable{}, fmt.Errorf("%w: %w", domain.ErrDataUnavailable, err)
	}

	tbl := domain.EmptyOccupationTable()
	seen := make(map[string]struct{}, len(s.rows))
	for _, row := range s.rows {
		title := cols.cell(row, srcOccTitle)
		if title == "" {
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}

		tbl.Rows = append(tbl.Rows, domain.OccupationRecord{
			Title:              title,
			Description:        title,
			MeanAnnualSalary:   cols.number(row, srcMean),
			MedianAnnualSalary: cols.number(row, srcMedian),
			MeanHourlyWage:     cols.number(row, srcHourly),
			TotalEmployment:    cols.number(row, srcEmp),
		})
	}
	return tbl, nil
}

// readGeoTable keeps rows whose area resolves to an allowlisted state or the nation.
// When the file carries AREA_TYPE or I_GROUP, only national/state areas and
// cross-industry estimates are kept.
func readGeoTable(path string, maxRows int) (domain.GeoTable, error) {
	s, err := readSheet(path, maxRows)
	if err != nil {
		return domain.GeoTable{}, fmt.Errorf("%w: %w", domain.ErrDataUnavailable, err)
	}
	cols := indexColumns(s.header)
	if err := cols.require(srcAreaTitle, srcOccTitle, srcEmp, srcHourly); err != nil {
		return domain.GeoTable{}, fmt.Errorf("%w: %w", domain.ErrDataUnavailable, err)
	}
	checkType, checkGroup := cols.has(srcAreaType), cols.has(srcIGroup)

	tbl := domain.EmptyGeoTable()
	for _, row := range s.rows {
		title, area := cols.cell(row, srcOccTitle), cols.cell(row, srcAreaTitle)
		if title == "" || area == "" {
			continue
		}
		if checkType && !stateLevelAreaType(cols.cell(row, srcAreaType)) {
			continue
		}
		if checkGroup && !strings.EqualFold(cols.cell(row, srcIGroup), "cross-industry") {
			continue
		}
		state, ok := geo.Canonicalize(area)
		if !ok {
			continue
		}
		tbl.Rows = append(tbl.Rows, domain.GeoEmploymentRecord{
			State:           state,
			Title:           title,
			TotalEmployment: cols.number(row, srcEmp),
			MeanHourlyWage:  cols.number(row, srcHourly),
		})
	}
	return tbl, nil
}

// stateLevelAreaType accepts BLS area types 1 (U.S.), 2 (state) and 3 (territory).
func stateLevelAreaType(v string) bool {
	switch v {
	case "1", "2", "3":
		return true
	}
	return false
}

func observeLoad(dataset string, start time.Time, rows int, err error) {
	metrics.DatasetLoadDuration.WithLabelValues(dataset).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DatasetLoadsTotal.WithLabelValues(dataset, "error").Inc()
		return
	}
	metrics.DatasetLoadsTotal.WithLabelValues(dataset, "ok").Inc()
	metrics.DatasetRows.WithLabelValues(dataset).Set(float64(rows))
}

func cloneOccupations(t domain.OccupationTable) domain.OccupationTable {
	return domain.OccupationTable{
		Columns: append([]string(nil), t.Columns...),
		Rows:    append([]domain.OccupationRecord(nil), t.Rows...),
	}
}
