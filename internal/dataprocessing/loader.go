package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"fuelpulse/pkg/contracts/domain"
)

// Canonical input column names. The legacy dashboard layout used
// gasoline_price / texas_avg; those headers are accepted as aliases so old
// exports keep loading.
const (
	ColumnDate        = "date"
	ColumnCityPrice   = "city_price"
	ColumnStateAvg    = "state_avg"
	ColumnNationalAvg = "national_avg"
)

// dateLayouts are tried in order when parsing a date cell. Whatever layout
// matches, the result is truncated to the first of the month in UTC.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006/01/02",
	"1/2/2006",
	"1/2006",
	time.RFC3339,
}

// Loader parses tabular fuel-price files into validated, chronologically
// ordered PriceRecords.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "loader"))}
}

// LoadStats describes what happened to the raw rows during a load.
type LoadStats struct {
	RawRows      int `json:"raw_rows"`
	Loaded       int `json:"loaded"`
	DroppedDates int `json:"dropped_dates"`
	DroppedPrice int `json:"dropped_prices"`
	Duplicates   int `json:"duplicates"`
}

// Dropped returns the total number of rows that did not survive the load.
func (s LoadStats) Dropped() int {
	return s.DroppedDates + s.DroppedPrice + s.Duplicates
}

// LoadFile reads a dataset file, dispatching on extension: .csv is read
// directly, .xlsx through the first sheet of the workbook. The returned
// series is sorted, deduplicated, and never empty with a nil error.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]domain.PriceRecord, LoadStats, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		file, err := os.Open(path)
		if err != nil {
			return nil, LoadStats{}, fmt.Errorf("open dataset: %w", err)
		}
		defer file.Close()
		return l.LoadCSV(ctx, file)
	case ".xlsx":
		return l.loadXLSX(ctx, path)
	default:
		return nil, LoadStats{}, fmt.Errorf("unsupported dataset format %q (want .csv or .xlsx)", ext)
	}
}

// LoadCSV parses CSV content from r. The first row is the header.
func (l *Loader) LoadCSV(ctx context.Context, r io.Reader) ([]domain.PriceRecord, LoadStats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("read CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, LoadStats{}, fmt.Errorf("dataset has no header row: %w", domain.ErrEmptySeries)
	}
	return l.loadRows(ctx, rows[0], rows[1:])
}

// loadXLSX reads the first sheet of a workbook and feeds its rows through
// the same path as CSV content.
func (l *Loader) loadXLSX(ctx context.Context, path string) ([]domain.PriceRecord, LoadStats, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, LoadStats{}, fmt.Errorf("workbook has no sheets: %w", domain.ErrEmptySeries)
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, LoadStats{}, fmt.Errorf("sheet %q has no header row: %w", sheets[0], domain.ErrEmptySeries)
	}
	return l.loadRows(ctx, rows[0], rows[1:])
}

// columnIndices holds the position of each required column, -1 when absent.
type columnIndices struct {
	date        int
	cityPrice   int
	stateAvg    int
	nationalAvg int
}

// findColumnIndices resolves the header against canonical names and their
// accepted aliases. Matching is case-insensitive and BOM-tolerant.
func findColumnIndices(header []string) columnIndices {
	indices := columnIndices{date: -1, cityPrice: -1, stateAvg: -1, nationalAvg: -1}

	for i, col := range header {
		clean := strings.TrimSpace(col)
		clean = strings.TrimPrefix(clean, "\ufeff")
		clean = strings.TrimSpace(clean)

		switch strings.ToLower(clean) {
		case ColumnDate, "month":
			if indices.date == -1 {
				indices.date = i
			}
		case ColumnCityPrice, "gasoline_price", "price":
			if indices.cityPrice == -1 {
				indices.cityPrice = i
			}
		case ColumnStateAvg, "texas_avg", "state_average":
			if indices.stateAvg == -1 {
				indices.stateAvg = i
			}
		case ColumnNationalAvg, "us_avg", "national_average":
			if indices.nationalAvg == -1 {
				indices.nationalAvg = i
			}
		}
	}

	return indices
}

// missingColumns lists the canonical names of any unresolved columns.
func (c columnIndices) missingColumns() []string {
	var missing []string
	if c.date == -1 {
		missing = append(missing, ColumnDate)
	}
	if c.cityPrice == -1 {
		missing = append(missing, ColumnCityPrice)
	}
	if c.stateAvg == -1 {
		missing = append(missing, ColumnStateAvg)
	}
	if c.nationalAvg == -1 {
		missing = append(missing, ColumnNationalAvg)
	}
	return missing
}

// loadRows validates the header, parses every data row, then sorts and
// deduplicates the result.
func (l *Loader) loadRows(ctx context.Context, header []string, rows [][]string) ([]domain.PriceRecord, LoadStats, error) {
	columns := findColumnIndices(header)
	if missing := columns.missingColumns(); len(missing) > 0 {
		return nil, LoadStats{}, domain.NewSchemaError(missing)
	}

	stats := LoadStats{RawRows: len(rows)}
	records := make([]domain.PriceRecord, 0, len(rows))

	for i, row := range rows {
		// Header is line 1, so data line numbers start at 2.
		line := i + 2

		date, ok := parseCell(row, columns.date, parseMonth)
		if !ok {
			stats.DroppedDates++
			l.logger.WarnContext(ctx, "dropping row with unparseable date",
				slog.Int("line", line),
				slog.String("value", cellValue(row, columns.date)))
			continue
		}

		record := domain.PriceRecord{Date: date}
		badPrice := ""
		if record.CityPrice, ok = parseCell(row, columns.cityPrice, parsePrice); !ok {
			badPrice = ColumnCityPrice
		} else if record.StateAvg, ok = parseCell(row, columns.stateAvg, parsePrice); !ok {
			badPrice = ColumnStateAvg
		} else if record.NationalAvg, ok = parseCell(row, columns.nationalAvg, parsePrice); !ok {
			badPrice = ColumnNationalAvg
		}
		if badPrice != "" {
			stats.DroppedPrice++
			l.logger.WarnContext(ctx, "dropping row with invalid price",
				slog.Int("line", line),
				slog.String("column", badPrice))
			continue
		}

		records = append(records, record)
	}

	records, duplicates := normalize(records)
	stats.Duplicates = len(duplicates)
	for _, d := range duplicates {
		l.logger.WarnContext(ctx, "dropping duplicate month, keeping first occurrence",
			slog.String("month", d.Format("2006-01")))
	}

	if len(records) == 0 {
		return nil, stats, fmt.Errorf("no usable rows in %d raw rows: %w", stats.RawRows, domain.ErrEmptySeries)
	}

	stats.Loaded = len(records)
	l.logger.InfoContext(ctx, "dataset loaded",
		slog.Int("raw_rows", stats.RawRows),
		slog.Int("loaded", stats.Loaded),
		slog.Int("dropped", stats.Dropped()),
		slog.String("first_month", records[0].YearMonth()),
		slog.String("last_month", records[len(records)-1].YearMonth()))

	return records, stats, nil
}

// normalize sorts ascending by date and removes duplicate months, keeping
// the first occurrence in input order. It returns the dropped dates.
func normalize(records []domain.PriceRecord) ([]domain.PriceRecord, []time.Time) {
	// Stable sort so that equal dates keep their input order and
	// first-wins dedup below is well defined.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})

	var duplicates []time.Time
	out := records[:0]
	for _, r := range records {
		if len(out) > 0 && out[len(out)-1].Date.Equal(r.Date) {
			duplicates = append(duplicates, r.Date)
			continue
		}
		out = append(out, r)
	}
	return out, duplicates
}

// parseCell extracts column idx from row and runs parse on it.
func parseCell[T any](row []string, idx int, parse func(string) (T, bool)) (T, bool) {
	var zero T
	if idx >= len(row) {
		return zero, false
	}
	return parse(strings.TrimSpace(row[idx]))
}

func cellValue(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseMonth parses a date cell and truncates it to first-of-month UTC.
func parseMonth(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parsePrice parses a price cell. Currency symbols and thousands separators
// are tolerated; non-finite values are rejected.
func parsePrice(s string) (float64, bool) {
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
