package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"fuelpulse/internal/config"
	"fuelpulse/pkg/contracts/domain"
)

// DerivedHeaders is the column layout of a derived export: the input
// columns in their original order with the computed columns appended.
var DerivedHeaders = []string{
	"date",
	"city_price",
	"state_avg",
	"national_avg",
	"spread_vs_state",
	"spread_vs_national",
	"mom_pct",
	"yoy_pct",
	"year_month",
}

// DerivedExporter serializes derived price records to CSV.
type DerivedExporter struct {
	csvWriter *CSVWriter
}

// NewDerivedExporter creates a derived records exporter.
func NewDerivedExporter(paths *config.Paths) *DerivedExporter {
	return &DerivedExporter{csvWriter: NewCSVWriter(paths)}
}

// derivedRow formats a single record into the DerivedHeaders layout.
func derivedRow(r domain.DerivedRecord) []string {
	return []string{
		formatDate(r.Date),
		formatPrice(r.CityPrice),
		formatPrice(r.StateAvg),
		formatPrice(r.NationalAvg),
		formatPrice(r.SpreadVsState),
		formatPrice(r.SpreadVsNational),
		formatPct(r.MoMPct),
		formatPct(r.YoYPct),
		r.YearMonthLabel,
	}
}

// ExportCSV streams the records to the given export file path (resolved
// against the exports directory when relative), one row per month.
func (e *DerivedExporter) ExportCSV(filePath string, records []domain.DerivedRecord) error {
	stream, err := e.csvWriter.CreateStreamWriter(filePath, DerivedHeaders)
	if err != nil {
		return fmt.Errorf("failed to create derived export: %w", err)
	}
	defer stream.Close()

	for _, r := range records {
		if err := stream.WriteRecord(derivedRow(r)); err != nil {
			return fmt.Errorf("failed to write record %s: %w", r.YearMonthLabel, err)
		}
	}

	return nil
}

// WriteCSV writes the records to w without a BOM. This is the HTTP
// download path, where the response writer is not a file.
func WriteCSV(w io.Writer, records []domain.DerivedRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(DerivedHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for _, r := range records {
		if err := writer.Write(derivedRow(r)); err != nil {
			return fmt.Errorf("failed to write record %s: %w", r.YearMonthLabel, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
