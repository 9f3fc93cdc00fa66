// Command report generates fuel price summaries from a dataset file
// without starting the web server. It prints a yearly table by default
// and can emit the derived CSV or the aggregate JSON document instead.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"fuelpulse/internal/analytics"
	"fuelpulse/internal/config"
	"fuelpulse/internal/dataprocessing"
	"fuelpulse/internal/exporter"
	"fuelpulse/pkg/contracts/domain"
)

func main() {
	source := flag.String("source", "", "dataset file to report on (defaults to the configured source file)")
	format := flag.String("format", "table", "output format: table, csv, or json")
	outPath := flag.String("out", "", "output file (defaults to stdout)")
	yoyMode := flag.String("yoy", "calendar", "year-over-year mode: calendar or positional")
	flag.Parse()

	logger := slog.Default()

	path := *source
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			slog.Error("Failed to load config", "error", err)
			os.Exit(1)
		}
		path = cfg.GetSourceFile()
	}
	if path == "" {
		slog.Error("No dataset file given and none configured, use -source")
		os.Exit(1)
	}

	mode, err := domain.ParseYoYMode(*yoyMode)
	if err != nil {
		slog.Error("Invalid yoy mode", "error", err)
		os.Exit(1)
	}

	derived, err := buildReport(context.Background(), logger, path, mode)
	if err != nil {
		slog.Error("Failed to build report", "error", err)
		os.Exit(1)
	}

	out := io.Writer(os.Stdout)
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			slog.Error("Failed to create output file", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if err := writeReport(out, *format, derived); err != nil {
		slog.Error("Failed to write report", "error", err)
		os.Exit(1)
	}
}

// buildReport loads and normalizes the dataset and computes the derived
// series.
func buildReport(ctx context.Context, logger *slog.Logger, path string, mode domain.YoYMode) ([]domain.DerivedRecord, error) {
	loader := dataprocessing.NewLoader(logger)
	records, stats, err := loader.LoadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	logger.Info("Dataset loaded",
		slog.String("source", path),
		slog.Int("rows", len(records)),
		slog.Int("dropped", stats.Dropped()))

	return dataprocessing.Derive(records, mode), nil
}

func writeReport(w io.Writer, format string, derived []domain.DerivedRecord) error {
	switch format {
	case "table":
		return writeYearlyTable(w, analytics.Yearly(derived))
	case "csv":
		return exporter.WriteCSV(w, derived)
	case "json":
		return writeSummaryJSON(w, derived)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeYearlyTable(w io.Writer, yearly []domain.YearlySummary) error {
	fmt.Fprintf(w, "%-6s %10s %10s %10s %7s\n", "year", "city", "state", "national", "months")
	for _, y := range yearly {
		marker := ""
		if !y.Complete {
			marker = "*"
		}
		fmt.Fprintf(w, "%-6d %10.3f %10.3f %10.3f %6d%s\n",
			y.Year, y.MeanCityPrice, y.MeanStateAvg, y.MeanNationalAvg, y.Count, marker)
	}
	fmt.Fprintln(w, "* partial year")
	return nil
}

func writeSummaryJSON(w io.Writer, derived []domain.DerivedRecord) error {
	doc := exporter.SummaryDocument{
		GeneratedAt: time.Now().UTC(),
		Months:      len(derived),
		Yearly:      analytics.Yearly(derived),
		Seasonal:    analytics.Seasonal(derived),
		Heatmap:     analytics.Heatmap(derived),
	}
	if latest, err := analytics.Latest(derived); err == nil {
		doc.Latest = &latest
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
