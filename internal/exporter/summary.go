package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fuelpulse/internal/config"
	"fuelpulse/pkg/contracts"
	"fuelpulse/pkg/contracts/domain"
)

// SummaryDocument is the JSON export layout consumed by the web frontend
// and written by the pipeline's export step.
type SummaryDocument struct {
	GeneratedAt   time.Time                `json:"generated_at"`
	FormatVersion string                   `json:"format_version"`
	Months        int                      `json:"months"`
	Latest        *domain.LatestSnapshot   `json:"latest,omitempty"`
	Yearly        []domain.YearlySummary   `json:"yearly"`
	Seasonal      []domain.SeasonalSummary `json:"seasonal"`
	Heatmap       []domain.HeatCell        `json:"heatmap"`
}

// SummaryExporter writes aggregate summaries as a single JSON document.
type SummaryExporter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewSummaryExporter creates a summary exporter. A nil logger falls back
// to slog.Default.
func NewSummaryExporter(paths *config.Paths, logger *slog.Logger) *SummaryExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryExporter{paths: paths, logger: logger}
}

// ExportJSON writes the document to the given path, resolved against the
// exports directory when relative.
func (e *SummaryExporter) ExportJSON(filePath string, doc SummaryDocument) error {
	if !filepath.IsAbs(filePath) {
		filePath = e.paths.GetExportPath(filePath)
	}

	doc.GeneratedAt = time.Now().UTC()
	doc.FormatVersion = contracts.DataFormatVersion

	e.logger.Info("Writing summary JSON",
		slog.String("path", filePath),
		slog.Int("months", doc.Months),
		slog.Int("years", len(doc.Yearly)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	return nil
}
