package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelpulse/internal/config"
	"fuelpulse/internal/operations"
)

func writeDataset(t *testing.T, dir string, months int) string {
	t.Helper()
	path := filepath.Join(dir, "fuel_prices.csv")

	content := "date,city_price,state_avg,national_avg\n"
	date := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < months; i++ {
		content += fmt.Sprintf("%s,%.3f,%.3f,%.3f\n",
			date.Format("2006-01-02"),
			2.00+0.01*float64(i),
			2.10+0.01*float64(i),
			2.30+0.01*float64(i))
		date = date.AddDate(0, 1, 0)
	}

	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func pipelineFixtures(t *testing.T) (*config.Config, *config.Paths, string) {
	t.Helper()
	base := t.TempDir()
	dataDir := filepath.Join(base, "data")
	exportsDir := filepath.Join(dataDir, "exports")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))

	source := writeDataset(t, dataDir, 24)

	cfg := &config.Config{
		Data: config.DataConfig{
			SourceFile:   source,
			FilePatterns: []string{"*.csv"},
		},
		Analytics: config.AnalyticsConfig{TrendWindow: 6, YoYMode: "calendar"},
	}

	paths := &config.Paths{
		ExecutableDir: base,
		DataDir:       dataDir,
		ExportsDir:    exportsDir,
		DerivedCSV:    filepath.Join(exportsDir, "fuel_prices_derived.csv"),
		SummaryJSON:   filepath.Join(exportsDir, "fuel_summary.json"),
	}

	return cfg, paths, source
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunPipeline_Full(t *testing.T) {
	cfg, paths, source := pipelineFixtures(t)

	resp, err := runPipeline(context.Background(), cfg, paths, testLogger(), options{
		source:  source,
		mode:    operations.ModeFull,
		timeout: time.Minute,
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, operations.OperationStatusCompleted, resp.Status)
	assert.Len(t, resp.Steps, 4)
	assert.FileExists(t, paths.DerivedCSV)
	assert.FileExists(t, paths.SummaryJSON)
}

func TestRunPipeline_SingleStep(t *testing.T) {
	cfg, paths, _ := pipelineFixtures(t)

	resp, err := runPipeline(context.Background(), cfg, paths, testLogger(), options{
		mode:    operations.ModeFull,
		step:    operations.StepIDLoad,
		timeout: time.Minute,
	})
	require.NoError(t, err)

	assert.Equal(t, operations.OperationStatusCompleted, resp.Status)
	assert.Len(t, resp.Steps, 1)
	assert.Contains(t, resp.Steps, operations.StepIDLoad)
}

func TestRunPipeline_MissingSource(t *testing.T) {
	cfg, paths, _ := pipelineFixtures(t)
	cfg.Data.SourceFile = filepath.Join(paths.DataDir, "missing.csv")

	resp, err := runPipeline(context.Background(), cfg, paths, testLogger(), options{
		mode:    operations.ModeFull,
		timeout: time.Minute,
	})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, operations.OperationStatusFailed, resp.Status)
}

func TestPrintSummary(t *testing.T) {
	cfg, paths, source := pipelineFixtures(t)

	resp, err := runPipeline(context.Background(), cfg, paths, testLogger(), options{
		source:  source,
		mode:    operations.ModeFull,
		timeout: time.Minute,
	})
	require.NoError(t, err)

	var b strings.Builder
	printSummary(&b, resp)

	out := b.String()
	assert.Contains(t, out, "completed")
	for _, id := range []string{"load", "derive", "aggregate", "export"} {
		assert.Contains(t, out, id)
	}
}
