package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelpulse/internal/config"
	"fuelpulse/pkg/contracts/domain"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	base := t.TempDir()
	return &config.Paths{
		ExecutableDir: base,
		DataDir:       filepath.Join(base, "data"),
		ExportsDir:    filepath.Join(base, "data", "exports"),
		CacheDir:      filepath.Join(base, "data", "cache"),
		LogsDir:       filepath.Join(base, "logs"),
	}
}

func sampleDerived() []domain.DerivedRecord {
	mom := -0.5
	return []domain.DerivedRecord{
		{
			PriceRecord: domain.PriceRecord{
				Date:        time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
				CityPrice:   2.10,
				StateAvg:    2.20,
				NationalAvg: 2.50,
			},
			SpreadVsState:    -0.10,
			SpreadVsNational: -0.40,
			YearMonthLabel:   "2020-01",
		},
		{
			PriceRecord: domain.PriceRecord{
				Date:        time.Date(2020, time.February, 1, 0, 0, 0, 0, time.UTC),
				CityPrice:   1.05,
				StateAvg:    2.20,
				NationalAvg: 2.50,
			},
			SpreadVsState:    -1.15,
			SpreadVsNational: -1.45,
			MoMPct:           &mom,
			YearMonthLabel:   "2020-02",
		},
	}
}

func TestWriteCSV_LayoutAndNullPolicy(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleDerived()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, DerivedHeaders, rows[0])
	assert.Equal(t, []string{
		"2020-01-01", "2.100", "2.200", "2.500",
		"-0.100", "-0.400", "", "", "2020-01",
	}, rows[1], "undefined metrics must be empty cells")
	assert.Equal(t, "-0.5000", rows[2][6])
}

func TestDerivedExporter_ExportCSV(t *testing.T) {
	paths := testPaths(t)
	exp := NewDerivedExporter(paths)

	require.NoError(t, exp.ExportCSV("fuel_prices_derived.csv", sampleDerived()))

	content, err := os.ReadFile(paths.GetExportPath("fuel_prices_derived.csv"))
	require.NoError(t, err)

	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, content[:3], "file exports carry a BOM for Excel")

	rows, err := csv.NewReader(bytes.NewReader(content[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2020-02-01", rows[2][0])
}

func TestCSVWriter_AppendToCSV(t *testing.T) {
	paths := testPaths(t)
	w := NewCSVWriter(paths)

	require.NoError(t, w.WriteSimpleCSV("out.csv", []string{"a", "b"}, [][]string{{"1", "2"}}))
	require.NoError(t, w.AppendToCSV("out.csv", [][]string{{"3", "4"}}))

	content, err := os.ReadFile(paths.GetExportPath("out.csv"))
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(content[3:])).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestSummaryExporter_ExportJSON(t *testing.T) {
	paths := testPaths(t)
	exp := NewSummaryExporter(paths, nil)

	mom := 0.01
	doc := SummaryDocument{
		Months: 24,
		Latest: &domain.LatestSnapshot{
			YearMonth: "2021-12",
			CityPrice: 2.89,
			MoMPct:    &mom,
		},
		Yearly: []domain.YearlySummary{
			{Year: 2020, MeanCityPrice: 2.10, Count: 12, Complete: true},
		},
	}

	require.NoError(t, exp.ExportJSON("fuel_summary.json", doc))

	content, err := os.ReadFile(paths.GetExportPath("fuel_summary.json"))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(content, &got))

	assert.NotEmpty(t, got["generated_at"])
	assert.Equal(t, "v1", got["format_version"])
	assert.Equal(t, float64(24), got["months"])

	latest := got["latest"].(map[string]any)
	assert.Equal(t, "2021-12", latest["year_month"])
	assert.Equal(t, 0.01, latest["mom_pct"])

	// Undefined YoY serializes as JSON null, not 0.
	assert.Nil(t, latest["yoy_pct"])
}
