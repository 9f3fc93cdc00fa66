package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelpulse/internal/config"
	"fuelpulse/pkg/contracts/domain"
)

type fakeBroadcaster struct {
	refreshes int
}

func (f *fakeBroadcaster) BroadcastRefresh(source string, components []string) {
	f.refreshes++
}

func writeTestDataset(t *testing.T, dir string, months int) string {
	t.Helper()
	path := filepath.Join(dir, "fuel_prices.csv")

	var b strings.Builder
	b.WriteString("date,city_price,state_avg,national_avg\n")
	date := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < months; i++ {
		fmt.Fprintf(&b, "%s,%.3f,%.3f,%.3f\n",
			date.Format("2006-01-02"),
			2.00+0.01*float64(i),
			2.10+0.02*float64(i),
			2.30+0.01*float64(i))
		date = date.AddDate(0, 1, 0)
	}

	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func newTestDatasetService(t *testing.T, months int) (*DatasetService, *fakeBroadcaster) {
	t.Helper()
	dir := t.TempDir()
	source := writeTestDataset(t, dir, months)

	cfg := &config.Config{
		Data: config.DataConfig{
			SourceFile:   source,
			FilePatterns: []string{"*.csv"},
		},
		Analytics: config.AnalyticsConfig{
			TrendWindow: 6,
			YoYMode:     "calendar",
		},
	}

	hub := &fakeBroadcaster{}
	return NewDatasetService(cfg, hub, nil, nil), hub
}

func TestDatasetService_Load(t *testing.T) {
	svc, hub := newTestDatasetService(t, 24)

	require.False(t, svc.Loaded())
	require.NoError(t, svc.Load(context.Background()))
	require.True(t, svc.Loaded())

	snap, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap.Records, 24)
	assert.Len(t, snap.Derived, 24)
	assert.Len(t, snap.Yearly, 2)
	assert.Len(t, snap.Seasonal, 12)
	assert.Len(t, snap.Heatmap, 24)
	require.NotNil(t, snap.Latest)
	assert.Equal(t, 1, hub.refreshes)
}

func TestDatasetService_NotLoaded(t *testing.T) {
	svc, _ := newTestDatasetService(t, 12)

	_, err := svc.Prices(context.Background(), domain.RangeFilter{})
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)

	_, err = svc.Latest(context.Background())
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)

	_, err = svc.Yearly(context.Background())
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)
}

func TestDatasetService_MissingFile(t *testing.T) {
	svc, _ := newTestDatasetService(t, 12)
	svc.cfg.Data.SourceFile = filepath.Join(t.TempDir(), "nope.csv")

	err := svc.Load(context.Background())
	require.Error(t, err)
}

func TestDatasetService_NoDatasetDiscovered(t *testing.T) {
	cfg := &config.Config{
		Paths: config.PathsConfig{DataDir: t.TempDir()},
		Data: config.DataConfig{
			FilePatterns: []string{"*.csv"},
		},
		Analytics: config.AnalyticsConfig{TrendWindow: 6, YoYMode: "calendar"},
	}
	svc := NewDatasetService(cfg, nil, nil, nil)

	err := svc.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoDatasetFile)
}

func TestDatasetService_Prices(t *testing.T) {
	svc, _ := newTestDatasetService(t, 24)
	require.NoError(t, svc.Load(context.Background()))
	ctx := context.Background()

	t.Run("unfiltered returns all", func(t *testing.T) {
		records, err := svc.Prices(ctx, domain.RangeFilter{})
		require.NoError(t, err)
		assert.Len(t, records, 24)
	})

	t.Run("year filter", func(t *testing.T) {
		year := 2021
		records, err := svc.Prices(ctx, domain.RangeFilter{YearFrom: &year, YearTo: &year})
		require.NoError(t, err)
		assert.Len(t, records, 12)
		for _, r := range records {
			assert.Equal(t, 2021, r.Date.Year())
		}
	})

	t.Run("filter keeps precomputed metrics", func(t *testing.T) {
		year := 2021
		records, err := svc.Prices(ctx, domain.RangeFilter{YearFrom: &year})
		require.NoError(t, err)
		// January 2021 still has a MoM against December 2020
		require.NotNil(t, records[0].MoMPct)
	})

	t.Run("empty match", func(t *testing.T) {
		year := 2050
		_, err := svc.Prices(ctx, domain.RangeFilter{YearFrom: &year})
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("invalid bounds", func(t *testing.T) {
		from, to := 2022, 2020
		_, err := svc.Prices(ctx, domain.RangeFilter{YearFrom: &from, YearTo: &to})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestDatasetService_Latest(t *testing.T) {
	svc, _ := newTestDatasetService(t, 24)
	require.NoError(t, svc.Load(context.Background()))

	latest, err := svc.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.December, latest.Date.Month())
	assert.Equal(t, 2021, latest.Date.Year())
}

func TestDatasetService_Extremum(t *testing.T) {
	svc, _ := newTestDatasetService(t, 24)
	require.NoError(t, svc.Load(context.Background()))
	ctx := context.Background()

	// City price rises monotonically, so max is the last month
	rec, err := svc.Extremum(ctx, domain.ColumnCityPrice, domain.ExtremumMax, domain.RangeFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2021, rec.Date.Year())
	assert.Equal(t, time.December, rec.Date.Month())

	rec, err = svc.Extremum(ctx, domain.ColumnCityPrice, domain.ExtremumMin, domain.RangeFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2020, rec.Date.Year())
	assert.Equal(t, time.January, rec.Date.Month())
}

func TestDatasetService_Trend(t *testing.T) {
	svc, _ := newTestDatasetService(t, 24)
	require.NoError(t, svc.Load(context.Background()))
	ctx := context.Background()

	t.Run("default window from config", func(t *testing.T) {
		result, err := svc.Trend(ctx, domain.ColumnCityPrice, 0, domain.RangeFilter{})
		require.NoError(t, err)
		assert.Equal(t, 6, result.Window)
		require.NotNil(t, result.Slope)
		assert.InDelta(t, 0.01, *result.Slope, 1e-9)
		assert.Equal(t, domain.TrendIncreasing, result.Direction)
	})

	t.Run("window below minimum", func(t *testing.T) {
		_, err := svc.Trend(ctx, domain.ColumnCityPrice, 1, domain.RangeFilter{})
		require.Error(t, err)
	})
}

func TestDatasetService_WriteCSV(t *testing.T) {
	svc, _ := newTestDatasetService(t, 12)
	require.NoError(t, svc.Load(context.Background()))

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(context.Background(), &buf, domain.RangeFilter{}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 13) // header + 12 months
	assert.True(t, strings.HasPrefix(lines[0], "date,city_price"))
	assert.NotContains(t, lines[0], "\ufeff")
}

func TestDatasetService_SummaryDocument(t *testing.T) {
	svc, _ := newTestDatasetService(t, 24)
	require.NoError(t, svc.Load(context.Background()))

	doc, err := svc.SummaryDocument(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 24, doc.Months)
	assert.Len(t, doc.Yearly, 2)
	require.NotNil(t, doc.Latest)
}
