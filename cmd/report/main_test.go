package main

import (
	"context"
	"encoding/json"
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

	"fuelpulse/pkg/contracts/domain"
)

func writeDataset(t *testing.T, months int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fuel_prices.csv")

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

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildReport(t *testing.T) {
	source := writeDataset(t, 24)

	derived, err := buildReport(context.Background(), testLogger(), source, domain.YoYModeCalendar)
	require.NoError(t, err)
	assert.Len(t, derived, 24)
}

func TestBuildReport_MissingFile(t *testing.T) {
	_, err := buildReport(context.Background(), testLogger(), filepath.Join(t.TempDir(), "nope.csv"), domain.YoYModeCalendar)
	require.Error(t, err)
}

func TestWriteReport_Table(t *testing.T) {
	source := writeDataset(t, 24)
	derived, err := buildReport(context.Background(), testLogger(), source, domain.YoYModeCalendar)
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, writeReport(&b, "table", derived))

	out := b.String()
	assert.Contains(t, out, "2020")
	assert.Contains(t, out, "2021")
	assert.Contains(t, out, "year")
}

func TestWriteReport_CSV(t *testing.T) {
	source := writeDataset(t, 12)
	derived, err := buildReport(context.Background(), testLogger(), source, domain.YoYModeCalendar)
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, writeReport(&b, "csv", derived))

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	assert.Len(t, lines, 13)
	assert.True(t, strings.HasPrefix(lines[0], "date,city_price"))
}

func TestWriteReport_JSON(t *testing.T) {
	source := writeDataset(t, 24)
	derived, err := buildReport(context.Background(), testLogger(), source, domain.YoYModeCalendar)
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, writeReport(&b, "json", derived))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(b.String()), &doc))
	assert.Equal(t, float64(24), doc["months"])
	assert.NotNil(t, doc["latest"])
	assert.NotEmpty(t, doc["yearly"])
}

func TestWriteReport_UnknownFormat(t *testing.T) {
	err := writeReport(&strings.Builder{}, "xml", nil)
	require.Error(t, err)
}
