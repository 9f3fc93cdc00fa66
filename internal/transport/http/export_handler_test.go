package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelpulse/internal/exporter"
	"fuelpulse/internal/services"
	"fuelpulse/pkg/contracts/domain"
)

func TestExportHandler_DownloadCSV(t *testing.T) {
	stub := &stubDataset{}
	handler := NewExportHandler(stub, testLogger(), testErrorHandler())

	rec := doRequest(t, handler.Routes(), http.MethodGet, "/csv?year_from=2020")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Body.String(), "date,city_price")
	require.NotNil(t, stub.gotFilter.YearFrom)
	assert.Equal(t, 2020, *stub.gotFilter.YearFrom)
}

func TestExportHandler_DownloadCSVNoData(t *testing.T) {
	handler := NewExportHandler(&stubDataset{err: services.ErrNoData}, testLogger(), testErrorHandler())

	rec := doRequest(t, handler.Routes(), http.MethodGet, "/csv")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}

func TestExportHandler_DownloadSummary(t *testing.T) {
	stub := &stubDataset{
		summary: exporter.SummaryDocument{
			GeneratedAt:   time.Date(2021, time.December, 15, 0, 0, 0, 0, time.UTC),
			FormatVersion: "v1",
			Months:        24,
			Yearly:        []domain.YearlySummary{{Year: 2020, Count: 12, Complete: true}},
		},
	}
	handler := NewExportHandler(stub, testLogger(), testErrorHandler())

	rec := doRequest(t, handler.Routes(), http.MethodGet, "/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(24), body["months"])
	assert.Equal(t, "v1", body["format_version"])
}

func TestExportHandler_DownloadSummaryNotLoaded(t *testing.T) {
	handler := NewExportHandler(&stubDataset{err: services.ErrDatasetNotLoaded}, testLogger(), testErrorHandler())

	rec := doRequest(t, handler.Routes(), http.MethodGet, "/summary")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
