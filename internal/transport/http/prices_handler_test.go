package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "fuelpulse/internal/errors"
	"fuelpulse/internal/exporter"
	"fuelpulse/internal/services"
	"fuelpulse/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testErrorHandler() *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(testLogger(), false)
}

// stubDataset is a canned DatasetReader for handler tests
type stubDataset struct {
	records     []domain.DerivedRecord
	latest      domain.LatestSnapshot
	yearly      []domain.YearlySummary
	seasonal    []domain.SeasonalSummary
	heatmap     []domain.HeatCell
	extremum    domain.DerivedRecord
	extremeYear domain.YearlySummary
	trend       domain.TrendResult
	summary     exporter.SummaryDocument
	err         error
	gotFilter   domain.RangeFilter
	gotColumn   domain.Column
	gotKind     domain.ExtremumKind
	gotWindow   int
}

func (s *stubDataset) Prices(ctx context.Context, filter domain.RangeFilter) ([]domain.DerivedRecord, error) {
	s.gotFilter = filter
	return s.records, s.err
}

func (s *stubDataset) Latest(ctx context.Context) (domain.LatestSnapshot, error) {
	return s.latest, s.err
}

func (s *stubDataset) Yearly(ctx context.Context) ([]domain.YearlySummary, error) {
	return s.yearly, s.err
}

func (s *stubDataset) Seasonal(ctx context.Context) ([]domain.SeasonalSummary, error) {
	return s.seasonal, s.err
}

func (s *stubDataset) Heatmap(ctx context.Context) ([]domain.HeatCell, error) {
	return s.heatmap, s.err
}

func (s *stubDataset) Extremum(ctx context.Context, col domain.Column, kind domain.ExtremumKind, filter domain.RangeFilter) (domain.DerivedRecord, error) {
	s.gotColumn, s.gotKind, s.gotFilter = col, kind, filter
	return s.extremum, s.err
}

func (s *stubDataset) ExtremeYear(ctx context.Context, col domain.Column, kind domain.ExtremumKind) (domain.YearlySummary, error) {
	s.gotColumn, s.gotKind = col, kind
	return s.extremeYear, s.err
}

func (s *stubDataset) Trend(ctx context.Context, col domain.Column, window int, filter domain.RangeFilter) (domain.TrendResult, error) {
	s.gotColumn, s.gotWindow, s.gotFilter = col, window, filter
	return s.trend, s.err
}

func (s *stubDataset) WriteCSV(ctx context.Context, w io.Writer, filter domain.RangeFilter) error {
	s.gotFilter = filter
	if s.err != nil {
		return s.err
	}
	_, err := io.WriteString(w, "date,city_price\n2020-01-01,2.000\n")
	return err
}

func (s *stubDataset) SummaryDocument(ctx context.Context) (exporter.SummaryDocument, error) {
	return s.summary, s.err
}

func sampleRecords(n int) []domain.DerivedRecord {
	records := make([]domain.DerivedRecord, n)
	date := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := range records {
		records[i] = domain.DerivedRecord{
			PriceRecord: domain.PriceRecord{
				Date:        date,
				CityPrice:   2.00 + 0.01*float64(i),
				StateAvg:    2.10,
				NationalAvg: 2.30,
			},
		}
		date = date.AddDate(0, 1, 0)
	}
	return records
}

func doRequest(t *testing.T, router chi.Router, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestPricesHandler_GetPrices(t *testing.T) {
	stub := &stubDataset{records: sampleRecords(3)}
	handler := NewPricesHandler(stub, testLogger(), testErrorHandler())

	rec := doRequest(t, handler.Routes(), http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(3), body["count"])
}

func TestPricesHandler_GetPricesFilter(t *testing.T) {
	stub := &stubDataset{records: sampleRecords(1)}
	handler := NewPricesHandler(stub, testLogger(), testErrorHandler())

	rec := doRequest(t, handler.Routes(), http.MethodGet, "/?year_from=2020&year_to=2021&months=1,2")
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, stub.gotFilter.YearFrom)
	assert.Equal(t, 2020, *stub.gotFilter.YearFrom)
	require.NotNil(t, stub.gotFilter.YearTo)
	assert.Equal(t, 2021, *stub.gotFilter.YearTo)
	assert.Equal(t, []time.Month{time.January, time.February}, stub.gotFilter.Months)
}

func TestPricesHandler_GetPricesInvalidFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "bad year", query: "?year_from=abc"},
		{name: "bad month", query: "?months=13"},
		{name: "bad date", query: "?date_from=01-2020"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewPricesHandler(&stubDataset{}, testLogger(), testErrorHandler())
			rec := doRequest(t, handler.Routes(), http.MethodGet, "/"+tt.query)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPricesHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "not loaded", err: services.ErrDatasetNotLoaded, wantCode: http.StatusServiceUnavailable},
		{name: "no data", err: services.ErrNoData, wantCode: http.StatusNotFound},
		{name: "invalid input", err: services.ErrInvalidInput, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewPricesHandler(&stubDataset{err: tt.err}, testLogger(), testErrorHandler())
			rec := doRequest(t, handler.Routes(), http.MethodGet, "/")
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestPricesHandler_GetLatest(t *testing.T) {
	stub := &stubDataset{
		latest: domain.LatestSnapshot{
			Date:      time.Date(2021, time.December, 1, 0, 0, 0, 0, time.UTC),
			YearMonth: "2021-12",
			CityPrice: 2.23,
		},
	}
	handler := NewPricesHandler(stub, testLogger(), testErrorHandler())

	rec := doRequest(t, handler.Routes(), http.MethodGet, "/latest")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "2021-12", data["year_month"])
}
