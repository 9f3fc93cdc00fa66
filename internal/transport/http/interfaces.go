package http

import (
	"context"
	"io"

	"fuelpulse/internal/exporter"
	"fuelpulse/internal/operations"
	"fuelpulse/internal/services"
	"fuelpulse/pkg/contracts/domain"
)

// DatasetReader is the slice of the dataset service the price and
// analytics handlers need.
type DatasetReader interface {
	Prices(ctx context.Context, filter domain.RangeFilter) ([]domain.DerivedRecord, error)
	Latest(ctx context.Context) (domain.LatestSnapshot, error)
	Yearly(ctx context.Context) ([]domain.YearlySummary, error)
	Seasonal(ctx context.Context) ([]domain.SeasonalSummary, error)
	Heatmap(ctx context.Context) ([]domain.HeatCell, error)
	Extremum(ctx context.Context, col domain.Column, kind domain.ExtremumKind, filter domain.RangeFilter) (domain.DerivedRecord, error)
	ExtremeYear(ctx context.Context, col domain.Column, kind domain.ExtremumKind) (domain.YearlySummary, error)
	Trend(ctx context.Context, col domain.Column, window int, filter domain.RangeFilter) (domain.TrendResult, error)
	WriteCSV(ctx context.Context, w io.Writer, filter domain.RangeFilter) error
	SummaryDocument(ctx context.Context) (exporter.SummaryDocument, error)
}

// OperationStarter is the slice of the operations service the refresh
// handler needs.
type OperationStarter interface {
	StartRefresh(ctx context.Context, req operations.OperationRequest) (string, error)
	GetStatus(ctx context.Context, operationID string) (*operations.OperationSnapshot, error)
	ListOperations(ctx context.Context) []*operations.OperationSnapshot
	Cancel(ctx context.Context, operationID string) error
	OperationTypes(ctx context.Context) []operations.OperationType
}

// HealthChecker is the slice of the health service the health handler
// needs.
type HealthChecker interface {
	Check(ctx context.Context) services.HealthStatus
	Ready(ctx context.Context) bool
}
