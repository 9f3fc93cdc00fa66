package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fuelpulse/internal/analytics"
	"fuelpulse/internal/config"
	"fuelpulse/internal/dataprocessing"
	"fuelpulse/internal/exporter"
	"fuelpulse/internal/files"
	"fuelpulse/internal/infrastructure"
	"fuelpulse/pkg/contracts/domain"
)

// RefreshBroadcaster notifies connected clients that the dataset changed
type RefreshBroadcaster interface {
	BroadcastRefresh(source string, components []string)
}

// Snapshot is an immutable view of the loaded dataset. Queries read from
// a snapshot without locking; Reload swaps in a fresh one atomically.
type Snapshot struct {
	SourceFile string
	LoadedAt   time.Time
	Stats      dataprocessing.LoadStats
	Records    []domain.PriceRecord
	Derived    []domain.DerivedRecord
	Yearly     []domain.YearlySummary
	Seasonal   []domain.SeasonalSummary
	Heatmap    []domain.HeatCell
	Latest     *domain.LatestSnapshot
}

// DatasetService owns the in-memory dataset and answers price and
// analytics queries against it.
type DatasetService struct {
	cfg     *config.Config
	loader  *dataprocessing.Loader
	hub     RefreshBroadcaster
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics

	mu   sync.RWMutex
	snap *Snapshot
}

// NewDatasetService creates a dataset service. hub and metrics may be nil.
func NewDatasetService(cfg *config.Config, hub RefreshBroadcaster, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "dataset_service"))

	return &DatasetService{
		cfg:     cfg,
		loader:  dataprocessing.NewLoader(logger),
		hub:     hub,
		logger:  logger,
		metrics: metrics,
	}
}

// Load reads the configured dataset from disk, derives metrics, builds
// the aggregate summaries and swaps the snapshot. Safe for concurrent
// use with queries.
func (s *DatasetService) Load(ctx context.Context) error {
	start := time.Now()

	sourcePath, err := s.resolveSource()
	if err != nil {
		return err
	}

	records, stats, err := s.loader.LoadFile(ctx, sourcePath)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", sourcePath, err)
	}

	mode, err := domain.ParseYoYMode(s.cfg.Analytics.YoYMode)
	if err != nil {
		return fmt.Errorf("invalid yoy mode: %w", err)
	}
	derived := dataprocessing.Derive(records, mode)

	snap := &Snapshot{
		SourceFile: sourcePath,
		LoadedAt:   time.Now().UTC(),
		Stats:      stats,
		Records:    records,
		Derived:    derived,
	}

	// The three aggregate views are independent
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap.Yearly = analytics.Yearly(derived)
		return nil
	})
	g.Go(func() error {
		snap.Seasonal = analytics.Seasonal(derived)
		return nil
	})
	g.Go(func() error {
		snap.Heatmap = analytics.Heatmap(derived)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if latest, err := analytics.Latest(derived); err == nil {
		snap.Latest = &latest
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	if s.metrics != nil {
		infrastructure.RecordDatasetLoad(ctx, s.metrics, time.Since(start), int64(stats.Dropped()))
	}

	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("source", sourcePath),
		slog.Int("months", len(records)),
		slog.Int("rows_dropped", stats.Dropped()),
		slog.Duration("duration", time.Since(start)))

	if s.hub != nil {
		s.hub.BroadcastRefresh("dataset", []string{"prices", "analytics"})
	}

	return nil
}

// resolveSource picks the dataset path: the configured source file or the
// newest matching file in the data directory.
func (s *DatasetService) resolveSource() (string, error) {
	if path := s.cfg.GetSourceFile(); path != "" {
		return path, nil
	}

	discovery := files.NewDiscovery(s.cfg.GetDataDir())
	path, err := discovery.NewestDataset(s.cfg.GetDataDir(), s.cfg.Data.FilePatterns)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoDatasetFile, s.cfg.GetDataDir())
	}
	return path, nil
}

// Loaded reports whether a dataset snapshot is available
func (s *DatasetService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap != nil
}

// Snapshot returns the current dataset snapshot
func (s *DatasetService) Snapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, ErrDatasetNotLoaded
	}
	return s.snap, nil
}

// Prices returns the derived series restricted by the filter. Metrics on
// each record keep the values computed over the full series.
func (s *DatasetService) Prices(ctx context.Context, filter domain.RangeFilter) ([]domain.DerivedRecord, error) {
	defer s.recordQuery(ctx, "prices", time.Now())

	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}

	result := analytics.Filter(snap.Derived, filter)
	if len(result) == 0 {
		return nil, ErrNoData
	}
	return result, nil
}

// Latest returns the KPI snapshot for the most recent month
func (s *DatasetService) Latest(ctx context.Context) (domain.LatestSnapshot, error) {
	defer s.recordQuery(ctx, "latest", time.Now())

	snap, err := s.Snapshot()
	if err != nil {
		return domain.LatestSnapshot{}, err
	}
	if snap.Latest == nil {
		return domain.LatestSnapshot{}, ErrNoData
	}
	return *snap.Latest, nil
}

// Yearly returns the per-year summary rows
func (s *DatasetService) Yearly(ctx context.Context) ([]domain.YearlySummary, error) {
	defer s.recordQuery(ctx, "yearly", time.Now())

	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Yearly, nil
}

// Seasonal returns the per-calendar-month summary rows
func (s *DatasetService) Seasonal(ctx context.Context) ([]domain.SeasonalSummary, error) {
	defer s.recordQuery(ctx, "seasonal", time.Now())

	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Seasonal, nil
}

// Heatmap returns the year x month grid cells
func (s *DatasetService) Heatmap(ctx context.Context) ([]domain.HeatCell, error) {
	defer s.recordQuery(ctx, "heatmap", time.Now())

	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Heatmap, nil
}

// Extremum finds the record holding the extreme value of a column inside
// the filtered range.
func (s *DatasetService) Extremum(ctx context.Context, col domain.Column, kind domain.ExtremumKind, filter domain.RangeFilter) (domain.DerivedRecord, error) {
	defer s.recordQuery(ctx, "extremum", time.Now())

	if err := filter.Validate(); err != nil {
		return domain.DerivedRecord{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	snap, err := s.Snapshot()
	if err != nil {
		return domain.DerivedRecord{}, err
	}

	scoped := analytics.Filter(snap.Derived, filter)
	return analytics.FindExtremum(scoped, col, kind)
}

// ExtremeYear finds the best or worst complete year by the annual mean of
// a price column. Partial years never win.
func (s *DatasetService) ExtremeYear(ctx context.Context, col domain.Column, kind domain.ExtremumKind) (domain.YearlySummary, error) {
	defer s.recordQuery(ctx, "extreme_year", time.Now())

	snap, err := s.Snapshot()
	if err != nil {
		return domain.YearlySummary{}, err
	}
	return analytics.ExtremeYear(snap.Yearly, col, kind)
}

// Trend fits a least-squares slope over the last window values of a
// column inside the filtered range. A window of 0 selects the configured
// default.
func (s *DatasetService) Trend(ctx context.Context, col domain.Column, window int, filter domain.RangeFilter) (domain.TrendResult, error) {
	defer s.recordQuery(ctx, "trend", time.Now())

	if err := filter.Validate(); err != nil {
		return domain.TrendResult{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if window == 0 {
		window = s.cfg.Analytics.TrendWindow
	}

	snap, err := s.Snapshot()
	if err != nil {
		return domain.TrendResult{}, err
	}

	scoped := analytics.Filter(snap.Derived, filter)
	return analytics.Trend(scoped, col, window)
}

// WriteCSV streams the filtered derived series as CSV to w
func (s *DatasetService) WriteCSV(ctx context.Context, w io.Writer, filter domain.RangeFilter) error {
	defer s.recordQuery(ctx, "export_csv", time.Now())

	records, err := s.Prices(ctx, filter)
	if err != nil {
		return err
	}

	cw := &countingWriter{w: w}
	if err := exporter.WriteCSV(cw, records); err != nil {
		return err
	}
	if s.metrics != nil {
		infrastructure.RecordExport(ctx, s.metrics, "csv", cw.n)
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// SummaryDocument assembles the aggregate export document from the
// current snapshot.
func (s *DatasetService) SummaryDocument(ctx context.Context) (exporter.SummaryDocument, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return exporter.SummaryDocument{}, err
	}

	return exporter.SummaryDocument{
		GeneratedAt: snap.LoadedAt,
		Months:      len(snap.Derived),
		Latest:      snap.Latest,
		Yearly:      snap.Yearly,
		Seasonal:    snap.Seasonal,
		Heatmap:     snap.Heatmap,
	}, nil
}

func (s *DatasetService) recordQuery(ctx context.Context, query string, start time.Time) {
	if s.metrics != nil {
		infrastructure.RecordQueryMetrics(ctx, s.metrics, query, time.Since(start))
	}
}
