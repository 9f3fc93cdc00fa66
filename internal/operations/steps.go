package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fuelpulse/internal/analytics"
	"fuelpulse/internal/config"
	"fuelpulse/internal/dataprocessing"
	"fuelpulse/internal/exporter"
	"fuelpulse/internal/files"
	"fuelpulse/internal/validation"
	"fuelpulse/pkg/contracts/domain"
)

// LoadStep reads the raw monthly dataset from disk, validates its schema
// and stores the normalized records in the operation context.
type LoadStep struct {
	BaseStep
	cfg       *config.Config
	loader    *dataprocessing.Loader
	validator *validation.FileValidator
	opts      StepOptions
}

// NewLoadStep creates the dataset load step
func NewLoadStep(cfg *config.Config, logger *slog.Logger, opts StepOptions) *LoadStep {
	return &LoadStep{
		BaseStep:  NewBaseStep(StepIDLoad, StepNameLoad, nil),
		cfg:       cfg,
		loader:    dataprocessing.NewLoader(logger),
		validator: validation.NewFileValidator(logger),
		opts:      opts,
	}
}

// Validate checks that a dataset source can be resolved
func (s *LoadStep) Validate(state *OperationState) error {
	if s.cfg == nil {
		return fmt.Errorf("configuration not set")
	}
	return nil
}

// Execute loads the dataset and stores records plus load stats in the
// operation context.
func (s *LoadStep) Execute(ctx context.Context, state *OperationState) error {
	sourcePath, err := s.resolveSource(state)
	if err != nil {
		return err
	}

	if err := s.validator.ValidateDatasetFile(sourcePath); err != nil {
		return fmt.Errorf("dataset validation failed: %w", err)
	}

	s.reportProgress(state, 10, fmt.Sprintf("Loading %s", sourcePath))

	records, stats, err := s.loader.LoadFile(ctx, sourcePath)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	state.SetContext(ContextKeySourceFile, sourcePath)
	state.SetContext(ContextKeyRecords, records)
	state.SetContext(ContextKeyRowsLoaded, stats.Loaded)
	state.SetContext(ContextKeyRowsDropped, stats.Dropped())

	stepState := state.GetStep(s.ID())
	if stepState != nil {
		stepState.SetMetadata("rows_loaded", stats.Loaded)
		stepState.SetMetadata("rows_dropped", stats.Dropped())
		stepState.SetMetadata("source_file", sourcePath)
	}

	s.reportProgress(state, 90, fmt.Sprintf("Loaded %d months (%d rows dropped)", stats.Loaded, stats.Dropped()))
	return nil
}

// resolveSource picks the dataset path: an explicit request override, the
// configured source file, or the newest matching file in the data dir.
func (s *LoadStep) resolveSource(state *OperationState) (string, error) {
	if v, ok := state.GetConfig(ContextKeySourceFile); ok {
		if path, ok := v.(string); ok && path != "" {
			return path, nil
		}
	}

	if path := s.cfg.GetSourceFile(); path != "" {
		return path, nil
	}

	discovery := files.NewDiscovery(s.cfg.GetDataDir())
	path, err := discovery.NewestDataset(s.cfg.GetDataDir(), s.cfg.Data.FilePatterns)
	if err != nil {
		return "", fmt.Errorf("no dataset found in %s: %w", s.cfg.GetDataDir(), err)
	}
	return path, nil
}

func (s *LoadStep) reportProgress(state *OperationState, progress int, message string) {
	if s.opts.StatusBroadcaster != nil {
		s.opts.StatusBroadcaster.UpdateStepProgress(state.ID, s.ID(), progress, message)
	}
}

// DeriveStep computes the spread and change metrics over the loaded
// series and stores the derived records in the operation context.
type DeriveStep struct {
	BaseStep
	cfg  *config.Config
	opts StepOptions
}

// NewDeriveStep creates the metric derivation step
func NewDeriveStep(cfg *config.Config, opts StepOptions) *DeriveStep {
	return &DeriveStep{
		BaseStep: NewBaseStep(StepIDDerive, StepNameDerive, []string{StepIDLoad}),
		cfg:      cfg,
		opts:     opts,
	}
}

// Execute derives metrics from the loaded records
func (s *DeriveStep) Execute(ctx context.Context, state *OperationState) error {
	records, err := recordsFromContext(state)
	if err != nil {
		return err
	}

	mode, err := s.resolveMode(state)
	if err != nil {
		return err
	}

	derived := dataprocessing.Derive(records, mode)
	state.SetContext(ContextKeyDerived, derived)
	state.SetContext(ContextKeyYoYMode, string(mode))

	stepState := state.GetStep(s.ID())
	if stepState != nil {
		stepState.SetMetadata("months", len(derived))
		stepState.SetMetadata("yoy_mode", string(mode))
	}

	if s.opts.StatusBroadcaster != nil {
		s.opts.StatusBroadcaster.UpdateStepProgress(state.ID, s.ID(), 90,
			fmt.Sprintf("Derived metrics for %d months", len(derived)))
	}
	return nil
}

func (s *DeriveStep) resolveMode(state *OperationState) (domain.YoYMode, error) {
	raw := ""
	if v, ok := state.GetConfig(ContextKeyYoYMode); ok {
		if str, ok := v.(string); ok {
			raw = str
		}
	}
	if raw == "" && s.cfg != nil {
		raw = s.cfg.Analytics.YoYMode
	}
	mode, err := domain.ParseYoYMode(raw)
	if err != nil {
		return "", NewValidationError(s.ID(), err.Error())
	}
	return mode, nil
}

// AggregateStep builds the yearly, seasonal and heatmap summaries plus
// the latest-month snapshot and stores the summary document in the
// operation context.
type AggregateStep struct {
	BaseStep
	opts StepOptions
}

// NewAggregateStep creates the aggregation step
func NewAggregateStep(opts StepOptions) *AggregateStep {
	return &AggregateStep{
		BaseStep: NewBaseStep(StepIDAggregate, StepNameAggregate, []string{StepIDDerive}),
		opts:     opts,
	}
}

// Execute builds the aggregate summary document
func (s *AggregateStep) Execute(ctx context.Context, state *OperationState) error {
	derived, err := derivedFromContext(state)
	if err != nil {
		return err
	}

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

	state.SetContext(ContextKeySummary, doc)

	stepState := state.GetStep(s.ID())
	if stepState != nil {
		stepState.SetMetadata("years", len(doc.Yearly))
		stepState.SetMetadata("heat_cells", len(doc.Heatmap))
	}

	if s.opts.StatusBroadcaster != nil {
		s.opts.StatusBroadcaster.UpdateStepProgress(state.ID, s.ID(), 90,
			fmt.Sprintf("Aggregated %d years", len(doc.Yearly)))
	}
	return nil
}

// ExportStep writes the derived CSV and summary JSON to the exports
// directory.
type ExportStep struct {
	BaseStep
	paths   *config.Paths
	derived *exporter.DerivedExporter
	summary *exporter.SummaryExporter
	opts    StepOptions
}

// NewExportStep creates the export step
func NewExportStep(paths *config.Paths, logger *slog.Logger, opts StepOptions) *ExportStep {
	return &ExportStep{
		BaseStep: NewBaseStep(StepIDExport, StepNameExport, []string{StepIDAggregate}),
		paths:    paths,
		derived:  exporter.NewDerivedExporter(paths),
		summary:  exporter.NewSummaryExporter(paths, logger),
		opts:     opts,
	}
}

// Validate checks that output paths are configured
func (s *ExportStep) Validate(state *OperationState) error {
	if s.paths == nil {
		return fmt.Errorf("paths not configured")
	}
	return nil
}

// Execute writes the derived CSV and summary JSON
func (s *ExportStep) Execute(ctx context.Context, state *OperationState) error {
	derived, err := derivedFromContext(state)
	if err != nil {
		return err
	}

	v, ok := state.GetContext(ContextKeySummary)
	if !ok {
		return NewDependencyError(s.ID(), StepIDAggregate, "summary document not found in operation context")
	}
	doc, ok := v.(exporter.SummaryDocument)
	if !ok {
		return NewFatalError("unexpected summary document type in operation context", nil)
	}

	if err := s.derived.ExportCSV(s.paths.DerivedCSV, derived); err != nil {
		return fmt.Errorf("export derived csv: %w", err)
	}
	if s.opts.StatusBroadcaster != nil {
		s.opts.StatusBroadcaster.UpdateStepProgress(state.ID, s.ID(), 50, "Derived CSV written")
	}

	if err := s.summary.ExportJSON(s.paths.SummaryJSON, doc); err != nil {
		return fmt.Errorf("export summary json: %w", err)
	}

	state.SetContext(ContextKeyDerivedCSV, s.paths.DerivedCSV)
	state.SetContext(ContextKeySummaryJSON, s.paths.SummaryJSON)

	stepState := state.GetStep(s.ID())
	if stepState != nil {
		stepState.SetMetadata("derived_csv", s.paths.DerivedCSV)
		stepState.SetMetadata("summary_json", s.paths.SummaryJSON)
	}

	return nil
}

// recordsFromContext extracts the loaded price records placed in the
// context by the load step.
func recordsFromContext(state *OperationState) ([]domain.PriceRecord, error) {
	v, ok := state.GetContext(ContextKeyRecords)
	if !ok {
		return nil, NewDependencyError(StepIDDerive, StepIDLoad, "records not found in operation context")
	}
	records, ok := v.([]domain.PriceRecord)
	if !ok {
		return nil, NewFatalError("unexpected record type in operation context", nil)
	}
	return records, nil
}

// derivedFromContext extracts the derived records placed in the context
// by the derive step.
func derivedFromContext(state *OperationState) ([]domain.DerivedRecord, error) {
	v, ok := state.GetContext(ContextKeyDerived)
	if !ok {
		return nil, NewDependencyError(StepIDAggregate, StepIDDerive, "derived records not found in operation context")
	}
	derived, ok := v.([]domain.DerivedRecord)
	if !ok {
		return nil, NewFatalError("unexpected derived record type in operation context", nil)
	}
	return derived, nil
}

// RegisterPipelineSteps registers the full refresh pipeline on a manager
func RegisterPipelineSteps(m *Manager, cfg *config.Config, paths *config.Paths, logger *slog.Logger) error {
	opts := StepOptions{StatusBroadcaster: m.GetBroadcaster()}

	steps := []Step{
		NewLoadStep(cfg, logger, opts),
		NewDeriveStep(cfg, opts),
		NewAggregateStep(opts),
		NewExportStep(paths, logger, opts),
	}

	for _, step := range steps {
		if err := m.RegisterStep(step); err != nil {
			return fmt.Errorf("register step %s: %w", step.ID(), err)
		}
	}

	return m.GetRegistry().ValidateDependencies()
}
