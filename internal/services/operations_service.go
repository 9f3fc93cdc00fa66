package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"fuelpulse/internal/config"
	"fuelpulse/internal/operations"
)

// DatasetReloader is satisfied by DatasetService; after a successful
// refresh the in-memory snapshot is rebuilt from the new exports.
type DatasetReloader interface {
	Load(ctx context.Context) error
}

// OperationsService runs refresh operations through the pipeline manager
// and exposes their status.
type OperationsService struct {
	manager  *operations.Manager
	reloader DatasetReloader
	logger   *slog.Logger

	mu      sync.Mutex
	current string // ID of the in-flight refresh, empty when idle
}

// NewOperationsService wires the pipeline steps into a manager.
// reloader may be nil when no in-memory snapshot needs rebuilding.
func NewOperationsService(cfg *config.Config, paths *config.Paths, hub operations.WebSocketHub, reloader DatasetReloader, logger *slog.Logger) (*OperationsService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "operations_service"))

	manager := operations.NewManager(hub, nil, nil)
	if err := operations.RegisterPipelineSteps(manager, cfg, paths, logger); err != nil {
		return nil, fmt.Errorf("register pipeline steps: %w", err)
	}

	return &OperationsService{
		manager:  manager,
		reloader: reloader,
		logger:   logger,
	}, nil
}

// StartRefresh launches a refresh operation in the background and returns
// its ID. Only one refresh runs at a time.
func (s *OperationsService) StartRefresh(ctx context.Context, req operations.OperationRequest) (string, error) {
	s.mu.Lock()
	if s.current != "" {
		s.mu.Unlock()
		return "", ErrOperationRunning
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Mode == "" {
		req.Mode = operations.ModeFull
	}
	s.current = req.ID
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "refresh operation starting",
		slog.String("operation_id", req.ID),
		slog.String("mode", req.Mode))

	// Detach from the request context so an HTTP disconnect does not
	// cancel a refresh already underway.
	go func() {
		runCtx := context.Background()
		defer func() {
			s.mu.Lock()
			s.current = ""
			s.mu.Unlock()
		}()

		if _, err := s.manager.Execute(runCtx, req); err != nil {
			s.logger.Error("refresh operation failed",
				slog.String("operation_id", req.ID),
				slog.String("error", err.Error()))
			return
		}

		if s.reloader != nil {
			if err := s.reloader.Load(runCtx); err != nil {
				s.logger.Error("snapshot reload after refresh failed",
					slog.String("operation_id", req.ID),
					slog.String("error", err.Error()))
			}
		}
	}()

	return req.ID, nil
}

// GetStatus returns the live state of an operation, falling back to the
// broadcaster's snapshot for recently finished ones.
func (s *OperationsService) GetStatus(ctx context.Context, operationID string) (*operations.OperationSnapshot, error) {
	if snap, ok := s.manager.GetBroadcaster().GetSnapshot(operationID); ok {
		return snap, nil
	}
	return nil, ErrOperationNotFound
}

// ListOperations returns snapshots of all known operations
func (s *OperationsService) ListOperations(ctx context.Context) []*operations.OperationSnapshot {
	return s.manager.GetBroadcaster().GetAllSnapshots()
}

// Cancel cancels a running operation
func (s *OperationsService) Cancel(ctx context.Context, operationID string) error {
	if err := s.manager.CancelOperation(operationID); err != nil {
		return ErrOperationNotFound
	}
	return nil
}

// Running reports whether a refresh is currently in flight
func (s *OperationsService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != ""
}

// OperationTypes returns the catalog of operations the API exposes
func (s *OperationsService) OperationTypes(ctx context.Context) []operations.OperationType {
	return []operations.OperationType{
		{
			ID:          operations.StepIDLoad,
			Name:        operations.StepNameLoad,
			Description: "Load and normalize the raw monthly dataset",
			CanRunAlone: true,
		},
		{
			ID:           operations.StepIDDerive,
			Name:         operations.StepNameDerive,
			Description:  "Compute spreads and month/year change percentages",
			Dependencies: []string{operations.StepIDLoad},
		},
		{
			ID:           operations.StepIDAggregate,
			Name:         operations.StepNameAggregate,
			Description:  "Build yearly, seasonal and heatmap summaries",
			Dependencies: []string{operations.StepIDDerive},
		},
		{
			ID:           operations.StepIDExport,
			Name:         operations.StepNameExport,
			Description:  "Write the derived CSV and summary JSON exports",
			Dependencies: []string{operations.StepIDAggregate},
		},
	}
}

// GetManager exposes the underlying manager for status wiring
func (s *OperationsService) GetManager() *operations.Manager {
	return s.manager
}
