package operations

import (
	"time"

	"fuelpulse/pkg/contracts/events"
)

// Pipeline step identifiers
const (
	StepIDLoad      = "load"
	StepIDDerive    = "derive"
	StepIDAggregate = "aggregate"
	StepIDExport    = "export"
)

// Pipeline step names
const (
	StepNameLoad      = "Dataset Load"
	StepNameDerive    = "Metric Derivation"
	StepNameAggregate = "Aggregation"
	StepNameExport    = "Export"
)

// Context keys for operation state
const (
	ContextKeySourceFile  = "source_file"
	ContextKeyYoYMode     = "yoy_mode"
	ContextKeyRecords     = "records"
	ContextKeyDerived     = "derived"
	ContextKeySummary     = "summary"
	ContextKeyRowsLoaded  = "rows_loaded"
	ContextKeyRowsDropped = "rows_dropped"
	ContextKeyDerivedCSV  = "derived_csv"
	ContextKeySummaryJSON = "summary_json"
)

// Refresh modes. A full refresh reloads the dataset from disk even when a
// snapshot is already in memory; incremental is accepted for forward
// compatibility and currently behaves the same.
const (
	ModeFull        = "full"
	ModeIncremental = "incremental"
)

// WebSocket event types consumed by the frontend. The canonical
// definitions live in pkg/contracts/events.
const (
	EventTypeOperationSnapshot = string(events.MessageTypeOperationSnapshot)
)

// Default timeouts
const (
	DefaultStepTimeout      = 5 * time.Minute
	DefaultLoadTimeout      = 2 * time.Minute
	DefaultDeriveTimeout    = 1 * time.Minute
	DefaultAggregateTimeout = 1 * time.Minute
	DefaultExportTimeout    = 2 * time.Minute
)

// ExecutionMode defines how steps are executed. The refresh pipeline is
// inherently sequential (each step consumes the previous step's output),
// so sequential is the only supported mode.
type ExecutionMode string

const (
	ExecutionModeSequential ExecutionMode = "sequential"
)

// RetryConfig defines retry behavior for steps
type RetryConfig struct {
	MaxAttempts  int           `json:"max_attempts"`
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
	Multiplier   float64       `json:"multiplier"`
}

// NewRetryConfig returns the default retry configuration
func NewRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// OperationRequest represents a request to execute a refresh operation
type OperationRequest struct {
	ID         string                 `json:"id"`
	Mode       string                 `json:"mode"`
	SourceFile string                 `json:"source_file,omitempty"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// OperationResponse represents the response from an operation execution
type OperationResponse struct {
	ID       string                `json:"id"`
	Status   OperationStatusValue  `json:"status"`
	Duration time.Duration         `json:"duration"`
	Steps    map[string]*StepState `json:"steps"`
	Error    string                `json:"error,omitempty"`
}

// ProgressUpdate represents a progress update from a step
type ProgressUpdate struct {
	StepID   string                 `json:"step_id"`
	Progress float64                `json:"progress"`
	Message  string                 `json:"message"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// OperationType describes an available operation for the API catalog
type OperationType struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Dependencies []string `json:"dependencies"`
	CanRunAlone  bool     `json:"can_run_alone"`
}
