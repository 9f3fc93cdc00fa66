package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "fuelpulse/internal/errors"
	"fuelpulse/internal/operations"
)

// OperationsHandler handles refresh operation requests: starting a
// pipeline run, polling its status and cancelling it.
type OperationsHandler struct {
	service      OperationStarter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewOperationsHandler creates a new operations handler
func NewOperationsHandler(service OperationStarter, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *OperationsHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &OperationsHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "operations")),
		errorHandler: errorHandler,
	}
}

// Routes returns the operation routes
func (h *OperationsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/refresh", h.StartRefresh)
	r.Get("/", h.ListOperations)
	r.Get("/types", h.GetOperationTypes)
	r.Route("/{operationID}", func(r chi.Router) {
		r.Get("/", h.GetOperation)
		r.Post("/cancel", h.CancelOperation)
	})

	return r
}

// RefreshRequest is the body of POST /api/operations/refresh. All fields
// are optional: an empty body runs a full refresh against the configured
// dataset.
type RefreshRequest struct {
	Mode       string                 `json:"mode,omitempty"`
	SourceFile string                 `json:"source_file,omitempty"`
	Step       string                 `json:"step,omitempty"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// Bind implements the render.Binder interface for request validation
func (req *RefreshRequest) Bind(r *http.Request) error {
	switch req.Mode {
	case "", operations.ModeFull, operations.ModeIncremental:
	default:
		return fmt.Errorf("invalid mode: %s", req.Mode)
	}
	if req.Step != "" {
		valid := map[string]bool{
			operations.StepIDLoad:      true,
			operations.StepIDDerive:    true,
			operations.StepIDAggregate: true,
			operations.StepIDExport:    true,
		}
		if !valid[req.Step] {
			return fmt.Errorf("invalid step: %s", req.Step)
		}
	}
	return nil
}

// StartRefresh handles POST /api/operations/refresh
func (h *OperationsHandler) StartRefresh(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	req := &RefreshRequest{}
	if r.ContentLength > 0 {
		if err := render.Bind(r, req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
	}

	opReq := operations.OperationRequest{
		Mode:       req.Mode,
		SourceFile: req.SourceFile,
		Parameters: req.Parameters,
	}
	if req.Step != "" {
		if opReq.Parameters == nil {
			opReq.Parameters = make(map[string]interface{})
		}
		opReq.Parameters["step"] = req.Step
	}

	id, err := h.service.StartRefresh(r.Context(), opReq)
	if err != nil {
		h.logger.WarnContext(r.Context(), "refresh rejected",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "refresh accepted",
		slog.String("operation_id", id),
		slog.String("request_id", reqID),
	)

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]interface{}{
		"status":       "accepted",
		"operation_id": id,
	})
}

// GetOperation handles GET /api/operations/{operationID}
func (h *OperationsHandler) GetOperation(w http.ResponseWriter, r *http.Request) {
	operationID := chi.URLParam(r, "operationID")

	snapshot, err := h.service.GetStatus(r.Context(), operationID)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   snapshot,
	})
}

// ListOperations handles GET /api/operations
func (h *OperationsHandler) ListOperations(w http.ResponseWriter, r *http.Request) {
	snapshots := h.service.ListOperations(r.Context())

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   snapshots,
		"count":  len(snapshots),
	})
}

// GetOperationTypes handles GET /api/operations/types
func (h *OperationsHandler) GetOperationTypes(w http.ResponseWriter, r *http.Request) {
	types := h.service.OperationTypes(r.Context())

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   types,
		"count":  len(types),
	})
}

// CancelOperation handles POST /api/operations/{operationID}/cancel
func (h *OperationsHandler) CancelOperation(w http.ResponseWriter, r *http.Request) {
	operationID := chi.URLParam(r, "operationID")

	if err := h.service.Cancel(r.Context(), operationID); err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "operation cancelled",
		slog.String("operation_id", operationID),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	render.JSON(w, r, map[string]interface{}{
		"status":       "success",
		"operation_id": operationID,
	})
}
