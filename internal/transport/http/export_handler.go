package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "fuelpulse/internal/errors"
)

// ExportHandler serves on-demand downloads of the derived series and the
// aggregate summary document.
type ExportHandler struct {
	service      DatasetReader
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates a new export handler
func NewExportHandler(service DatasetReader, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "export")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/csv", h.DownloadCSV)
	r.Get("/summary", h.DownloadSummary)

	return r
}

// DownloadCSV handles GET /api/export/csv. The optional range filter
// restricts which rows are written; headers are always included.
func (h *ExportHandler) DownloadCSV(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	filter, err := parseRangeFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("fuel_derived_%s.csv", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.service.WriteCSV(r.Context(), w, filter); err != nil {
		h.logger.ErrorContext(r.Context(), "csv export failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		// WriteCSV validates before writing any bytes, so the headers
		// can still be replaced with a problem response.
		w.Header().Del("Content-Disposition")
		w.Header().Del("Content-Type")
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
}

// DownloadSummary handles GET /api/export/summary, returning the same
// aggregate document the refresh pipeline writes to disk.
func (h *ExportHandler) DownloadSummary(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	doc, err := h.service.SummaryDocument(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "summary export failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, doc)
}
