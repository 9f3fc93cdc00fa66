package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "fuelpulse/internal/errors"
)

// PricesHandler serves the monthly price series and the latest-month KPI
// snapshot.
type PricesHandler struct {
	service      DatasetReader
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPricesHandler creates a new prices handler
func NewPricesHandler(service DatasetReader, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PricesHandler {
	return &PricesHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "prices")),
		errorHandler: errorHandler,
	}
}

// Routes returns the price routes
func (h *PricesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetPrices)
	r.Get("/latest", h.GetLatest)

	return r
}

// GetPrices handles GET /api/prices. The optional range filter restricts
// which months are returned; change percentages stay computed over the
// full series.
func (h *PricesHandler) GetPrices(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	filter, err := parseRangeFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	records, err := h.service.Prices(r.Context(), filter)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get prices",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   records,
		"count":  len(records),
	})
}

// GetLatest handles GET /api/prices/latest
func (h *PricesHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	latest, err := h.service.Latest(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get latest snapshot",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   latest,
	})
}
