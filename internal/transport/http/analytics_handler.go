package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "fuelpulse/internal/errors"
	"fuelpulse/pkg/contracts/domain"
)

// AnalyticsHandler serves aggregate views over the derived series:
// yearly and seasonal summaries, the heatmap, extremum lookups and
// short-window trends.
type AnalyticsHandler struct {
	service      DatasetReader
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service DatasetReader, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "analytics")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analytics routes
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/yearly", h.GetYearly)
	r.Get("/yearly/extremum", h.GetExtremeYear)
	r.Get("/seasonal", h.GetSeasonal)
	r.Get("/heatmap", h.GetHeatmap)
	r.Get("/extremum", h.GetExtremum)
	r.Get("/trend", h.GetTrend)

	return r
}

// GetYearly handles GET /api/analytics/yearly
func (h *AnalyticsHandler) GetYearly(w http.ResponseWriter, r *http.Request) {
	years, err := h.service.Yearly(r.Context())
	if err != nil {
		h.respondError(w, r, "failed to get yearly summaries", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   years,
		"count":  len(years),
	})
}

// GetSeasonal handles GET /api/analytics/seasonal
func (h *AnalyticsHandler) GetSeasonal(w http.ResponseWriter, r *http.Request) {
	seasonal, err := h.service.Seasonal(r.Context())
	if err != nil {
		h.respondError(w, r, "failed to get seasonal summaries", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   seasonal,
		"count":  len(seasonal),
	})
}

// GetHeatmap handles GET /api/analytics/heatmap
func (h *AnalyticsHandler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	cells, err := h.service.Heatmap(r.Context())
	if err != nil {
		h.respondError(w, r, "failed to get heatmap", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   cells,
		"count":  len(cells),
	})
}

// GetExtremum handles GET /api/analytics/extremum. The kind parameter is
// required (max or min); column defaults to city_price and an optional
// range filter scopes the search.
func (h *AnalyticsHandler) GetExtremum(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseExtremumKind(r.URL.Query().Get("kind"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("kind", "must be max or min"))
		return
	}

	col, err := parseColumn(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filter, err := parseRangeFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	record, err := h.service.Extremum(r.Context(), col, kind, filter)
	if err != nil {
		h.respondError(w, r, "failed to find extremum", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   record,
		"column": col,
		"kind":   kind,
	})
}

// GetExtremeYear handles GET /api/analytics/yearly/extremum. Only the
// three price columns are valid here, and only complete years compete.
func (h *AnalyticsHandler) GetExtremeYear(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseExtremumKind(r.URL.Query().Get("kind"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("kind", "must be max or min"))
		return
	}

	col, err := parseColumn(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	year, err := h.service.ExtremeYear(r.Context(), col, kind)
	if err != nil {
		h.respondError(w, r, "failed to find extreme year", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   year,
		"column": col,
		"kind":   kind,
	})
}

// GetTrend handles GET /api/analytics/trend. Window falls back to the
// configured default when omitted.
func (h *AnalyticsHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	col, err := parseColumn(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	window, err := parseWindow(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filter, err := parseRangeFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Trend(r.Context(), col, window, filter)
	if err != nil {
		h.respondError(w, r, "failed to compute trend", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}

func (h *AnalyticsHandler) respondError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	h.errorHandler.HandleError(w, r, mapServiceError(err))
}
