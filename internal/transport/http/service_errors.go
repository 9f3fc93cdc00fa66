package http

import (
	"errors"
	"net/http"

	apierrors "fuelpulse/internal/errors"
	"fuelpulse/internal/services"
)

// mapServiceError translates service sentinel errors into API errors with
// stable codes. Unknown errors pass through for the RFC 7807 handler to
// classify.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrDatasetNotLoaded):
		return apierrors.New(
			http.StatusServiceUnavailable,
			"DATASET_NOT_LOADED",
			"No dataset has been loaded yet; run a refresh first",
		)
	case errors.Is(err, services.ErrNoData):
		return apierrors.New(
			http.StatusNotFound,
			"NO_DATA",
			"No rows match the requested range",
		)
	case errors.Is(err, services.ErrNoDatasetFile):
		return apierrors.New(
			http.StatusNotFound,
			"NO_DATASET_FILE",
			"No dataset file was found in the data directory",
		)
	case errors.Is(err, services.ErrInvalidInput):
		return apierrors.New(
			http.StatusBadRequest,
			"INVALID_INPUT",
			err.Error(),
		)
	case errors.Is(err, services.ErrOperationRunning):
		return apierrors.New(
			http.StatusConflict,
			"OPERATION_RUNNING",
			"A refresh operation is already running",
		)
	case errors.Is(err, services.ErrOperationNotFound):
		return apierrors.New(
			http.StatusNotFound,
			"OPERATION_NOT_FOUND",
			"Operation not found",
		)
	}
	return err
}
