// Package http implements HTTP request handlers for the FuelPulse web
// service. It provides a thin layer between HTTP transport and business
// logic: handlers parse requests, delegate to the service layer, and
// transform service errors into RFC 7807 problem responses.
//
// # Handler Structure
//
// Each handler follows this pattern:
//
//	func (h *Handler) HandleSomething(w http.ResponseWriter, r *http.Request) {
//	    // 1. Parse and validate request
//	    filter, err := parseRangeFilter(r)
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//
//	    // 2. Call service layer
//	    result, err := h.service.DoSomething(r.Context(), filter)
//	    if err != nil {
//	        h.respondServiceError(w, r, err)
//	        return
//	    }
//
//	    // 3. Format and send response
//	    render.JSON(w, r, envelope(result))
//	}
//
// # Error Handling
//
// Service sentinel errors map to stable HTTP statuses:
//
//	services.ErrDatasetNotLoaded -> 503
//	services.ErrNoData           -> 404
//	services.ErrInvalidInput     -> 400
//	services.ErrOperationRunning -> 409
//	services.ErrOperationNotFound-> 404
//
// Everything else falls through to the RFC 7807 error handler.
package http
