package handlers

import (
	"errors"
	"net/http"

	"github.com/adampdxdotcom/subfloor-sub002/httpx"
	"github.com/adampdxdotcom/subfloor-sub002/internal/scheduling"
	"github.com/adampdxdotcom/subfloor-sub002/internal/services"
)

// writeError maps service and gate errors to JSON error responses.
func writeError(w http.ResponseWriter, err error) {
	var rej *scheduling.RejectionError
	var verr *services.ValidationError
	switch {
	case errors.As(err, &rej):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "scheduling_rejected", map[string]string{
			"reason":  rej.Err.Error(),
			"message": rej.Message,
		})
	case errors.As(err, &verr):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", verr.Fields)
	case errors.Is(err, scheduling.ErrInvalidDate):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"appointments": "invalid_date"})
	case errors.Is(err, httpx.ErrInvalidJSON), errors.Is(err, httpx.ErrEmptyBody):
		httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, httpx.ErrInvalidID):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrQuoteNotFound),
		errors.Is(err, services.ErrJobNotFound):
		httpx.JSONError(w, http.StatusNotFound, errorCode(err), nil)
	case errors.Is(err, services.ErrInstallerNotFound),
		errors.Is(err, services.ErrQuoteNotInProject):
		httpx.JSONError(w, http.StatusBadRequest, errorCode(err), nil)
	case errors.Is(err, services.ErrProjectClosed),
		errors.Is(err, services.ErrQuoteNotDecidable),
		errors.Is(err, services.ErrStatusNotAllowed),
		errors.Is(err, services.ErrProjectStatusChanged):
		httpx.JSONError(w, http.StatusConflict, errorCode(err), nil)
	case errors.Is(err, services.ErrSaveFailed):
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_save", map[string]string{
			"message": "Failed to save job details.",
		})
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// errorCode returns the snake_case code of the first known sentinel in err's chain.
func errorCode(err error) string {
	for _, s := range []error{
		services.ErrProjectNotFound, services.ErrQuoteNotFound, services.ErrJobNotFound,
		services.ErrInstallerNotFound, services.ErrQuoteNotInProject, services.ErrProjectClosed,
		services.ErrQuoteNotDecidable, services.ErrStatusNotAllowed, services.ErrProjectStatusChanged,
	} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal_error"
}
