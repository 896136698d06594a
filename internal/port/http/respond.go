package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/repository"
	"github.com/gb112302/agriconnect/internal/service"
)

// envelope is the uniform response shape of the API.
type envelope map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondSuccess(w http.ResponseWriter, status int, data envelope) {
	body := envelope{"success": true}
	for k, v := range data {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func respondError(w http.ResponseWriter, log logger.Logger, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("Request failed: %v", err)
		writeJSON(w, status, envelope{"success": false, "message": "internal server error"})
		return
	}
	writeJSON(w, status, envelope{"success": false, "message": err.Error()})
}

func statusForError(err error) int {
	var insufficientStock *repository.InsufficientStockError
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrAccountDisabled),
		errors.Is(err, entity.ErrRoleNotPermitted):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &insufficientStock),
		errors.Is(err, repository.ErrDuplicateEmail),
		errors.Is(err, repository.ErrDuplicateReview),
		errors.Is(err, repository.ErrAlreadyExists),
		errors.Is(err, repository.ErrOptimisticLock),
		errors.Is(err, entity.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, service.ErrPaymentVerificationFailed):
		return http.StatusPaymentRequired
	case errors.Is(err, service.ErrPaymentGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return service.ErrValidation
	}
	return nil
}
