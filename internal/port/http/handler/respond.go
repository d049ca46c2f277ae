package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/surajpratapsingh112/shree-ecommerce/internal/domain/entity"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/repository"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/service"
)

// Payload is the variable part of a success envelope, merged alongside
// success and message.
type Payload map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondSuccess(w http.ResponseWriter, status int, message string, payload Payload) {
	body := map[string]interface{}{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

func respondValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"success": false,
		"message": "validation failed",
		"errors":  fieldErrors,
	})
}

// respondServiceError maps domain and repository errors onto HTTP statuses.
// Anything unrecognized is a 500 with a generic message; the real cause goes
// to the log only.
func respondServiceError(w http.ResponseWriter, log logger.Logger, err error) {
	var stockErr *service.InsufficientStockError

	switch {
	case errors.Is(err, repository.ErrNotFound):
		respondError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, repository.ErrAlreadyExists):
		respondError(w, http.StatusConflict, "resource already exists")
	case errors.Is(err, repository.ErrOptimisticLock):
		respondError(w, http.StatusConflict, "resource was modified concurrently, please retry")
	case errors.As(err, &stockErr):
		respondError(w, http.StatusConflict, stockErr.Error())
	case errors.Is(err, service.ErrEmailTaken):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidResetToken):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrAccountDisabled),
		errors.Is(err, service.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrNoShippingAddress),
		errors.Is(err, service.ErrAlreadyReviewed),
		errors.Is(err, service.ErrCategoryInUse),
		errors.Is(err, service.ErrOrderNotCancellable),
		errors.Is(err, service.ErrPaymentVerification),
		errors.Is(err, entity.ErrInvalidTransition):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPaymentSetup):
		respondError(w, http.StatusBadGateway, err.Error())
	default:
		log.Errorf("Unhandled error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// decodeBodyIfPresent tolerates an empty body; dst keeps its zero values.
func decodeBodyIfPresent(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(dst)
}
