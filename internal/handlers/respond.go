package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rahatc/paywords/internal/services"
	"github.com/rahatc/paywords/internal/utils"
)

func respondJSON(logger *utils.Logger, w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError maps service errors onto HTTP statuses. Rejections keep their
// messages; anything unrecognized becomes an opaque 500.
func respondError(logger *utils.Logger, w http.ResponseWriter, err error) {
	var (
		status  int
		message string
	)

	var appErr *utils.AppError
	var validationErr *services.ValidationError
	var gatewayErr *services.GatewayError
	var conflictErr *services.OutcomeConflictError

	switch {
	case errors.As(err, &appErr):
		status = appErr.StatusCode
		message = appErr.Message
	case errors.Is(err, services.ErrPaymentRequired):
		status = http.StatusForbidden
		message = "Payment required before uploading files"
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		message = validationErr.Message
	case errors.As(err, &gatewayErr):
		status = http.StatusBadRequest
		message = gatewayErr.Error()
	case errors.Is(err, services.ErrMissingTransactionID):
		status = http.StatusBadRequest
		message = "Transaction ID missing"
	case errors.Is(err, services.ErrTransactionNotFound):
		status = http.StatusNotFound
		message = "Invalid transaction ID"
	case errors.As(err, &conflictErr):
		status = http.StatusConflict
		message = conflictErr.Error()
	case errors.Is(err, services.ErrUploadNotFound):
		status = http.StatusNotFound
		message = "Upload not found"
	default:
		status = http.StatusInternalServerError
		message = "Internal server error"
	}

	logger.Error("Request error", "status", status, "error", err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
