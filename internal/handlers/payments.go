package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rahatc/paywords/internal/audit"
	"github.com/rahatc/paywords/internal/middleware"
	"github.com/rahatc/paywords/internal/models"
	"github.com/rahatc/paywords/internal/services"
	"github.com/rahatc/paywords/internal/utils"
)

// transactionIDParam is the field name aamarPay uses to echo the merchant
// transaction id back on callbacks.
const transactionIDParam = "mer_txnid"

type PaymentHandler struct {
	service  services.PaymentService
	recorder *audit.Recorder
	logger   *utils.Logger
}

func NewPaymentHandler(service services.PaymentService, recorder *audit.Recorder, logger *utils.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:  service,
		recorder: recorder,
		logger:   logger,
	}
}

type initiateRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
}

func (h *PaymentHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		respondError(h.logger, w, utils.NewForbiddenError("Authentication required"))
		return
	}

	// Customer descriptors are optional; the gateway client falls back to
	// placeholders when they are absent.
	var req initiateRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	initiation, err := h.service.Initiate(r.Context(), userID, req.CustomerName, req.CustomerEmail)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	respondJSON(h.logger, w, http.StatusOK, initiation)
}

// Success, Fail and Cancel are the gateway-facing callback endpoints. They
// accept both GET and POST; the transaction id arrives by query string or
// form body.
func (h *PaymentHandler) Success(w http.ResponseWriter, r *http.Request) {
	h.handleCallback(w, r, models.PaymentStatusSuccess)
}

func (h *PaymentHandler) Fail(w http.ResponseWriter, r *http.Request) {
	h.handleCallback(w, r, models.PaymentStatusFailed)
}

func (h *PaymentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.handleCallback(w, r, models.PaymentStatusCancelled)
}

func (h *PaymentHandler) handleCallback(w http.ResponseWriter, r *http.Request, outcome string) {
	// FormValue reads the query string on GET and the form body on POST.
	transactionID := r.FormValue(transactionIDParam)

	redirect, err := h.service.HandleCallback(r.Context(), transactionID, outcome)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	http.Redirect(w, r, redirect.Location, http.StatusFound)
}

func (h *PaymentHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		respondError(h.logger, w, utils.NewForbiddenError("Authentication required"))
		return
	}

	payments, err := h.service.ListTransactions(r.Context(), userID)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	respondJSON(h.logger, w, http.StatusOK, payments)
}

func (h *PaymentHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		respondError(h.logger, w, utils.NewForbiddenError("Authentication required"))
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			respondError(h.logger, w, utils.NewBadRequestError("limit must be between 1 and 100"))
			return
		}
		limit = parsed
	}

	entries, err := h.recorder.List(r.Context(), userID, limit)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	respondJSON(h.logger, w, http.StatusOK, entries)
}
