package router

import (
	"net/http"

	"github.com/rahatc/paywords/internal/audit"
	"github.com/rahatc/paywords/internal/handlers"
	"github.com/rahatc/paywords/internal/middleware"
	"github.com/rahatc/paywords/internal/services"
	"github.com/rahatc/paywords/internal/utils"

	"github.com/gorilla/mux"
)

func NewRouter(
	uploadService services.UploadService,
	paymentService services.PaymentService,
	recorder *audit.Recorder,
	maxFileSize int64,
	logger *utils.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Recovery(logger))

	uploadHandler := handlers.NewUploadHandler(uploadService, maxFileSize, logger)
	paymentHandler := handlers.NewPaymentHandler(paymentService, recorder, logger)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	// Gateway callbacks are reachable without a principal; the gateway has
	// no session.
	api.HandleFunc("/payment/success", paymentHandler.Success).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/payment/fail", paymentHandler.Fail).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/payment/cancel", paymentHandler.Cancel).Methods(http.MethodGet, http.MethodPost)

	// Authenticated endpoints
	authed := api.NewRoute().Subrouter()
	authed.Use(middleware.Principal())
	authed.HandleFunc("/files", uploadHandler.Upload).Methods(http.MethodPost)
	authed.HandleFunc("/files", uploadHandler.List).Methods(http.MethodGet)
	authed.HandleFunc("/files/{id}", uploadHandler.Get).Methods(http.MethodGet)
	authed.HandleFunc("/initiate-payment", paymentHandler.Initiate).Methods(http.MethodPost)
	authed.HandleFunc("/transactions", paymentHandler.ListTransactions).Methods(http.MethodGet)
	authed.HandleFunc("/activity", paymentHandler.ListActivity).Methods(http.MethodGet)

	return r
}
