package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rahatc/paywords/internal/middleware"
	"github.com/rahatc/paywords/internal/services"
	"github.com/rahatc/paywords/internal/utils"
)

type UploadHandler struct {
	service     services.UploadService
	maxFileSize int64
	logger      *utils.Logger
}

func NewUploadHandler(service services.UploadService, maxFileSize int64, logger *utils.Logger) *UploadHandler {
	return &UploadHandler{
		service:     service,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		respondError(h.logger, w, utils.NewForbiddenError("Authentication required"))
		return
	}

	// Reject oversized requests before buffering them. The service applies
	// the exact per-file limit; this guards the request body as a whole.
	if r.ContentLength > h.maxFileSize+1024*1024 {
		respondError(h.logger, w, utils.NewBadRequestError("File size exceeds 10MB limit"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+1024*1024)

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			respondError(h.logger, w, utils.NewBadRequestError("File size exceeds 10MB limit"))
			return
		}
		respondError(h.logger, w, utils.NewBadRequestError("Invalid form data"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(h.logger, w, utils.NewBadRequestError("No file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		respondError(h.logger, w, utils.NewInternalError("Failed to read file"))
		return
	}

	upload, err := h.service.Submit(r.Context(), userID, header.Filename, data)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	respondJSON(h.logger, w, http.StatusCreated, upload)
}

func (h *UploadHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		respondError(h.logger, w, utils.NewForbiddenError("Authentication required"))
		return
	}

	uploads, err := h.service.ListUploads(r.Context(), userID)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	respondJSON(h.logger, w, http.StatusOK, uploads)
}

func (h *UploadHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		respondError(h.logger, w, utils.NewForbiddenError("Authentication required"))
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		respondError(h.logger, w, utils.NewBadRequestError("Upload ID is required"))
		return
	}

	upload, err := h.service.GetUpload(r.Context(), userID, id)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	respondJSON(h.logger, w, http.StatusOK, upload)
}
