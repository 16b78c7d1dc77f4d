package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rahatc/paywords/internal/audit"
	"github.com/rahatc/paywords/internal/extractor"
	"github.com/rahatc/paywords/internal/models"
	"github.com/rahatc/paywords/internal/queue"
	"github.com/rahatc/paywords/internal/repository"
	"github.com/rahatc/paywords/internal/storage"
	"github.com/rahatc/paywords/internal/utils"
)

// JobProcessWordCount names the background job that counts words in a
// stored upload.
const JobProcessWordCount = "process_word_count"

type UploadService interface {
	// Submit admits, validates and persists a new document, and enqueues
	// its word-count job. The stored blob, the upload row, the audit entry
	// and the job row appear atomically: if any step fails, none survive.
	Submit(ctx context.Context, userID, filename string, data []byte) (*models.Upload, error)
	// Process runs the word-count pipeline for one upload. It is invoked by
	// the job workers and is safe to run more than once for the same id.
	Process(ctx context.Context, uploadID string) error
	ListUploads(ctx context.Context, userID string) ([]models.Upload, error)
	GetUpload(ctx context.Context, userID, id string) (*models.Upload, error)
	// JobHandler adapts Process to the queue's handler signature.
	JobHandler() queue.HandlerFunc
}

type uploadService struct {
	db          *sqlx.DB
	uploads     repository.UploadRepository
	payments    repository.PaymentRepository
	activity    repository.ActivityRepository
	recorder    *audit.Recorder
	storage     storage.Storage
	enqueuer    queue.Enqueuer
	maxFileSize int64
	logger      *utils.Logger
}

func NewUploadService(
	db *sqlx.DB,
	uploads repository.UploadRepository,
	payments repository.PaymentRepository,
	activity repository.ActivityRepository,
	recorder *audit.Recorder,
	store storage.Storage,
	enqueuer queue.Enqueuer,
	maxFileSize int64,
	logger *utils.Logger,
) UploadService {
	return &uploadService{
		db:          db,
		uploads:     uploads,
		payments:    payments,
		activity:    activity,
		recorder:    recorder,
		storage:     store,
		enqueuer:    enqueuer,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

func (s *uploadService) Submit(ctx context.Context, userID, filename string, data []byte) (*models.Upload, error) {
	// Admission gate first: an unpaid principal learns nothing about
	// whether their file would have validated.
	admitted, err := s.payments.HasSuccessful(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check payment state: %w", err)
	}
	if !admitted {
		return nil, ErrPaymentRequired
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".txt" && ext != ".docx" {
		return nil, &ValidationError{
			Kind:    KindUnsupportedFormat,
			Message: "Only .txt and .docx files are allowed",
		}
	}

	if int64(len(data)) > s.maxFileSize {
		return nil, &ValidationError{
			Kind:    KindTooLarge,
			Message: fmt.Sprintf("File size exceeds %dMB limit", s.maxFileSize/(1024*1024)),
		}
	}

	uploadID := utils.GenerateID()
	storageKey := fmt.Sprintf("uploads/%s/%s", uploadID, filename)

	if err := s.storage.Save(ctx, storageKey, data, contentTypeFor(ext)); err != nil {
		s.logger.Error("Failed to store upload", "error", err, "key", storageKey)
		return nil, utils.NewInternalError("Failed to store document")
	}

	upload := &models.Upload{
		ID:         uploadID,
		UserID:     userID,
		StorageKey: storageKey,
		Filename:   filename,
		Status:     models.UploadStatusProcessing,
		UploadTime: time.Now(),
	}

	if err := s.createAndEnqueue(ctx, upload); err != nil {
		s.logger.Error("Failed to persist upload", "error", err, "upload_id", uploadID)
		// The blob must not outlive the row it belongs to.
		_ = s.storage.Delete(ctx, storageKey)
		return nil, utils.NewInternalError("Failed to save upload")
	}

	s.logger.Info("File uploaded",
		"upload_id", uploadID,
		"user_id", userID,
		"filename", filename,
		"size", len(data))

	return upload, nil
}

// createAndEnqueue writes the upload row, its audit entry and the word-count
// job in one transaction.
func (s *uploadService) createAndEnqueue(ctx context.Context, upload *models.Upload) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.uploads.Create(ctx, tx, upload); err != nil {
		return fmt.Errorf("create upload: %w", err)
	}

	entry := audit.NewEntry(&upload.UserID, models.ActionFileUploaded, models.Metadata{
		"file_id":  upload.ID,
		"filename": upload.Filename,
	})
	if err := s.activity.InsertTx(ctx, tx, entry); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}

	if err := s.enqueuer.Enqueue(ctx, tx, JobProcessWordCount, queue.Args{"upload_id": upload.ID}); err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}

	return tx.Commit()
}

func (s *uploadService) Process(ctx context.Context, uploadID string) error {
	upload, err := s.uploads.GetByID(ctx, uploadID)
	if err != nil {
		return fmt.Errorf("load upload %s: %w", uploadID, err)
	}
	if upload == nil {
		// Stale job or deleted row; nothing to do.
		return nil
	}

	data, err := s.storage.Read(ctx, upload.StorageKey)
	if err != nil {
		return s.fail(ctx, upload, fmt.Sprintf("failed to read stored file: %v", err))
	}

	var wordCount int
	switch strings.ToLower(filepath.Ext(upload.Filename)) {
	case ".txt":
		wordCount = extractor.CountWords(extractor.DecodeText(data))
	case ".docx":
		text, err := extractor.ExtractDOCX(data)
		if err != nil {
			return s.fail(ctx, upload, err.Error())
		}
		wordCount = extractor.CountWords(text)
	default:
		// Intake rejects these; a row can only get here through manual
		// tampering with stored state.
		return s.fail(ctx, upload, "unsupported format")
	}

	if err := s.uploads.SetResult(ctx, upload.ID, models.UploadStatusCompleted, &wordCount, nil); err != nil {
		return fmt.Errorf("record result for upload %s: %w", upload.ID, err)
	}

	s.recorder.Record(ctx, &upload.UserID, models.ActionFileProcessed, models.Metadata{
		"file_id":    upload.ID,
		"filename":   upload.Filename,
		"word_count": wordCount,
	})

	s.logger.Info("File processed",
		"upload_id", upload.ID,
		"filename", upload.Filename,
		"word_count", wordCount)

	return nil
}

func (s *uploadService) fail(ctx context.Context, upload *models.Upload, reason string) error {
	if err := s.uploads.SetResult(ctx, upload.ID, models.UploadStatusFailed, nil, &reason); err != nil {
		return fmt.Errorf("record failure for upload %s: %w", upload.ID, err)
	}

	s.recorder.Record(ctx, &upload.UserID, models.ActionFileProcessingFailed, models.Metadata{
		"file_id":  upload.ID,
		"filename": upload.Filename,
		"reason":   reason,
	})

	s.logger.Warn("File processing failed",
		"upload_id", upload.ID,
		"filename", upload.Filename,
		"reason", reason)

	return nil
}

func (s *uploadService) ListUploads(ctx context.Context, userID string) ([]models.Upload, error) {
	return s.uploads.ListByUser(ctx, userID)
}

func (s *uploadService) GetUpload(ctx context.Context, userID, id string) (*models.Upload, error) {
	upload, err := s.uploads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upload == nil || upload.UserID != userID {
		return nil, ErrUploadNotFound
	}

	return upload, nil
}

func (s *uploadService) JobHandler() queue.HandlerFunc {
	return func(ctx context.Context, args queue.Args) error {
		uploadID, _ := args["upload_id"].(string)
		if uploadID == "" {
			return fmt.Errorf("job args missing upload_id")
		}
		return s.Process(ctx, uploadID)
	}
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".txt":
		return "text/plain"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
