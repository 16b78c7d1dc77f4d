package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/rahatc/paywords/internal/models"
)

type UploadRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, upload *models.Upload) error
	GetByID(ctx context.Context, id string) (*models.Upload, error)
	ListByUser(ctx context.Context, userID string) ([]models.Upload, error)
	// SetResult records the terminal outcome of processing. It is
	// last-write-wins: reprocessing the same stored bytes yields the same
	// result, so a redelivered job may safely apply it again.
	SetResult(ctx context.Context, id, status string, wordCount *int, errorMessage *string) error
}

type uploadRepository struct {
	db *sqlx.DB
}

func NewUploadRepository(db *sqlx.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(ctx context.Context, tx *sqlx.Tx, upload *models.Upload) error {
	query := `
		INSERT INTO uploads (id, user_id, storage_key, filename, status, upload_time)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.ExecContext(ctx, query,
		upload.ID,
		upload.UserID,
		upload.StorageKey,
		upload.Filename,
		upload.Status,
		upload.UploadTime,
	)

	return err
}

func (r *uploadRepository) GetByID(ctx context.Context, id string) (*models.Upload, error) {
	var upload models.Upload

	query := `
		SELECT id, user_id, storage_key, filename, status, word_count, error_message, upload_time
		FROM uploads
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &upload, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &upload, nil
}

func (r *uploadRepository) ListByUser(ctx context.Context, userID string) ([]models.Upload, error) {
	uploads := []models.Upload{}

	query := `
		SELECT id, user_id, storage_key, filename, status, word_count, error_message, upload_time
		FROM uploads
		WHERE user_id = $1
		ORDER BY upload_time DESC
	`

	if err := r.db.SelectContext(ctx, &uploads, query, userID); err != nil {
		return nil, err
	}

	return uploads, nil
}

func (r *uploadRepository) SetResult(ctx context.Context, id, status string, wordCount *int, errorMessage *string) error {
	query := `
		UPDATE uploads
		SET status = $2, word_count = $3, error_message = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status, wordCount, errorMessage)

	return err
}
