package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/rahatc/paywords/internal/models"
)

type ActivityRepository interface {
	Insert(ctx context.Context, entry *models.ActivityLogEntry) error
	// InsertTx writes the entry inside the caller's transaction, so the
	// audit row commits or rolls back together with the domain rows.
	InsertTx(ctx context.Context, tx *sqlx.Tx, entry *models.ActivityLogEntry) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.ActivityLogEntry, error)
}

type activityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) ActivityRepository {
	return &activityRepository{db: db}
}

const insertActivityQuery = `
	INSERT INTO activity_log (id, user_id, action, metadata, timestamp)
	VALUES ($1, $2, $3, $4, $5)
`

func (r *activityRepository) Insert(ctx context.Context, entry *models.ActivityLogEntry) error {
	_, err := r.db.ExecContext(ctx, insertActivityQuery,
		entry.ID,
		entry.UserID,
		entry.Action,
		entry.Metadata,
		entry.Timestamp,
	)

	return err
}

func (r *activityRepository) InsertTx(ctx context.Context, tx *sqlx.Tx, entry *models.ActivityLogEntry) error {
	_, err := tx.ExecContext(ctx, insertActivityQuery,
		entry.ID,
		entry.UserID,
		entry.Action,
		entry.Metadata,
		entry.Timestamp,
	)

	return err
}

func (r *activityRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.ActivityLogEntry, error) {
	entries := []models.ActivityLogEntry{}

	query := `
		SELECT id, user_id, action, metadata, timestamp
		FROM activity_log
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	if err := r.db.SelectContext(ctx, &entries, query, userID, limit); err != nil {
		return nil, err
	}

	return entries, nil
}
