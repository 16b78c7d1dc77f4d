package audit

import (
	"context"
	"time"

	"github.com/rahatc/paywords/internal/models"
	"github.com/rahatc/paywords/internal/repository"
	"github.com/rahatc/paywords/internal/utils"
)

// Recorder appends entries to the activity log. Recording never fails the
// caller: a failed insert is logged so an operator can act on it, and the
// triggering operation carries on.
type Recorder struct {
	repo   repository.ActivityRepository
	logger *utils.Logger
}

func NewRecorder(repo repository.ActivityRepository, logger *utils.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// NewEntry builds an activity entry without persisting it, for callers that
// insert it inside their own transaction. userID may be nil for
// system-initiated events.
func NewEntry(userID *string, action string, metadata models.Metadata) *models.ActivityLogEntry {
	return &models.ActivityLogEntry{
		ID:        utils.GenerateID(),
		UserID:    userID,
		Action:    action,
		Metadata:  metadata,
		Timestamp: time.Now(),
	}
}

func (r *Recorder) Record(ctx context.Context, userID *string, action string, metadata models.Metadata) {
	entry := NewEntry(userID, action, metadata)

	if err := r.repo.Insert(ctx, entry); err != nil {
		r.logger.Error("Failed to write activity log entry",
			"action", action,
			"error", err)
	}
}

// List returns the user's most recent activity, newest first.
func (r *Recorder) List(ctx context.Context, userID string, limit int) ([]models.ActivityLogEntry, error) {
	return r.repo.ListByUser(ctx, userID, limit)
}
