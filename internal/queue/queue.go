package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Args is the JSON-encoded payload handed to a job handler.
type Args map[string]any

// Job is one claimed row from the jobs table.
type Job struct {
	ID      int64
	Name    string
	Args    Args
	Attempt int
}

// Enqueuer is the narrow interface producers depend on. Enqueue writes the
// job row through the caller's execer, so a producer can make the enqueue
// part of its own transaction.
type Enqueuer interface {
	Enqueue(ctx context.Context, tx sqlx.ExecerContext, jobName string, args Args) error
}

// Store is the durable sqlite-backed job queue. Delivery is at-least-once:
// a job claimed by a worker that dies before finishing is requeued on the
// next startup.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Enqueue(ctx context.Context, tx sqlx.ExecerContext, jobName string, args Args) error {
	encoded, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to encode job args: %w", err)
	}

	now := time.Now()
	query := `
		INSERT INTO jobs (job_name, args, status, created_at, updated_at)
		VALUES ($1, $2, 'queued', $3, $4)
	`

	if _, err := tx.ExecContext(ctx, query, jobName, string(encoded), now, now); err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", jobName, err)
	}

	return nil
}

// Claim atomically takes the oldest queued job, marking it running. Returns
// nil when the queue is empty.
func (s *Store) Claim(ctx context.Context) (*Job, error) {
	query := `
		UPDATE jobs
		SET status = 'running', attempts = attempts + 1, updated_at = $1
		WHERE id = (SELECT id FROM jobs WHERE status = 'queued' ORDER BY id LIMIT 1)
		RETURNING id, job_name, args, attempts
	`

	var (
		job     Job
		rawArgs string
	)
	err := s.db.QueryRowxContext(ctx, query, time.Now()).Scan(&job.ID, &job.Name, &rawArgs, &job.Attempt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}

	if err := json.Unmarshal([]byte(rawArgs), &job.Args); err != nil {
		return nil, fmt.Errorf("failed to decode args of job %d: %w", job.ID, err)
	}

	return &job, nil
}

// MarkDone finishes a claimed job. Handler failures also finish the job: the
// processing pipeline records its own terminal state, so the queue never
// retries on its own.
func (s *Store) MarkDone(ctx context.Context, jobID int64) error {
	query := `UPDATE jobs SET status = 'done', updated_at = $1 WHERE id = $2`

	if _, err := s.db.ExecContext(ctx, query, time.Now(), jobID); err != nil {
		return fmt.Errorf("failed to mark job %d done: %w", jobID, err)
	}

	return nil
}

// RequeueStale returns running jobs to the queue. Called once at startup,
// before any worker runs, to recover jobs orphaned by a crash.
func (s *Store) RequeueStale(ctx context.Context) (int64, error) {
	query := `UPDATE jobs SET status = 'queued', updated_at = $1 WHERE status = 'running'`

	res, err := s.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to requeue stale jobs: %w", err)
	}

	return res.RowsAffected()
}
