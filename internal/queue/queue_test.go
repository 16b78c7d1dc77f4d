package queue

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, *sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlite")
	return NewStore(db), db, mock
}

func TestEnqueueWritesJobRow(t *testing.T) {
	store, db, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO jobs")).
		WithArgs("process_word_count", `{"upload_id":"u1"}`, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.Enqueue(context.Background(), db, "process_word_count", Args{"upload_id": "u1"})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimReturnsOldestQueuedJob(t *testing.T) {
	store, _, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "job_name", "args", "attempts"}).
		AddRow(7, "process_word_count", `{"upload_id":"u1"}`, 1)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE jobs")).
		WillReturnRows(rows)

	job, err := store.Claim(context.Background())

	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, int64(7), job.ID)
	assert.Equal(t, "process_word_count", job.Name)
	assert.Equal(t, "u1", job.Args["upload_id"])
	assert.Equal(t, 1, job.Attempt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimEmptyQueue(t *testing.T) {
	store, _, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE jobs")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "job_name", "args", "attempts"}))

	job, err := store.Claim(context.Background())

	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestRequeueStale(t *testing.T) {
	store, _, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET status = 'queued'")).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := store.RequeueStale(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
