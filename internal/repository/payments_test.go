package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahatc/paywords/internal/models"
)

func newMockRepo(t *testing.T) (PaymentRepository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return NewPaymentRepository(sqlx.NewDb(mockDB, "sqlite")), mock
}

func TestSettleMovesPendingToTerminal(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE payment_transactions")).
		WithArgs("txn_abc12345", models.PaymentStatusSuccess, models.PaymentStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := repo.Settle(context.Background(), "txn_abc12345", models.PaymentStatusSuccess)

	require.NoError(t, err)
	assert.Equal(t, Settled, result)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleReplaySameOutcome(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE payment_transactions")).
		WithArgs("txn_abc12345", models.PaymentStatusSuccess, models.PaymentStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM payment_transactions")).
		WithArgs("txn_abc12345").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(models.PaymentStatusSuccess))

	result, err := repo.Settle(context.Background(), "txn_abc12345", models.PaymentStatusSuccess)

	require.NoError(t, err)
	assert.Equal(t, AlreadySettled, result)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleConflictingOutcome(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE payment_transactions")).
		WithArgs("txn_abc12345", models.PaymentStatusFailed, models.PaymentStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM payment_transactions")).
		WithArgs("txn_abc12345").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(models.PaymentStatusSuccess))

	result, err := repo.Settle(context.Background(), "txn_abc12345", models.PaymentStatusFailed)

	require.NoError(t, err)
	assert.Equal(t, OutcomeConflict, result)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHasSuccessful(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1)")).
		WithArgs("user-1", models.PaymentStatusSuccess).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	admitted, err := repo.HasSuccessful(context.Background(), "user-1")

	require.NoError(t, err)
	assert.False(t, admitted)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1)")).
		WithArgs("user-1", models.PaymentStatusSuccess).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	admitted, err = repo.HasSuccessful(context.Background(), "user-1")

	require.NoError(t, err)
	assert.True(t, admitted)
	require.NoError(t, mock.ExpectationsWereMet())
}
