package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rahatc/paywords/internal/models"
)

// SettleResult reports what a Settle call did to the transaction row.
type SettleResult int

const (
	// Settled means this call moved the transaction from pending to the
	// requested terminal status.
	Settled SettleResult = iota
	// AlreadySettled means the transaction was already terminal with the
	// same outcome; the call changed nothing.
	AlreadySettled
	// OutcomeConflict means the transaction is terminal with a different
	// outcome than requested; the row is left untouched.
	OutcomeConflict
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.PaymentTransaction) error
	GetByTransactionID(ctx context.Context, transactionID string) (*models.PaymentTransaction, error)
	// HasSuccessful reports whether the user owns at least one transaction
	// with status success. This is the admission-gate query.
	HasSuccessful(ctx context.Context, userID string) (bool, error)
	AttachGatewayResponse(ctx context.Context, transactionID string, raw []byte) error
	// Settle moves a pending transaction to the given terminal status using
	// a compare-and-set on status, so concurrent or replayed callbacks for
	// the same transaction settle exactly once.
	Settle(ctx context.Context, transactionID, outcome string) (SettleResult, error)
	ListByUser(ctx context.Context, userID string) ([]models.PaymentTransaction, error)
}

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.PaymentTransaction) error {
	query := `
		INSERT INTO payment_transactions (id, user_id, transaction_id, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.UserID,
		payment.TransactionID,
		payment.Amount,
		payment.Status,
		payment.CreatedAt,
	)

	return err
}

func (r *paymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.PaymentTransaction, error) {
	var payment models.PaymentTransaction

	query := `
		SELECT id, user_id, transaction_id, amount, status, gateway_response, created_at
		FROM payment_transactions
		WHERE transaction_id = $1
	`

	err := r.db.GetContext(ctx, &payment, query, transactionID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepository) HasSuccessful(ctx context.Context, userID string) (bool, error) {
	var count int

	query := `
		SELECT COUNT(1)
		FROM payment_transactions
		WHERE user_id = $1 AND status = $2
	`

	if err := r.db.GetContext(ctx, &count, query, userID, models.PaymentStatusSuccess); err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *paymentRepository) AttachGatewayResponse(ctx context.Context, transactionID string, raw []byte) error {
	query := `
		UPDATE payment_transactions
		SET gateway_response = $2
		WHERE transaction_id = $1
	`

	_, err := r.db.ExecContext(ctx, query, transactionID, raw)

	return err
}

func (r *paymentRepository) Settle(ctx context.Context, transactionID, outcome string) (SettleResult, error) {
	query := `
		UPDATE payment_transactions
		SET status = $2
		WHERE transaction_id = $1 AND status = $3
	`

	res, err := r.db.ExecContext(ctx, query, transactionID, outcome, models.PaymentStatusPending)
	if err != nil {
		return 0, fmt.Errorf("settle transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if n == 1 {
		return Settled, nil
	}

	// No pending row was updated: the transaction is already terminal.
	// Distinguish a harmless replay from a conflicting one.
	var current string
	err = r.db.GetContext(ctx, &current,
		`SELECT status FROM payment_transactions WHERE transaction_id = $1`, transactionID)
	if err != nil {
		return 0, fmt.Errorf("read settled status: %w", err)
	}

	if current == outcome {
		return AlreadySettled, nil
	}
	return OutcomeConflict, nil
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID string) ([]models.PaymentTransaction, error) {
	payments := []models.PaymentTransaction{}

	query := `
		SELECT id, user_id, transaction_id, amount, status, gateway_response, created_at
		FROM payment_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	if err := r.db.SelectContext(ctx, &payments, query, userID); err != nil {
		return nil, err
	}

	return payments, nil
}
