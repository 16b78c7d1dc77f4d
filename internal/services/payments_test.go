package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahatc/paywords/internal/audit"
	"github.com/rahatc/paywords/internal/config"
	"github.com/rahatc/paywords/internal/gateway"
	"github.com/rahatc/paywords/internal/models"
	"github.com/rahatc/paywords/internal/repository"
	"github.com/rahatc/paywords/internal/utils"
)

// memPaymentRepo is a working in-memory ledger with the same settle
// semantics as the SQL implementation.
type memPaymentRepo struct {
	repository.PaymentRepository
	byTxn map[string]*models.PaymentTransaction
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{byTxn: map[string]*models.PaymentTransaction{}}
}

func (m *memPaymentRepo) Create(ctx context.Context, payment *models.PaymentTransaction) error {
	copied := *payment
	m.byTxn[payment.TransactionID] = &copied
	return nil
}

func (m *memPaymentRepo) GetByTransactionID(ctx context.Context, transactionID string) (*models.PaymentTransaction, error) {
	payment, ok := m.byTxn[transactionID]
	if !ok {
		return nil, nil
	}
	copied := *payment
	return &copied, nil
}

func (m *memPaymentRepo) AttachGatewayResponse(ctx context.Context, transactionID string, raw []byte) error {
	if payment, ok := m.byTxn[transactionID]; ok {
		payment.GatewayResponse = raw
	}
	return nil
}

func (m *memPaymentRepo) Settle(ctx context.Context, transactionID, outcome string) (repository.SettleResult, error) {
	payment, ok := m.byTxn[transactionID]
	if !ok {
		return 0, errors.New("no such transaction")
	}
	if payment.Status == models.PaymentStatusPending {
		payment.Status = outcome
		return repository.Settled, nil
	}
	if payment.Status == outcome {
		return repository.AlreadySettled, nil
	}
	return repository.OutcomeConflict, nil
}

type fakeGateway struct {
	result  *gateway.InitiationResult
	err     error
	lastReq *gateway.InitiationRequest
}

func (f *fakeGateway) Initiate(ctx context.Context, req *gateway.InitiationRequest) (*gateway.InitiationResult, error) {
	f.lastReq = req
	return f.result, f.err
}

type paymentFixture struct {
	svc      PaymentService
	payments *memPaymentRepo
	activity *fakeActivityRepo
	gateway  *fakeGateway
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()

	logger := utils.NewLogger("error")
	f := &paymentFixture{
		payments: newMemPaymentRepo(),
		activity: &fakeActivityRepo{},
		gateway: &fakeGateway{result: &gateway.InitiationResult{
			Accepted:    true,
			PaymentURL:  "https://sandbox.aamarpay.com/pay/abc",
			RawResponse: []byte(`{"result":"true"}`),
		}},
	}

	cfg := &config.Config{
		ServicePrice: 100,
		DashboardURL: "/dashboard/",
	}
	f.svc = NewPaymentService(f.payments, audit.NewRecorder(f.activity, logger), f.gateway, cfg, logger)

	return f
}

func TestInitiateReturnsPaymentURL(t *testing.T) {
	f := newPaymentFixture(t)

	initiation, err := f.svc.Initiate(context.Background(), "user-1", "Alice", "alice@example.com")

	require.NoError(t, err)
	assert.Equal(t, "https://sandbox.aamarpay.com/pay/abc", initiation.PaymentURL)
	assert.True(t, strings.HasPrefix(initiation.TransactionID, "txn_"))
	assert.Len(t, initiation.TransactionID, len("txn_")+8)

	stored := f.payments.byTxn[initiation.TransactionID]
	require.NotNil(t, stored)
	assert.Equal(t, models.PaymentStatusPending, stored.Status)
	assert.Equal(t, 100.0, stored.Amount)
	assert.NotEmpty(t, stored.GatewayResponse)

	require.Equal(t, []string{models.ActionPaymentInitiated}, f.activity.actions())
	assert.Equal(t, initiation.TransactionID, f.gateway.lastReq.TransactionID)
	assert.Equal(t, 100.0, f.gateway.lastReq.Amount)
}

func TestInitiateGatewayRefusalLeavesPending(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.result = &gateway.InitiationResult{
		Accepted:     false,
		ErrorMessage: "Invalid store credentials",
		RawResponse:  []byte(`{"result":"false","error":"Invalid store credentials"}`),
	}

	_, err := f.svc.Initiate(context.Background(), "user-1", "", "")

	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)
	assert.Contains(t, gatewayErr.Message, "Invalid store credentials")

	// One row, still pending, with the raw response attached for diagnosis.
	require.Len(t, f.payments.byTxn, 1)
	for _, payment := range f.payments.byTxn {
		assert.Equal(t, models.PaymentStatusPending, payment.Status)
		assert.NotEmpty(t, payment.GatewayResponse)
	}
}

func TestInitiateTransportFailureLeavesPending(t *testing.T) {
	f := newPaymentFixture(t)
	f.gateway.result = nil
	f.gateway.err = errors.New("context deadline exceeded")

	_, err := f.svc.Initiate(context.Background(), "user-1", "", "")

	var gatewayErr *GatewayError
	require.ErrorAs(t, err, &gatewayErr)

	require.Len(t, f.payments.byTxn, 1)
	for _, payment := range f.payments.byTxn {
		assert.Equal(t, models.PaymentStatusPending, payment.Status)
	}
}

func TestCallbackRoundTripIsIdempotent(t *testing.T) {
	f := newPaymentFixture(t)

	initiation, err := f.svc.Initiate(context.Background(), "user-1", "", "")
	require.NoError(t, err)
	txnID := initiation.TransactionID

	redirect, err := f.svc.HandleCallback(context.Background(), txnID, models.PaymentStatusSuccess)
	require.NoError(t, err)
	assert.Contains(t, redirect.Location, "payment_status=success")
	assert.Contains(t, redirect.Location, "transaction_id="+txnID)

	assert.Equal(t, models.PaymentStatusSuccess, f.payments.byTxn[txnID].Status)
	assert.Equal(t, []string{models.ActionPaymentInitiated, "payment_success"}, f.activity.actions())

	// Gateway retry: same outcome again. Harmless, and not re-audited.
	redirect, err = f.svc.HandleCallback(context.Background(), txnID, models.PaymentStatusSuccess)
	require.NoError(t, err)
	assert.Contains(t, redirect.Location, "payment_status=success")
	assert.Equal(t, []string{models.ActionPaymentInitiated, "payment_success"}, f.activity.actions())
}

func TestCallbackConflictingReplayIsRefused(t *testing.T) {
	f := newPaymentFixture(t)

	initiation, err := f.svc.Initiate(context.Background(), "user-1", "", "")
	require.NoError(t, err)
	txnID := initiation.TransactionID

	_, err = f.svc.HandleCallback(context.Background(), txnID, models.PaymentStatusSuccess)
	require.NoError(t, err)

	_, err = f.svc.HandleCallback(context.Background(), txnID, models.PaymentStatusFailed)

	var conflictErr *OutcomeConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, models.PaymentStatusSuccess, conflictErr.Current)
	assert.Equal(t, models.PaymentStatusFailed, conflictErr.Requested)

	// State untouched, no payment_failed audit entry.
	assert.Equal(t, models.PaymentStatusSuccess, f.payments.byTxn[txnID].Status)
	assert.Equal(t, []string{models.ActionPaymentInitiated, "payment_success"}, f.activity.actions())
}

func TestCallbackUnknownTransaction(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.HandleCallback(context.Background(), "txn_deadbeef", models.PaymentStatusSuccess)

	require.ErrorIs(t, err, ErrTransactionNotFound)
	assert.Empty(t, f.activity.entries)
}

func TestCallbackMissingTransactionID(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.HandleCallback(context.Background(), "", models.PaymentStatusSuccess)

	require.ErrorIs(t, err, ErrMissingTransactionID)
}

func TestCallbackCancelledOutcome(t *testing.T) {
	f := newPaymentFixture(t)

	initiation, err := f.svc.Initiate(context.Background(), "user-1", "", "")
	require.NoError(t, err)

	redirect, err := f.svc.HandleCallback(context.Background(), initiation.TransactionID, models.PaymentStatusCancelled)

	require.NoError(t, err)
	assert.Contains(t, redirect.Location, "payment_status=cancelled")
	assert.Equal(t, models.PaymentStatusCancelled, f.payments.byTxn[initiation.TransactionID].Status)
	assert.Equal(t, []string{models.ActionPaymentInitiated, "payment_cancelled"}, f.activity.actions())
}
