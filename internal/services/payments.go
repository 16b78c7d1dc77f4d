package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rahatc/paywords/internal/audit"
	"github.com/rahatc/paywords/internal/config"
	"github.com/rahatc/paywords/internal/gateway"
	"github.com/rahatc/paywords/internal/models"
	"github.com/rahatc/paywords/internal/repository"
	"github.com/rahatc/paywords/internal/utils"
)

type PaymentService interface {
	// Initiate creates a pending transaction and asks the gateway for a
	// payment URL. The transaction stays pending until a callback settles
	// it; a gateway refusal leaves the row pending with the raw response
	// attached.
	Initiate(ctx context.Context, userID, customerName, customerEmail string) (*models.PaymentInitiation, error)
	// HandleCallback records the outcome the gateway asserts for a
	// transaction. Replays of the same outcome are harmless no-ops;
	// conflicting replays are refused.
	HandleCallback(ctx context.Context, transactionID, outcome string) (*models.CallbackRedirect, error)
	ListTransactions(ctx context.Context, userID string) ([]models.PaymentTransaction, error)
}

type paymentService struct {
	payments repository.PaymentRepository
	recorder *audit.Recorder
	gateway  gateway.Client
	cfg      *config.Config
	logger   *utils.Logger
}

func NewPaymentService(
	payments repository.PaymentRepository,
	recorder *audit.Recorder,
	gw gateway.Client,
	cfg *config.Config,
	logger *utils.Logger,
) PaymentService {
	return &paymentService{
		payments: payments,
		recorder: recorder,
		gateway:  gw,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *paymentService) Initiate(ctx context.Context, userID, customerName, customerEmail string) (*models.PaymentInitiation, error) {
	transactionID := utils.GenerateTransactionID()

	payment := &models.PaymentTransaction{
		ID:            utils.GenerateID(),
		UserID:        userID,
		TransactionID: transactionID,
		Amount:        s.cfg.ServicePrice,
		Status:        models.PaymentStatusPending,
		CreatedAt:     time.Now(),
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment transaction: %w", err)
	}

	s.recorder.Record(ctx, &userID, models.ActionPaymentInitiated, models.Metadata{
		"transaction_id": transactionID,
		"amount":         payment.Amount,
	})

	result, err := s.gateway.Initiate(ctx, &gateway.InitiationRequest{
		TransactionID: transactionID,
		Amount:        payment.Amount,
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
	})
	if err != nil {
		// Timeout or transport failure: no response to store, the row
		// stays pending for diagnosis.
		s.logger.Error("Gateway initiation failed", "transaction_id", transactionID, "error", err)
		return nil, &GatewayError{Message: err.Error()}
	}

	if err := s.payments.AttachGatewayResponse(ctx, transactionID, result.RawResponse); err != nil {
		s.logger.Error("Failed to store gateway response", "transaction_id", transactionID, "error", err)
	}

	if !result.Accepted {
		s.logger.Warn("Gateway refused initiation", "transaction_id", transactionID, "message", result.ErrorMessage)
		return nil, &GatewayError{Message: result.ErrorMessage}
	}

	s.logger.Info("Payment initiated", "transaction_id", transactionID, "user_id", userID)

	return &models.PaymentInitiation{
		PaymentURL:    result.PaymentURL,
		TransactionID: transactionID,
	}, nil
}

func (s *paymentService) HandleCallback(ctx context.Context, transactionID, outcome string) (*models.CallbackRedirect, error) {
	if transactionID == "" {
		return nil, ErrMissingTransactionID
	}

	payment, err := s.payments.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up transaction: %w", err)
	}
	if payment == nil {
		return nil, ErrTransactionNotFound
	}

	settle, err := s.payments.Settle(ctx, transactionID, outcome)
	if err != nil {
		return nil, err
	}

	switch settle {
	case repository.Settled:
		s.recorder.Record(ctx, &payment.UserID, models.ActionPaymentPrefix+outcome, models.Metadata{
			"transaction_id": transactionID,
			"amount":         payment.Amount,
		})
		s.logger.Info("Payment settled", "transaction_id", transactionID, "outcome", outcome)
	case repository.AlreadySettled:
		// Gateway retry; already recorded, nothing more to log.
	case repository.OutcomeConflict:
		s.logger.Warn("Conflicting callback replay",
			"transaction_id", transactionID,
			"current", payment.Status,
			"requested", outcome)
		return nil, &OutcomeConflictError{
			TransactionID: transactionID,
			Current:       payment.Status,
			Requested:     outcome,
		}
	}

	return &models.CallbackRedirect{
		Location:      fmt.Sprintf("%s?payment_status=%s&transaction_id=%s", s.cfg.DashboardURL, outcome, transactionID),
		Outcome:       outcome,
		TransactionID: transactionID,
	}, nil
}

func (s *paymentService) ListTransactions(ctx context.Context, userID string) ([]models.PaymentTransaction, error) {
	return s.payments.ListByUser(ctx, userID)
}
