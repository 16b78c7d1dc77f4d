package services

import (
	"errors"
	"fmt"
)

// ErrPaymentRequired rejects a submission from a principal with no
// successful payment. It is a business-rule rejection, not a failure.
var ErrPaymentRequired = errors.New("payment required before uploading files")

// ErrMissingTransactionID rejects a gateway callback that carries no
// transaction identifier.
var ErrMissingTransactionID = errors.New("transaction ID missing")

// ErrTransactionNotFound rejects a callback whose transaction identifier
// matches no known transaction.
var ErrTransactionNotFound = errors.New("invalid transaction ID")

// ErrUploadNotFound is returned when a requested upload does not exist or
// belongs to someone else.
var ErrUploadNotFound = errors.New("upload not found")

// ValidationKind discriminates input rejections at upload intake.
type ValidationKind string

const (
	KindUnsupportedFormat ValidationKind = "unsupported_format"
	KindTooLarge          ValidationKind = "too_large"
)

// ValidationError rejects user input before any side effect happens.
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// GatewayError reports that the external payment gateway refused or failed
// an initiation. The transaction row is already persisted as pending.
type GatewayError struct {
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway error: %s", e.Message)
}

// OutcomeConflictError flags a replayed callback that tries to overwrite an
// already-settled transaction with a different terminal outcome.
type OutcomeConflictError struct {
	TransactionID string
	Current       string
	Requested     string
}

func (e *OutcomeConflictError) Error() string {
	return fmt.Sprintf("transaction %s already settled as %s, refusing %s",
		e.TransactionID, e.Current, e.Requested)
}
