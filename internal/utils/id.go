package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateID returns a new entity identifier.
func GenerateID() string {
	return uuid.NewString()
}

// GenerateTransactionID returns a short unique token for the payment gateway,
// e.g. "txn_3fa85f64". The gateway echoes it back on callbacks.
func GenerateTransactionID() string {
	u := uuid.New()
	return fmt.Sprintf("txn_%x", u[:4])
}
