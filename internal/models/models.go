package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Upload statuses. An upload is created as processing and moves to exactly
// one terminal status when the word-count job finishes.
const (
	UploadStatusProcessing = "processing"
	UploadStatusCompleted  = "completed"
	UploadStatusFailed     = "failed"
)

// PaymentTransaction statuses. A transaction starts pending; the gateway
// callback settles it into one terminal status.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSuccess   = "success"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
)

// Activity log action tags.
const (
	ActionFileUploaded         = "file_uploaded"
	ActionFileProcessed        = "file_processed"
	ActionFileProcessingFailed = "file_processing_failed"
	ActionPaymentInitiated     = "payment_initiated"
	ActionPaymentPrefix        = "payment_" // payment_success, payment_failed, payment_cancelled
)

type Upload struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	StorageKey   string    `json:"-" db:"storage_key"`
	Filename     string    `json:"filename" db:"filename"`
	Status       string    `json:"status" db:"status"`
	WordCount    *int      `json:"word_count" db:"word_count"`
	ErrorMessage *string   `json:"error_message,omitempty" db:"error_message"`
	UploadTime   time.Time `json:"upload_time" db:"upload_time"`
}

type PaymentTransaction struct {
	ID              string    `json:"id" db:"id"`
	UserID          string    `json:"user_id" db:"user_id"`
	TransactionID   string    `json:"transaction_id" db:"transaction_id"`
	Amount          float64   `json:"amount" db:"amount"`
	Status          string    `json:"status" db:"status"`
	GatewayResponse []byte    `json:"gateway_response,omitempty" db:"gateway_response"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Metadata is the structured payload attached to an activity entry. Values
// are limited by convention to strings, numbers and nested metadata so the
// trail stays machine-verifiable.
type Metadata map[string]any

// Value stores metadata as a JSON text column.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *Metadata) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported metadata column type %T", src)
	}
}

type ActivityLogEntry struct {
	ID        string    `json:"id" db:"id"`
	UserID    *string   `json:"user_id" db:"user_id"`
	Action    string    `json:"action" db:"action"`
	Metadata  Metadata  `json:"metadata" db:"metadata"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// PaymentInitiation is returned to the caller after a successful gateway
// initiation; the user completes payment at PaymentURL.
type PaymentInitiation struct {
	PaymentURL    string `json:"payment_url"`
	TransactionID string `json:"transaction_id"`
}

// CallbackRedirect tells the HTTP layer where to send the user after a
// gateway callback has been recorded.
type CallbackRedirect struct {
	Location      string
	Outcome       string
	TransactionID string
}
