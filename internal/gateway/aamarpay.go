package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rahatc/paywords/internal/config"
	"github.com/rahatc/paywords/internal/utils"
)

// InitiationRequest carries the per-transaction fields; store credentials and
// redirect targets come from configuration.
type InitiationRequest struct {
	TransactionID string
	Amount        float64
	CustomerName  string
	CustomerEmail string
}

// InitiationResult is the gateway's answer to an initiation attempt.
// RawResponse is always set when the gateway answered at all, so the ledger
// can persist it regardless of outcome.
type InitiationResult struct {
	Accepted     bool
	PaymentURL   string
	ErrorMessage string
	RawResponse  []byte
}

type Client interface {
	Initiate(ctx context.Context, req *InitiationRequest) (*InitiationResult, error)
}

type aamarPayClient struct {
	cfg    *config.Config
	logger *utils.Logger
	client *http.Client
}

type aamarPayRequest struct {
	StoreID      string `json:"store_id"`
	SignatureKey string `json:"signature_key"`
	TranID       string `json:"tran_id"`
	SuccessURL   string `json:"success_url"`
	FailURL      string `json:"fail_url"`
	CancelURL    string `json:"cancel_url"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	Desc         string `json:"desc"`
	CusName      string `json:"cus_name"`
	CusEmail     string `json:"cus_email"`
	CusPhone     string `json:"cus_phone"`
	CusAdd1      string `json:"cus_add1"`
	CusCity      string `json:"cus_city"`
	CusCountry   string `json:"cus_country"`
	CusPostcode  string `json:"cus_postcode"`
	Type         string `json:"type"`
}

type aamarPayResponse struct {
	Result     string `json:"result"`
	PaymentURL string `json:"payment_url"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

func NewAamarPayClient(cfg *config.Config, logger *utils.Logger) Client {
	return &aamarPayClient{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{
			// The gateway specifies no timeout of its own; a hung initiation
			// must not hang the request handler.
			Timeout: 30 * time.Second,
		},
	}
}

func (c *aamarPayClient) Initiate(ctx context.Context, req *InitiationRequest) (*InitiationResult, error) {
	name := req.CustomerName
	if name == "" {
		name = "Customer"
	}
	email := req.CustomerEmail
	if email == "" {
		email = "test@example.com"
	}

	reqBody := aamarPayRequest{
		StoreID:      c.cfg.GatewayStoreID,
		SignatureKey: c.cfg.GatewaySignatureKey,
		TranID:       req.TransactionID,
		SuccessURL:   c.cfg.GatewaySuccessURL,
		FailURL:      c.cfg.GatewayFailURL,
		CancelURL:    c.cfg.GatewayCancelURL,
		Amount:       fmt.Sprintf("%.2f", req.Amount),
		Currency:     c.cfg.Currency,
		Desc:         "Payment for file upload service",
		CusName:      name,
		CusEmail:     email,
		CusPhone:     "01800000000",
		CusAdd1:      "Dhaka",
		CusCity:      "Dhaka",
		CusCountry:   "Bangladesh",
		CusPostcode:  "1000",
		Type:         "json",
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GatewayEndpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach payment gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	var gwResp aamarPayResponse
	if err := json.Unmarshal(body, &gwResp); err != nil {
		c.logger.Error("Unparseable gateway response", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("failed to parse gateway response: %w", err)
	}

	result := &InitiationResult{RawResponse: body}

	if gwResp.Result == "true" {
		result.Accepted = true
		result.PaymentURL = gwResp.PaymentURL
		return result, nil
	}

	msg := gwResp.Error
	if msg == "" {
		msg = gwResp.Message
	}
	if msg == "" {
		msg = "Unknown error"
	}
	result.ErrorMessage = msg

	return result, nil
}
