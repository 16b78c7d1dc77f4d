package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port     string
	LogLevel string

	// SQLite
	DatabaseFile string

	// S3
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3UseSSL          bool

	// aamarPay
	GatewayEndpoint     string
	GatewayStoreID      string
	GatewaySignatureKey string
	GatewaySuccessURL   string
	GatewayFailURL      string
	GatewayCancelURL    string
	Currency            string

	// Price charged per payment, in Currency units
	ServicePrice float64

	// Upload limits
	MaxFileSize int64

	// Background processing
	WorkerCount int

	// Where callbacks redirect the user after settlement
	DashboardURL string
}

func Load() (*Config, error) {
	price, err := strconv.ParseFloat(getEnv("SERVICE_PRICE", "100"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVICE_PRICE: %w", err)
	}

	workers, err := strconv.Atoi(getEnv("WORKER_COUNT", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_COUNT: %w", err)
	}

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DatabaseFile:        getEnv("DATABASE_FILE", "data/paywords.db"),
		S3Endpoint:          getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKeyID:       getEnv("S3_ACCESS_KEY_ID", "minioadmin"),
		S3SecretAccessKey:   getEnv("S3_SECRET_ACCESS_KEY", "minioadmin"),
		S3BucketName:        getEnv("S3_BUCKET_NAME", "uploads"),
		S3UseSSL:            getEnv("S3_USE_SSL", "false") == "true",
		GatewayEndpoint:     getEnv("AAMARPAY_ENDPOINT", "https://sandbox.aamarpay.com/jsonpost.php"),
		GatewayStoreID:      getEnv("AAMARPAY_STORE_ID", ""),
		GatewaySignatureKey: getEnv("AAMARPAY_SIGNATURE_KEY", ""),
		GatewaySuccessURL:   getEnv("AAMARPAY_SUCCESS_URL", "http://localhost:8080/api/v1/payment/success"),
		GatewayFailURL:      getEnv("AAMARPAY_FAIL_URL", "http://localhost:8080/api/v1/payment/fail"),
		GatewayCancelURL:    getEnv("AAMARPAY_CANCEL_URL", "http://localhost:8080/api/v1/payment/cancel"),
		Currency:            getEnv("CURRENCY", "BDT"),
		ServicePrice:        price,
		MaxFileSize:         10 * 1024 * 1024,
		WorkerCount:         workers,
		DashboardURL:        getEnv("DASHBOARD_URL", "/dashboard/"),
	}

	if cfg.GatewayStoreID == "" || cfg.GatewaySignatureKey == "" {
		return nil, fmt.Errorf("AAMARPAY_STORE_ID and AAMARPAY_SIGNATURE_KEY are required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
