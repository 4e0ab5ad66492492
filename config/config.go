package config

import (
	"fmt"
	"os"
)

type Config struct {
	Port        string
	Environment string
	BaseURL     string // public origin, used for success/cancel and reset links

	MongoURI string
	MongoDB  string
	RedisURL string

	JWTSecret string

	StripeSecretKey        string
	StripeWebhookSecret    string
	StripeUKShippingRateID string
	StripeIntlShipRateID   string

	PayPalClientID     string
	PayPalClientSecret string
	PayPalBaseURL      string // sandbox vs live

	SanityProjectID  string
	SanityDataset    string
	SanityAPIVersion string
	SanityToken      string // write token, needed for mutations

	ResendAPIKey string
	EmailFrom    string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),

		MongoURI: os.Getenv("MONGODB_URI"),
		MongoDB:  getEnv("MONGODB_DB", "jogiloran"),
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		StripeSecretKey:        os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret:    os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripeUKShippingRateID: os.Getenv("STRIPE_UK_SHIPPING_RATE_ID"),
		StripeIntlShipRateID:   os.Getenv("STRIPE_INTERNATIONAL_SHIPPING_RATE_ID"),

		PayPalClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
		PayPalBaseURL:      getEnv("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),

		SanityProjectID:  os.Getenv("SANITY_PROJECT_ID"),
		SanityDataset:    getEnv("SANITY_DATASET", "production"),
		SanityAPIVersion: getEnv("SANITY_API_VERSION", "2025-08-14"),
		SanityToken:      os.Getenv("SANITY_API_TOKEN"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		EmailFrom:    getEnv("EMAIL_FROM", "Axion Leather <sales@samuelobior.com>"),
	}

	if cfg.MongoURI == "" || cfg.JWTSecret == "" ||
		cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" ||
		cfg.PayPalClientID == "" || cfg.PayPalClientSecret == "" ||
		cfg.SanityProjectID == "" {
		return nil, fmt.Errorf("missing required environment variables")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
