package config

import (
	"os"
	"strconv"
	"time"
)

// CheckoutConfig controls how checkout sessions are created against the
// payment processor.
type CheckoutConfig struct {
	Currency         string
	SuccessURL       string
	CancelURL        string
	FeeSplitEnabled  bool
	PlatformFeeCents int64
	RequestTimeout   time.Duration
}

func LoadCheckoutConfig() *CheckoutConfig {
	return &CheckoutConfig{
		Currency:         getEnv("CHECKOUT_CURRENCY", "usd"),
		SuccessURL:       getEnv("CHECKOUT_SUCCESS_URL", "http://127.0.0.1:8080/payment_success?listing_id={LISTING_ID}"),
		CancelURL:        getEnv("CHECKOUT_CANCEL_URL", "http://127.0.0.1:8080/payment_cancel"),
		FeeSplitEnabled:  getEnvAsBool("CHECKOUT_FEE_SPLIT_ENABLED", false),
		PlatformFeeCents: int64(getEnvAsInt("CHECKOUT_PLATFORM_FEE_CENTS", 123)),
		RequestTimeout:   getEnvAsDuration("CHECKOUT_REQUEST_TIMEOUT", 15*time.Second),
	}
}

// ResetConfig controls password reset token issuance and the abuse limiter
// guarding the recovery endpoints.
type ResetConfig struct {
	TokenTTL        time.Duration
	RateLimitMax    int
	RateLimitWindow time.Duration
	LinkBaseURL     string
}

func LoadResetConfig() *ResetConfig {
	return &ResetConfig{
		TokenTTL:        getEnvAsDuration("RESET_TOKEN_TTL", 30*time.Minute),
		RateLimitMax:    getEnvAsInt("RESET_RATE_LIMIT_MAX", 5),
		RateLimitWindow: getEnvAsDuration("RESET_RATE_LIMIT_WINDOW", time.Minute),
		LinkBaseURL:     getEnv("RESET_LINK_BASE_URL", "http://127.0.0.1:8080"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}
