package config

import (
	"os"
	"strconv"
	"time"
)

type ProviderConfig struct {
	BaseURL string
	APIKey  string
	Secret  string
}

type Config struct {
	ServerPort    string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Email     ProviderConfig
	EmailFrom string
	SMS       ProviderConfig
	SMSSender string
	Chat      ProviderConfig

	ProviderTimeout time.Duration

	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration

	BulkRatePerMinute int
	BulkWorkers       int

	ReconcileInterval time.Duration
	StuckThreshold    time.Duration
}

func LoadConfig() *Config {
	// godotenv.Load("../../.env")

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		Email: ProviderConfig{
			BaseURL: getEnv("MAILPOST_BASE_URL", "https://api.mailpost.io"),
			APIKey:  getEnv("MAILPOST_API_KEY", ""),
			Secret:  getEnv("MAILPOST_WEBHOOK_SECRET", ""),
		},
		EmailFrom: getEnv("EMAIL_FROM", "noreply@campushq.io"),
		SMS: ProviderConfig{
			BaseURL: getEnv("SMSGATE_BASE_URL", "https://api.smsgate.io"),
			APIKey:  getEnv("SMSGATE_API_KEY", ""),
			Secret:  getEnv("SMSGATE_WEBHOOK_SECRET", ""),
		},
		SMSSender: getEnv("SMS_SENDER", "CAMPUSHQ"),
		Chat: ProviderConfig{
			BaseURL: getEnv("CHATBIZ_BASE_URL", "https://api.chatbiz.io"),
			APIKey:  getEnv("CHATBIZ_API_KEY", ""),
			Secret:  getEnv("CHATBIZ_WEBHOOK_SECRET", ""),
		},

		ProviderTimeout: getDurationEnv("PROVIDER_TIMEOUT", 10*time.Second),

		RetryMaxAttempts: getIntEnv("RETRY_MAX_ATTEMPTS", 3),
		RetryBaseDelay:   getDurationEnv("RETRY_BASE_DELAY", 500*time.Millisecond),
		RetryMaxDelay:    getDurationEnv("RETRY_MAX_DELAY", 30*time.Second),

		BulkRatePerMinute: getIntEnv("BULK_RATE_PER_MINUTE", 600),
		BulkWorkers:       getIntEnv("BULK_WORKERS", 10),

		ReconcileInterval: getDurationEnv("RECONCILE_INTERVAL", 1*time.Minute),
		StuckThreshold:    getDurationEnv("STUCK_THRESHOLD", 10*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
