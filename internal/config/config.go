package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	DatabaseURL string

	UseMemoryQueue bool
	WorkerCount    int

	// WhatsApp Cloud API
	WhatsAppToken         string
	WhatsAppPhoneNumberID string
	WhatsAppVerifyToken   string
	WhatsAppAppSecret     string
	WhatsAppAPIBaseURL    string
	WhatsAppSendTimeout   time.Duration

	// Booking behavior
	BookingEnforceAvailability bool
	PracticeName               string

	AdminJWTSecret string
	AdminJWTTTL    time.Duration

	CORSAllowedOrigins   []string
	WebhookRatePerSecond float64
	WebhookBurst         int

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	TurnQueueURL        string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// SendGrid Email Configuration
	SendGridAPIKey     string
	SendGridFromEmail  string
	SendGridFromName   string
	BookingNotifyEmail string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		UseMemoryQueue: getEnvAsBool("USE_MEMORY_QUEUE", false),
		WorkerCount:    getEnvAsInt("WORKER_COUNT", 2),

		WhatsAppToken:         getEnv("WHATSAPP_TOKEN", ""),
		WhatsAppPhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		WhatsAppVerifyToken:   getEnv("WHATSAPP_VERIFY_TOKEN", ""),
		WhatsAppAppSecret:     getEnv("WHATSAPP_APP_SECRET", ""),
		WhatsAppAPIBaseURL:    getEnv("WHATSAPP_API_BASE_URL", "https://graph.facebook.com/v17.0"),
		WhatsAppSendTimeout:   getEnvAsDuration("WHATSAPP_SEND_TIMEOUT", 10*time.Second),

		BookingEnforceAvailability: getEnvAsBool("BOOKING_ENFORCE_AVAILABILITY", false),
		PracticeName:               getEnv("PRACTICE_NAME", "Dental Care Bot"),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		AdminJWTTTL:    getEnvAsDuration("ADMIN_JWT_TTL", 12*time.Hour),

		CORSAllowedOrigins:   getEnvAsList("CORS_ALLOWED_ORIGINS"),
		WebhookRatePerSecond: getEnvAsFloat("WEBHOOK_RATE_PER_SECOND", 5),
		WebhookBurst:         getEnvAsInt("WEBHOOK_BURST", 10),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		TurnQueueURL:        getEnv("TURN_QUEUE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		SendGridAPIKey:     getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail:  getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:   getEnv("SENDGRID_FROM_NAME", "Dental Care Bot"),
		BookingNotifyEmail: getEnv("BOOKING_NOTIFY_EMAIL", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList retrieves a comma-separated environment variable as a slice
func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
