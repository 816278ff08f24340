package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port     string
	MongoURI string
	MongoDB  string

	JWTSecret    string
	TokenTTLDays int

	ResetMaxAttempts int

	GoogleClientID     string
	GoogleClientSecret string
	FacebookAppID      string
	FacebookAppSecret  string
	PublicBaseURL      string
	FrontendURL        string
	StateSecret        string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	RedisAddr       string
	RateLimitPerMin int

	RabbitURL string
}

func Load() Config {
	return Config{
		Port:     getenv("APP_PORT", "8080"),
		MongoURI: getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getenv("MONGO_DB", "examify"),

		JWTSecret:    getenv("JWT_SECRET", "default_secret_key"),
		TokenTTLDays: atoi(getenv("TOKEN_TTL_DAYS", "30")),

		ResetMaxAttempts: atoi(getenv("RESET_MAX_ATTEMPTS", "3")),

		GoogleClientID:     getenv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getenv("GOOGLE_CLIENT_SECRET", ""),
		FacebookAppID:      getenv("FACEBOOK_APP_ID", ""),
		FacebookAppSecret:  getenv("FACEBOOK_APP_SECRET", ""),
		PublicBaseURL:      getenv("PUBLIC_BASE_URL", "http://localhost:8080"),
		FrontendURL:        getenv("FRONTEND_URL", "http://localhost:5173"),
		StateSecret:        getenv("STATE_SECRET", "examify_state_secret"),

		SMTPHost: getenv("SMTP_HOST", ""),
		SMTPPort: atoi(getenv("SMTP_PORT", "587")),
		SMTPUser: getenv("SMTP_USER", ""),
		SMTPPass: getenv("SMTP_PASS", ""),
		SMTPFrom: getenv("SMTP_FROM", "no-reply@examify.local"),

		RedisAddr:       getenv("REDIS_ADDR", ""),
		RateLimitPerMin: atoi(getenv("RATE_LIMIT_PER_MIN", "30")),

		RabbitURL: getenv("RABBIT_URL", ""),
	}
}

func atoi(s string) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return 0
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
