package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	TokenSecret string        // Required: HMAC secret for session tokens
	Issuer      string        // Optional: issuer claim for tokens (default: suggestbox)
	SessionTTL  time.Duration // Optional: session token lifetime (default: 24h)

	CookieSecure   bool     // Optional: Secure attribute on the session cookie (default: true)
	CookieSameSite string   // Optional: SameSite policy (lax, strict, none) (default: lax)
	CookieDomain   string   // Optional: cookie Domain attribute
	AllowedOrigins []string // Optional: CORS origins (default: http://localhost:5173)

	DatabaseFile string // Optional: path to SQLite database file (default: ./suggestbox.db)
	PepperFile   string // Optional: path to pepper file for password hashing (default: ./pepper)

	// Default admin seeded when the user table is empty.
	AdminName     string
	AdminEmail    string
	AdminPassword string

	// SMTP relay; when Host is empty, mail is written to the log instead.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// S3-compatible blob store; when Bucket is empty, attachments land in
	// BlobDir on disk instead.
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
	BlobDir        string

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Recovery-state sweep interval (default: 15m)
}

func LoadConfig() Config {
	// A missing .env file is fine; real deployments set the environment.
	_ = godotenv.Load()

	return Config{
		TokenSecret: os.Getenv("AUTH_TOKEN_SECRET"),
		Issuer:      getEnvOrDefault("AUTH_ISSUER", "suggestbox"),
		SessionTTL:  getEnvDurationOrDefault("SESSION_TTL", 24*time.Hour),

		CookieSecure:   getEnvBoolOrDefault("COOKIE_SECURE", true),
		CookieSameSite: getEnvOrDefault("COOKIE_SAMESITE", "lax"),
		CookieDomain:   os.Getenv("COOKIE_DOMAIN"),
		AllowedOrigins: splitList(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:5173")),

		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "suggestbox.db"),
		PepperFile:   getEnvOrDefault("PEPPER_FILE", "pepper"),

		AdminName:     getEnvOrDefault("ADMIN_NAME", "Administrator"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnvOrDefault("SMTP_FROM", "no-reply@suggestbox.local"),

		S3Bucket:       os.Getenv("S3_BUCKET"),
		S3Region:       getEnvOrDefault("S3_REGION", "us-east-1"),
		S3BaseEndpoint: os.Getenv("S3_BASE_ENDPOINT"),
		S3AccessKey:    os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:    os.Getenv("S3_SECRET_KEY"),
		BlobDir:        getEnvOrDefault("BLOB_DIR", "blobs"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 15*time.Minute),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimRight(strings.TrimSpace(part), "/"); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
