package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendDynamo    = "dynamo"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort      string
	AppEnv       string
	StoreBackend string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	Collections    Collections

	FirestoreCredentialsFile string
	FirestoreProjectID       string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	OTPTTL    time.Duration
	OTPLength int

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	SuperAdminEmails []string
	AllowedOrigins   []string // CORS allowed origins
	RateLimitRPS     int
	RateLimitBurst   int
}

// Collections names the store location of each entity: a DynamoDB table or
// a Firestore collection, depending on the backend.
type Collections struct {
	OTPs       string
	Admins     string
	Librarians string
	Users      string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:      getEnv("APP_PORT", "3000"),
		AppEnv:       getEnv("APP_ENV", "development"),
		StoreBackend: getEnv("STORE_BACKEND", BackendDynamo),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		Collections: Collections{
			OTPs:       getEnv("COLLECTION_OTPS", "otps"),
			Admins:     getEnv("COLLECTION_ADMINS", "admins"),
			Librarians: getEnv("COLLECTION_LIBRARIANS", "librarians"),
			Users:      getEnv("COLLECTION_USERS", "users"),
		},

		FirestoreCredentialsFile: getEnv("FIRESTORE_CREDENTIALS_FILE", ""),
		FirestoreProjectID:       getEnv("FIRESTORE_PROJECT_ID", ""),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		OTPTTL:    time.Duration(getEnvInt("OTP_TTL_SECONDS", 300)) * time.Second,
		OTPLength: getEnvInt("OTP_LENGTH", 6),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,

		SuperAdminEmails: splitList(getEnv("SUPER_ADMIN_EMAILS", "")),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "*")),
		RateLimitRPS:     getEnvInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst:   getEnvInt("RATE_LIMIT_BURST", 10),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
