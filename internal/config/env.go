package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultConsultationEmail is the public outreach address shown when nothing is configured.
const DefaultConsultationEmail = "outreach@nexsupply.net"

type Config struct {
	AppEnv string
	Port   string

	AIAPIKey      string
	GenModel      string
	GeminiTimeout time.Duration

	DatabaseURL       string
	SupabaseURL       string
	SupabaseKey       string
	SupabaseJWTSecret string

	LemonSqueezyStoreURL string
	ConsultationEmail    string

	SendGridAPIKey    string
	SendGridFromEmail string

	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string

	RedisURL       string
	AllowedOrigins []string
}

// LoadConfig loads .env, then the optional secrets file, and resolves every
// setting as: environment variable, then secrets file, then fallback.
func LoadConfig() *Config {

	_ = godotenv.Load()

	secrets, err := loadSecrets(getEnv("SECRETS_FILE", ".secrets.yaml"))
	if err != nil {
		log.Printf("WARN: secrets file ignored: %v", err)
	}
	r := resolver{secrets: secrets}

	cfg := &Config{
		AppEnv:        r.get("dev", "APP_ENV"),
		Port:          r.get("8080", "PORT"),
		AIAPIKey:      r.get("", "GEMINI_API_KEY"),
		GenModel:      r.get("gemini-1.5-flash", "GEN_MODEL"),
		GeminiTimeout: time.Duration(r.getInt(60, "GEMINI_TIMEOUT")) * time.Second,

		DatabaseURL:       r.get("", "DATABASE_URL"),
		SupabaseURL:       r.get("", "SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL"),
		SupabaseKey:       r.get("", "SUPABASE_KEY", "SUPABASE_ANON_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY"),
		SupabaseJWTSecret: r.get("", "SUPABASE_JWT_SECRET"),

		LemonSqueezyStoreURL: r.get("", "LEMON_SQUEEZY_STORE_URL"),
		ConsultationEmail:    r.get(DefaultConsultationEmail, "CONSULTATION_EMAIL", "OUTREACH_EMAIL"),

		SendGridAPIKey:    r.get("", "SENDGRID_API_KEY"),
		SendGridFromEmail: r.get("", "SENDGRID_FROM_EMAIL"),

		AwsAccessKey: r.get("", "AWS_ACCESS_KEY"),
		AwsSecretKey: r.get("", "AWS_SECRET_KEY"),
		AwsRegion:    r.get("us-east-2", "AWS_REGION"),
		BucketName:   r.get("", "BUCKET_NAME"),

		RedisURL:       r.get("", "REDIS_URL"),
		AllowedOrigins: splitList(r.get("http://localhost:5173,http://localhost:8080", "ALLOWED_ORIGINS")),
	}

	return cfg
}

// Validate reports which optional integrations have the settings they need.
// Nothing here is fatal: an unconfigured integration degrades to a no-op.
func (c *Config) Validate() map[string]bool {
	return map[string]bool{
		"gemini_api_key":   c.AIAPIKey != "",
		"database_url":     c.DatabaseURL != "",
		"supabase_auth":    c.SupabaseJWTSecret != "",
		"supabase_project": c.SupabaseURL != "" && c.SupabaseKey != "",
		"checkout_url":     c.LemonSqueezyStoreURL != "",
		"mailer":           c.SendGridAPIKey != "" && c.SendGridFromEmail != "",
		"object_storage":   c.AwsAccessKey != "" && c.AwsSecretKey != "" && c.BucketName != "",
		"redis_sessions":   c.RedisURL != "",
	}
}

type resolver struct {
	secrets map[string]string
}

// get returns the first key found in the environment, then the first found in
// the secrets file, then fallback.
func (r resolver) get(fallback string, keys ...string) string {
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	for _, k := range keys {
		if v := strings.TrimSpace(r.secrets[k]); v != "" {
			return v
		}
	}
	return fallback
}

func (r resolver) getInt(def int, keys ...string) int {
	v := r.get("", keys...)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("WARN: %s=%q not a positive int, using default %d", keys[0], v, def)
		return def
	}
	return n
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
