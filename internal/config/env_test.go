package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSecrets(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secrets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SECRETS_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	for _, k := range []string{"CONSULTATION_EMAIL", "OUTREACH_EMAIL", "DATABASE_URL", "GEMINI_TIMEOUT", "PORT", "LEMON_SQUEEZY_STORE_URL"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, DefaultConsultationEmail, cfg.ConsultationEmail)
	assert.Equal(t, 60*time.Second, cfg.GeminiTimeout)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.DatabaseURL)
	assert.False(t, cfg.Validate()["database_url"])
	assert.False(t, cfg.Validate()["checkout_url"])
}

func TestLoadConfigEnvBeatsSecrets(t *testing.T) {
	t.Setenv("SECRETS_FILE", writeSecrets(t, "DATABASE_URL: postgres://from-secrets\nCONSULTATION_EMAIL: team@example.com\n"))
	t.Setenv("DATABASE_URL", "postgres://from-env")
	t.Setenv("CONSULTATION_EMAIL", "")
	t.Setenv("OUTREACH_EMAIL", "")

	cfg := LoadConfig()

	assert.Equal(t, "postgres://from-env", cfg.DatabaseURL)
	assert.Equal(t, "team@example.com", cfg.ConsultationEmail)
}

func TestLoadConfigAliasOrder(t *testing.T) {
	t.Setenv("SECRETS_FILE", writeSecrets(t, "SUPABASE_ANON_KEY: anon-from-secrets\n"))
	t.Setenv("SUPABASE_KEY", "")
	t.Setenv("SUPABASE_ANON_KEY", "")
	t.Setenv("NEXT_PUBLIC_SUPABASE_ANON_KEY", "public-anon")

	cfg := LoadConfig()

	// any env alias wins over the secrets file
	assert.Equal(t, "public-anon", cfg.SupabaseKey)
}

func TestValidateSupabaseProject(t *testing.T) {
	cfg := &Config{SupabaseURL: "https://abc.supabase.co"}
	assert.False(t, cfg.Validate()["supabase_project"])

	cfg.SupabaseKey = "anon"
	assert.True(t, cfg.Validate()["supabase_project"])
	assert.False(t, cfg.Validate()["supabase_auth"])
}

func TestLoadConfigBadTimeoutFallsBack(t *testing.T) {
	t.Setenv("SECRETS_FILE", "")
	t.Setenv("GEMINI_TIMEOUT", "soon")

	cfg := LoadConfig()

	assert.Equal(t, 60*time.Second, cfg.GeminiTimeout)
}

func TestLoadSecretsNonStringValues(t *testing.T) {
	secrets, err := loadSecrets(writeSecrets(t, "GEMINI_TIMEOUT: 45\nEMPTY:\n"))
	require.NoError(t, err)

	assert.Equal(t, "45", secrets["GEMINI_TIMEOUT"])
	_, ok := secrets["EMPTY"]
	assert.False(t, ok)
}

func TestLoadSecretsMalformed(t *testing.T) {
	_, err := loadSecrets(writeSecrets(t, "- just\n- a list\n"))
	assert.Error(t, err)
}
