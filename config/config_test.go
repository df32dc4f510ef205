package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripwise/models"
)

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tripwise.yaml")
	yml := `
port: ":7000"
mongo:
  database: trips_test
llm:
  timeout: 12s
  openai:
    model: gpt-4o-mini
    base_url: http://localhost:1234/v1
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "9090")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("LLM_TIMEOUT", "")
	t.Setenv("ANALYZE_BUDGET", "")
	t.Setenv("MONGO_DB", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, _, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Port, "env wins over file")
	assert.Equal(t, "trips_test", cfg.MongoDB)
	assert.Equal(t, 12*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 48*time.Second, cfg.AnalyzeBudget, "budget derives from the provider timeout")
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, "http://localhost:1234/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, 4096, cfg.OpenAI.MaxTokens, "unset file values keep defaults")
	assert.Equal(t, "dev-secret-key", cfg.JWTSecret)

	keys := cfg.DefaultKeys()
	assert.Equal(t, "sk-env", keys[models.ProviderOpenAI])
	assert.Empty(t, keys[models.ProviderGemini])
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	t.Setenv("LLM_TIMEOUT", "soon")
	_, _, err := Load("")
	assert.Error(t, err)
}

func TestValidateRequiresSecretInProduction(t *testing.T) {
	cfg := Default()
	cfg.Env = "production"
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "s3cret"
	assert.NoError(t, cfg.Validate())
}

func TestAnalyzeBudgetOverride(t *testing.T) {
	t.Setenv("LLM_TIMEOUT", "")
	t.Setenv("ANALYZE_BUDGET", "75s")
	cfg, _, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 75*time.Second, cfg.AnalyzeBudget)

	t.Setenv("ANALYZE_BUDGET", "-1s")
	_, _, err = Load("")
	assert.Error(t, err)
}
