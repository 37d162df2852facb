package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.APIPort)
	assert.Equal(t, "development", cfg.APIEnvironment)
	assert.Equal(t, 24, cfg.JWTExpirationHours)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 60, cfg.RateLimitRequestsPerMinute)
	assert.Equal(t, "openai", cfg.AIProvider)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, "https://api.pandadoc.com", cfg.PandaDocBaseURL)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("JWT_EXPIRATION_HOURS", "72")
	t.Setenv("AI_PROVIDER", "ollama")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.docuforge.io, https://admin.docuforge.io")

	cfg := Load()

	assert.Equal(t, "9090", cfg.APIPort)
	assert.Equal(t, 72, cfg.JWTExpirationHours)
	assert.Equal(t, "ollama", cfg.AIProvider)
	assert.Equal(t, []string{"https://app.docuforge.io", "https://admin.docuforge.io"}, cfg.CORSAllowedOrigins)
}

func TestLoadIgnoresMalformedInt(t *testing.T) {
	t.Setenv("JWT_EXPIRATION_HOURS", "soon")

	cfg := Load()

	assert.Equal(t, 24, cfg.JWTExpirationHours)
}
