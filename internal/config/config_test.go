package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "GEMINI_API_KEY", "AI_MODEL", "AI_TEMPERATURE", "AI_MAX_TOKENS",
		"MONGODB_URI", "DATABASE_NAME", "ALLOWED_ORIGINS", "LOG_MODE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 2048, cfg.MaxTokens)
	assert.Empty(t, cfg.MongoURI)
	assert.Equal(t, "medlama", cfg.DatabaseName)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "development", cfg.LogMode)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("AI_TEMPERATURE", "0.2")
	t.Setenv("AI_MAX_TOKENS", "512")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "test-key", cfg.GeminiAPIKey)
	assert.Equal(t, 0.2, cfg.Temperature)
	assert.Equal(t, 512, cfg.MaxTokens)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("AI_TEMPERATURE", "warm")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("AI_TEMPERATURE", "0.7")
	t.Setenv("AI_MAX_TOKENS", "many")
	_, err = Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{GeminiAPIKey: "key", Temperature: 0.7, MaxTokens: 2048}, false},
		{"missing api key", Config{Temperature: 0.7, MaxTokens: 2048}, true},
		{"upper temperature bound accepted", Config{GeminiAPIKey: "key", Temperature: 2.0, MaxTokens: 2048}, false},
		{"temperature too high", Config{GeminiAPIKey: "key", Temperature: 2.1, MaxTokens: 2048}, true},
		{"negative temperature", Config{GeminiAPIKey: "key", Temperature: -0.1, MaxTokens: 2048}, true},
		{"zero max tokens", Config{GeminiAPIKey: "key", Temperature: 0.7}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
