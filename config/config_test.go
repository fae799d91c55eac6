package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"LLM_PROVIDER", "GOOGLE_API_KEY", "GEMINI_MODEL", "HOST", "PORT", "CORS_ORIGINS",
		"MAX_FILE_SIZE_MB", "MAX_IMAGE_DIMENSION", "RATE_LIMIT_PER_MINUTE", "LOG_LEVEL", "PROMPT_FILE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, ProviderGemini, cfg.LLMProvider)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, 5, cfg.MaxFileSizeMB)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxFileSizeBytes())
	assert.Equal(t, 0, cfg.MaxImageDimension)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
	assert.Len(t, cfg.CORSOrigins, 4)
	assert.Contains(t, cfg.CORSOrigins, "http://localhost:3000")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "STUB")
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("MAX_FILE_SIZE_MB", "not-a-number")
	t.Setenv("MAX_IMAGE_DIMENSION", "1024")

	cfg := Load()
	assert.Equal(t, ProviderStub, cfg.LLMProvider)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 5, cfg.MaxFileSizeMB)
	assert.Equal(t, 1024, cfg.MaxImageDimension)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{LLMProvider: ProviderGemini, GoogleAPIKey: "key", GeminiModel: "m", Port: "8000", MaxFileSizeMB: 5}
	}

	require.NoError(t, base().Validate())

	tests := []struct {
		name    string
		mutate  func(c *Config)
		setting string
	}{
		{"missing api key", func(c *Config) { c.GoogleAPIKey = "" }, "GOOGLE_API_KEY"},
		{"missing model", func(c *Config) { c.GeminiModel = "" }, "GEMINI_MODEL"},
		{"unknown provider", func(c *Config) { c.LLMProvider = "other" }, "LLM_PROVIDER"},
		{"bad port", func(c *Config) { c.Port = "http" }, "PORT"},
		{"zero upload size", func(c *Config) { c.MaxFileSizeMB = 0 }, "MAX_FILE_SIZE_MB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigurationError, got %v", err)
			assert.Equal(t, tt.setting, cfgErr.Setting)
		})
	}
}

func TestValidateStubNeedsNoKey(t *testing.T) {
	cfg := &Config{LLMProvider: ProviderStub, Port: "8000", MaxFileSizeMB: 1}
	assert.NoError(t, cfg.Validate())
}
