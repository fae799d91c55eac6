package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderStub   = "stub"
)

var defaultCORSOrigins = "http://localhost:3000,http://127.0.0.1:3000,https://specter-vision.vercel.app,https://specter-vision-andyhu18.vercel.app"

// Config holds all configuration for the analysis service
type Config struct {
	// Generative model
	LLMProvider  string
	GoogleAPIKey string
	GeminiModel  string

	// Server configuration
	Host        string
	Port        string
	CORSOrigins []string

	// Upload and image limits
	MaxFileSizeMB     int
	MaxImageDimension int

	RateLimitPerMinute int
	LogLevel           string

	// Prompt document override, empty for the built-in prompt
	PromptFile string
}

// ConfigurationError reports a required setting that is absent or unusable.
type ConfigurationError struct {
	Setting string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Message)
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; real environment variables win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("Failed to load .env file: %v", err)
	}

	return &Config{
		LLMProvider:  strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
		GoogleAPIKey: getEnv("GOOGLE_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		Host:        getEnv("HOST", "0.0.0.0"),
		Port:        getEnv("PORT", "8000"),
		CORSOrigins: getStringSliceEnv("CORS_ORIGINS", defaultCORSOrigins),

		MaxFileSizeMB:     getIntEnv("MAX_FILE_SIZE_MB", 5),
		MaxImageDimension: getIntEnv("MAX_IMAGE_DIMENSION", 0),

		RateLimitPerMinute: getIntEnv("RATE_LIMIT_PER_MINUTE", 30),
		LogLevel:           getEnv("LOG_LEVEL", "info"),

		PromptFile: getEnv("PROMPT_FILE", ""),
	}
}

// Validate checks the settings needed before serving requests.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGemini:
		if c.GoogleAPIKey == "" {
			return &ConfigurationError{Setting: "GOOGLE_API_KEY", Message: "required when LLM_PROVIDER=gemini"}
		}
		if c.GeminiModel == "" {
			return &ConfigurationError{Setting: "GEMINI_MODEL", Message: "must not be empty"}
		}
	case ProviderStub:
	default:
		return &ConfigurationError{Setting: "LLM_PROVIDER", Message: fmt.Sprintf("unknown provider %q", c.LLMProvider)}
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return &ConfigurationError{Setting: "PORT", Message: fmt.Sprintf("invalid port %q", c.Port)}
	}
	if c.MaxFileSizeMB <= 0 {
		return &ConfigurationError{Setting: "MAX_FILE_SIZE_MB", Message: "must be greater than 0"}
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// MaxFileSizeBytes is the upload size limit in bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

// getStringSliceEnv gets a comma-separated environment variable as a slice
func getStringSliceEnv(key, defaultValue string) []string {
	value := getEnv(key, defaultValue)
	var values []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
