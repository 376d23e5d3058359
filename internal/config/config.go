package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gocatalog/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	AI       AIConfig
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
}

// AIConfig holds model gateway settings. An empty key for the selected
// provider leaves the gateway unconfigured and every AI feature degrades.
type AIConfig struct {
	Provider    string
	OpenAIKey   string
	GeminiKey   string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	RatePerSec  float64
	Burst       int
	PromptsDir  string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds the optional gateway usage ledger connection.
type DatabaseConfig struct {
	Driver string
	URL    string
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		AI:       loadAIConfig(),
		Server:   loadServerConfig(),
		Database: loadDatabaseConfig(),
		Log:      loadLogConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// APIKey returns the credential for the selected provider.
func (c AIConfig) APIKey() string {
	if c.Provider == "gemini" {
		return c.GeminiKey
	}
	return c.OpenAIKey
}

// Enabled reports whether the usage ledger should be opened.
func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

func loadAIConfig() AIConfig {
	provider := strings.ToLower(getEnvOrDefault("LLM_PROVIDER", "openai"))

	defaultModel := "gpt-4o-mini"
	if provider == "gemini" {
		defaultModel = "gemini-2.0-flash"
	}

	return AIConfig{
		Provider:    provider,
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		GeminiKey:   os.Getenv("GEMINI_API_KEY"),
		Model:       getEnvOrDefault("LLM_MODEL", defaultModel),
		BaseURL:     os.Getenv("LLM_BASE_URL"),
		MaxTokens:   getEnvIntOrDefault("MAX_TOKENS", 600),
		Temperature: getEnvFloatOrDefault("TEMPERATURE", 0.4),
		Timeout:     getEnvDurationOrDefault("LLM_TIMEOUT", 30*time.Second),
		RatePerSec:  getEnvFloatOrDefault("LLM_RATE_PER_SEC", 3),
		Burst:       getEnvIntOrDefault("LLM_BURST", 5),
		PromptsDir:  os.Getenv("PROMPTS_DIR"),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver: getEnvOrDefault("DATABASE_DRIVER", "postgres"),
		URL:    os.Getenv("DATABASE_URL"),
	}
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Format: getEnvOrDefault("LOG_FORMAT", "console"),
	}
}

func validateConfig(config *Config) error {
	switch config.AI.Provider {
	case "openai", "gemini":
	default:
		return errors.ConfigInvalid("LLM_PROVIDER must be openai or gemini, got " + config.AI.Provider)
	}
	switch config.Database.Driver {
	case "postgres", "sqlite":
	default:
		return errors.ConfigInvalid("DATABASE_DRIVER must be postgres or sqlite, got " + config.Database.Driver)
	}
	if config.AI.RatePerSec < 0 || config.AI.Burst < 0 {
		return errors.ConfigInvalid("LLM_RATE_PER_SEC and LLM_BURST must not be negative")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT must not be empty")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
