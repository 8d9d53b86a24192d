package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// app config for the interview service. Every external client is optional
// except the AI provider, the handlers report missing pieces at request time.
type Config struct {
	Provider       string
	Port           string
	AllowedOrigins []string

	// questions prompt variant, see internal/prompts/templates
	PromptVariant string

	// voice provider
	VapiPrivateKey string
	VapiBaseURL    string
	VapiWorkflowID string

	// document store
	MongoURI             string
	MongoDatabase        string
	InterviewsCollection string

	// call audit store
	Postgres PostgresConfig

	RedisAddr string
	JWTSecret string

	CallRetention         time.Duration
	CallRetentionSchedule string
}

type PostgresConfig struct {
	Host     string
	User     string
	Password string
	DBName   string
	Port     string
	SSLMode  string
}

// DSN returns an empty string when no host is configured
func (p PostgresConfig) DSN() string {
	if p.Host == "" {
		return ""
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		p.Host, p.User, p.Password, p.DBName, p.Port, p.SSLMode)
}

// loads configuration from environment variables
func LoadConfig() (*Config, error) {
	retention, err := time.ParseDuration(getEnvOrDefault("CALL_RETENTION", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CALL_RETENTION: %w", err)
	}

	config := &Config{
		Provider:       getEnvOrDefault("AI_PROVIDER", "gemini"),
		Port:           getEnvOrDefault("PORT", "8080"),
		AllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		PromptVariant:  getEnvOrDefault("QUESTIONS_PROMPT_VARIANT", "default"),

		VapiPrivateKey: os.Getenv("VAPI_PRIVATE_KEY"),
		VapiBaseURL:    strings.TrimRight(getEnvOrDefault("VAPI_BASE_URL", "https://api.vapi.ai"), "/"),
		VapiWorkflowID: os.Getenv("VAPI_WORKFLOW_ID"),

		MongoURI:             os.Getenv("MONGO_URI"),
		MongoDatabase:        getEnvOrDefault("MONGO_DB_NAME", "prepwise"),
		InterviewsCollection: getEnvOrDefault("INTERVIEWS_COLLECTION", "interviews"),

		Postgres: PostgresConfig{
			Host:     os.Getenv("POSTGRES_HOST"),
			User:     getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("POSTGRES_DB", "postgres"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
			SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		},

		RedisAddr: os.Getenv("REDIS_ADDR"),
		JWTSecret: os.Getenv("JWT_SECRET"),

		CallRetention:         retention,
		CallRetentionSchedule: getEnvOrDefault("CALL_RETENTION_SCHEDULE", "0 3 * * *"),
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Provider != "gemini" {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini")
	}
	if _, err := strconv.Atoi(config.Port); err != nil {
		return fmt.Errorf("invalid PORT %q: %w", config.Port, err)
	}
	if config.CallRetention <= 0 {
		return errors.New("CALL_RETENTION must be positive")
	}
	// the Vapi key is checked per request so a missing key surfaces as a
	// structured error instead of a boot failure
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
