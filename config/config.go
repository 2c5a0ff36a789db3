package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the vehicle story pipeline service
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Server configuration
	Port string

	// LLM provider configuration
	LLMProvider  string
	OpenAIAPIKey string
	OpenAIModel  string
	GeminiAPIKey string
	GeminiModel  string

	// Web search configuration
	SearchAPIKey string

	// Safety and efficiency rating providers
	NHTSABaseURL string
	EPABaseURL   string

	// Asset storage configuration
	StorageBaseURL   string
	StoragePublicURL string
	StorageAuthToken string

	// Pipeline configuration
	SceneConcurrency int
	ProviderTimeout  time.Duration
	MaxSearchChars   int

	// RabbitMQ configuration
	RabbitMQURL      string
	RabbitMQExchange string

	// Rate limiting
	TriggerRatePerMinute int

	// Logging
	LogLevel string

	// Seed a demo vehicle on startup when the table is empty
	SeedDemoVehicle bool
}

// Load loads configuration from environment variables
func Load() *Config {
	config := &Config{
		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret_app"),
		DBName:     getEnv("DB_NAME", "carstory"),

		// Server defaults
		Port: getEnv("PORT", "8080"),

		// LLM provider defaults
		LLMProvider:  getEnv("LLM_PROVIDER", "openai"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		// Web search defaults
		SearchAPIKey: getEnv("SEARCH_API_KEY", ""),

		// Rating provider defaults
		NHTSABaseURL: getEnv("NHTSA_BASE_URL", "https://api.nhtsa.gov"),
		EPABaseURL:   getEnv("EPA_BASE_URL", "https://www.fueleconomy.gov/ws/rest"),

		// Asset storage defaults
		StorageBaseURL:   getEnv("STORAGE_BASE_URL", "http://localhost:9000/carstory"),
		StoragePublicURL: getEnv("STORAGE_PUBLIC_URL", ""),
		StorageAuthToken: getEnv("STORAGE_AUTH_TOKEN", ""),

		// Pipeline defaults (0 means unbounded scene fan-out)
		SceneConcurrency: getIntEnv("SCENE_CONCURRENCY", 0),
		ProviderTimeout:  getDurationEnv("PROVIDER_TIMEOUT", 10*time.Second),
		MaxSearchChars:   getIntEnv("MAX_SEARCH_CHARS", 4000),

		// RabbitMQ defaults (empty URL disables eventing)
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "carstory.events"),

		// Rate limiting defaults
		TriggerRatePerMinute: getIntEnv("TRIGGER_RATE_PER_MINUTE", 6),

		// Logging defaults
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SeedDemoVehicle: getBoolEnv("SEED_DEMO_VEHICLE", false),
	}

	return config
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getBoolEnv gets a boolean environment variable or returns a default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
