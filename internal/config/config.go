package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all environment-driven settings for the server.
type Config struct {
	Port string

	// AI service
	GeminiAPIKey string
	GeminiModel  string
	Temperature  float64
	MaxTokens    int

	// Database. Empty MongoURI selects the in-memory store.
	MongoURI     string
	DatabaseName string

	AllowedOrigins []string
	LogMode        string
}

// Load reads configuration from the environment, consulting a .env file
// if one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	temperature, err := strconv.ParseFloat(getEnv("AI_TEMPERATURE", "0.7"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid AI_TEMPERATURE: %w", err)
	}
	maxTokens, err := strconv.Atoi(getEnv("AI_MAX_TOKENS", "2048"))
	if err != nil {
		return nil, fmt.Errorf("invalid AI_MAX_TOKENS: %w", err)
	}

	origins := strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    getEnv("AI_MODEL", "gemini-1.5-flash"),
		Temperature:    temperature,
		MaxTokens:      maxTokens,
		MongoURI:       os.Getenv("MONGODB_URI"),
		DatabaseName:   getEnv("DATABASE_NAME", "medlama"),
		AllowedOrigins: origins,
		LogMode:        getEnv("LOG_MODE", "development"),
	}, nil
}

// Validate checks that required settings are present. A missing API key is
// a startup failure; everything else has a workable default.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	// Gemini accepts temperatures up to 2.0.
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("AI_TEMPERATURE must be between 0 and 2")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("AI_MAX_TOKENS must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
