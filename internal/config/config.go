// Package config provides configuration for the research service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the research service configuration.
type Config struct {
	// Server settings
	HTTPPort int `yaml:"http_port"`

	// Relational store
	DatabaseURL string `yaml:"database_url"`

	// Execution log (document store, best-effort)
	MongoURL      string `yaml:"mongo_url"`
	MongoDatabase string `yaml:"mongo_database"`

	// LLM backend
	LLMBaseURL string        `yaml:"llm_base_url"`
	LLMAPIKey  string        `yaml:"llm_api_key"`
	LLMModel   string        `yaml:"llm_model"`
	LLMTimeout time.Duration `yaml:"llm_timeout"`

	// Agent bounds
	MaxIterations int `yaml:"max_iterations"`
	MaxRetries    int `yaml:"max_retries"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Load loads configuration from environment variables. If CONFIG_FILE is set,
// the named YAML file is applied first and env vars override it.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:      8080,
		DatabaseURL:   "file:research.db?cache=shared&mode=rwc",
		MongoURL:      "mongodb://localhost:27017",
		MongoDatabase: "market_research_logs",
		LLMBaseURL:    "https://openrouter.ai/api",
		LLMModel:      "meta-llama/llama-3.1-8b-instruct:free",
		LLMTimeout:    60 * time.Second,
		MaxIterations: 5,
		MaxRetries:    3,
		LogLevel:      "info",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.HTTPPort = getEnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.MongoURL = getEnv("MONGO_URL", cfg.MongoURL)
	cfg.MongoDatabase = getEnv("MONGO_DATABASE", cfg.MongoDatabase)
	cfg.LLMBaseURL = getEnv("LLM_BASE_URL", cfg.LLMBaseURL)
	cfg.LLMAPIKey = getEnv("OPENROUTER_API_KEY", cfg.LLMAPIKey)
	cfg.LLMModel = getEnv("LLM_MODEL", cfg.LLMModel)
	cfg.LLMTimeout = time.Duration(getEnvInt("LLM_TIMEOUT_MS", int(cfg.LLMTimeout/time.Millisecond))) * time.Millisecond
	cfg.MaxIterations = getEnvInt("MAX_ITERATIONS", cfg.MaxIterations)
	cfg.MaxRetries = getEnvInt("MAX_RETRIES", cfg.MaxRetries)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if cfg.MaxIterations < 1 {
		return nil, fmt.Errorf("max_iterations must be at least 1, got %d", cfg.MaxIterations)
	}
	if cfg.MaxRetries < 1 {
		return nil, fmt.Errorf("max_retries must be at least 1, got %d", cfg.MaxRetries)
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
