// Package config loads service configuration from environment
// variables, with an optional .env file for local development.
package config

// #region imports
import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// #endregion

// #region config

// Config holds everything the service reads from the environment.
type Config struct {
	// HTTP server
	ListenAddr string

	// Audit log database
	DBPath string

	// Retrieval breadth and escalation tuning
	TopKDefault         int
	TopKFallback        int
	LowOverlapWindow    int
	LowOverlapThreshold float64
	PreemptiveWiden     bool

	// Project-level Yandex credentials used for embeddings
	YandexAPIKey   string
	YandexFolderID string

	// Logging
	Debug bool
}

// #endregion config

// #region load

// Load reads configuration, trying .env first and falling back to the
// process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		DBPath:     getEnv("AUDIT_DB_PATH", "gate_audit.db"),

		TopKDefault:         getEnvInt("RAG_TOPK_DEFAULT", 12),
		TopKFallback:        getEnvInt("RAG_TOPK_FALLBACK", 15),
		LowOverlapWindow:    getEnvInt("RAG_LOW_OVERLAP_WINDOW", 50),
		LowOverlapThreshold: getEnvFloat("RAG_LOW_OVERLAP_THRESHOLD", 0.25),
		PreemptiveWiden:     getEnvBool("RAG_PREEMPTIVE_WIDEN", true),

		YandexAPIKey:   getEnv("YANDEXGPT_API_KEY", ""),
		YandexFolderID: getEnv("YANDEXGPT_FOLDER_ID", ""),

		Debug: getEnvBool("RAG_DEBUG", false),
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// validate rejects settings the pipeline cannot run with.
func validate(cfg *Config) error {
	if cfg.TopKDefault <= 0 {
		return fmt.Errorf("RAG_TOPK_DEFAULT must be positive, got %d", cfg.TopKDefault)
	}
	if cfg.TopKFallback < cfg.TopKDefault {
		return fmt.Errorf("RAG_TOPK_FALLBACK must be >= RAG_TOPK_DEFAULT, got %d < %d",
			cfg.TopKFallback, cfg.TopKDefault)
	}
	if cfg.LowOverlapWindow <= 0 {
		return fmt.Errorf("RAG_LOW_OVERLAP_WINDOW must be positive, got %d", cfg.LowOverlapWindow)
	}
	if cfg.LowOverlapThreshold < 0 || cfg.LowOverlapThreshold > 1 {
		return fmt.Errorf("RAG_LOW_OVERLAP_THRESHOLD must be in [0,1], got %v", cfg.LowOverlapThreshold)
	}
	return nil
}

// #endregion load

// #region env-helpers

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// #endregion env-helpers
