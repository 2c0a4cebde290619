package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// StoreBackend selects the vector store implementation: "sqlite", "qdrant" or "memory".
	StoreBackend     string
	DBPath           string
	QdrantURL        string
	QdrantCollection string

	// Provider selects the model provider: "ollama" or "openai".
	Provider      string
	OllamaBaseURL string
	OpenAIBaseURL string
	OpenAIAPIKey  string
	EmbedModel    string
	ChatModel     string
	// VectorSize is the embedding model's output dimensionality. Zero disables
	// size validation on embedding responses.
	VectorSize int

	ChunkSize       int
	ChunkOverlap    int
	TopK            int
	MaxContextChars int

	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the rest.
// If a .env file exists in the current directory it is loaded first;
// environment variables already set take precedence over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		StoreBackend:     getEnv("STORE_BACKEND", "sqlite"),
		DBPath:           getEnv("DB_PATH", "./data/docchat.db"),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "docchat"),
		Provider:         getEnv("LLM_PROVIDER", "ollama"),
		OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		EmbedModel:       getEnv("EMBED_MODEL", "nomic-embed-text"),
		ChatModel:        getEnv("CHAT_MODEL", "llama3.2"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}

	switch cfg.StoreBackend {
	case "sqlite", "qdrant", "memory":
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be sqlite, qdrant or memory, got %q", cfg.StoreBackend)
	}

	switch cfg.Provider {
	case "ollama", "openai":
	default:
		return nil, fmt.Errorf("LLM_PROVIDER must be ollama or openai, got %q", cfg.Provider)
	}
	if cfg.Provider == "openai" && cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
	}

	var err error
	if cfg.VectorSize, err = getEnvInt("VECTOR_SIZE", 0); err != nil {
		return nil, err
	}
	if cfg.VectorSize < 0 {
		return nil, fmt.Errorf("VECTOR_SIZE must not be negative")
	}
	if cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", 1000); err != nil {
		return nil, err
	}
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("CHUNK_SIZE must be greater than 0")
	}
	if cfg.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", 200); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE)")
	}
	if cfg.TopK, err = getEnvInt("TOP_K", 3); err != nil {
		return nil, err
	}
	if cfg.TopK <= 0 {
		return nil, fmt.Errorf("TOP_K must be greater than 0")
	}
	if cfg.MaxContextChars, err = getEnvInt("MAX_CONTEXT_CHARS", 8000); err != nil {
		return nil, err
	}
	if cfg.MaxContextChars <= 0 {
		return nil, fmt.Errorf("MAX_CONTEXT_CHARS must be greater than 0")
	}

	cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	// The sqlite backend needs its parent directory to exist before Open.
	if cfg.StoreBackend == "sqlite" {
		dataDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", s)
	}
}
