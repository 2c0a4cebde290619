// Package llm provides the embedding and generation capabilities as
// interchangeable external providers.
package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm.go -package=mocks docchat/internal/llm Embedder,Generator

import (
	"context"
	"fmt"
)

// Embedder converts text into a fixed-length dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces an answer from a system prompt and a user message.
type Generator interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	// Provider is "ollama" or "openai".
	Provider      string
	OllamaBaseURL string
	OpenAIBaseURL string
	OpenAIAPIKey  string
	EmbedModel    string
	ChatModel     string
	// ExpectedSize validates embedding dimensionality when non-zero.
	ExpectedSize int
}

// NewEmbedder creates the configured embedding provider.
func NewEmbedder(cfg Config) (Embedder, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaEmbedder(cfg.OllamaBaseURL, cfg.EmbedModel, cfg.ExpectedSize), nil
	case "openai":
		return NewOpenAIEmbedder(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbedModel, cfg.ExpectedSize)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// NewGenerator creates the configured generation provider.
func NewGenerator(cfg Config) (Generator, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaGenerator(cfg.OllamaBaseURL, cfg.ChatModel), nil
	case "openai":
		return NewOpenAIGenerator(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ChatModel)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
