package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// newOpenAIClient builds a client for the OpenAI API or any compatible
// endpoint (llama.cpp, LM Studio, vLLM) when baseURL is set.
func newOpenAIClient(baseURL, apiKey string) (*openai.Client, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key not set")
	}
	if baseURL == "" {
		return openai.NewClient(apiKey), nil
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return openai.NewClientWithConfig(cfg), nil
}

// OpenAIEmbedder generates embeddings via an OpenAI-compatible API.
type OpenAIEmbedder struct {
	client       *openai.Client
	model        string
	expectedSize int
}

// NewOpenAIEmbedder creates an OpenAI-compatible embedding client.
func NewOpenAIEmbedder(baseURL, apiKey, model string, expectedSize int) (*OpenAIEmbedder, error) {
	client, err := newOpenAIClient(baseURL, apiKey)
	if err != nil {
		return nil, err
	}
	return &OpenAIEmbedder{client: client, model: model, expectedSize: expectedSize}, nil
}

// Embed generates a vector embedding for the given text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	vec := resp.Data[0].Embedding
	if e.expectedSize > 0 && len(vec) != e.expectedSize {
		return nil, fmt.Errorf("embedding has size %d, expected %d", len(vec), e.expectedSize)
	}
	return vec, nil
}

// OpenAIGenerator answers via an OpenAI-compatible chat completions API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates an OpenAI-compatible chat client.
func NewOpenAIGenerator(baseURL, apiKey, model string) (*OpenAIGenerator, error) {
	client, err := newOpenAIClient(baseURL, apiKey)
	if err != nil {
		return nil, err
	}
	return &OpenAIGenerator{client: client, model: model}, nil
}

// Chat sends a system and user message pair and returns the reply content.
func (g *OpenAIGenerator) Chat(ctx context.Context, system, user string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
