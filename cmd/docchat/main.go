package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"docchat/internal/cli"
	"docchat/internal/config"
	"docchat/internal/contextutil"
	"docchat/internal/llm"
	"docchat/internal/splitter"
	"docchat/internal/vectorstore"
	"docchat/internal/vectorstore/memory"
	"docchat/internal/vectorstore/qdrant"
	"docchat/internal/vectorstore/sqlite"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open vector store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("Failed to close vector store", "error", err)
		}
	}()

	llmCfg := llm.Config{
		Provider:      cfg.Provider,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		EmbedModel:    cfg.EmbedModel,
		ChatModel:     cfg.ChatModel,
		ExpectedSize:  cfg.VectorSize,
	}
	embedder, err := llm.NewEmbedder(llmCfg)
	if err != nil {
		log.Fatalf("Failed to create embedder: %v", err)
	}
	generator, err := llm.NewGenerator(llmCfg)
	if err != nil {
		log.Fatalf("Failed to create generator: %v", err)
	}

	app := &cli.App{
		Store:           store,
		Embedder:        embedder,
		Generator:       generator,
		Splitter:        splitter.New(cfg.ChunkSize, cfg.ChunkOverlap),
		TopK:            cfg.TopK,
		MaxContextChars: cfg.MaxContextChars,
	}

	ctx := contextutil.WithLogger(context.Background(), logger)
	root := cli.NewRootCommand(app)
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func openStore(cfg *config.Config) (vectorstore.Store, error) {
	switch cfg.StoreBackend {
	case "sqlite":
		return sqlite.Open(cfg.DBPath)
	case "qdrant":
		return qdrant.Open(cfg.QdrantURL, cfg.QdrantCollection)
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
