// Package embedder is the opaque embedding-model collaborator:
// embed(texts) -> fixed-length float vectors, deterministic within a
// run. The core never depends on a specific backend.
package embedder

import (
	"context"
	"fmt"
)

// Embedder generates embeddings for text.
type Embedder interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding dimension this instance produces.
	Dimension() int

	// ModelName identifies the model; configuration only, never part
	// of the persisted vector format.
	ModelName() string
}

// Config selects and configures a backend.
type Config struct {
	// Backend is "local" (default, no external service) or "ollama".
	Backend string

	// OllamaURL is the Ollama server base URL.
	OllamaURL string

	// OllamaModel is the Ollama model to request embeddings from.
	OllamaModel string
}

// DefaultConfig returns the dependency-free local backend, so the
// full pipeline runs end to end without any external service.
func DefaultConfig() Config {
	return Config{
		Backend:     "local",
		OllamaURL:   "http://localhost:11434",
		OllamaModel: "nomic-embed-text",
	}
}

// New constructs the configured backend.
func New(cfg Config) (Embedder, error) {
	switch cfg.Backend {
	case "local", "":
		return NewLocal(), nil
	case "ollama":
		return NewOllama(cfg.OllamaURL, cfg.OllamaModel)
	default:
		return nil, fmt.Errorf("unknown embedding backend: %s", cfg.Backend)
	}
}
