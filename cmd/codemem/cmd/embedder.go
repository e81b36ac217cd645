package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/codemem/internal/embedder"
)

// embedderFlags holds the backend-selection flags shared by every
// subcommand that needs to embed text.
type embedderFlags struct {
	backend     string
	ollamaURL   string
	ollamaModel string
}

func (f *embedderFlags) register(c *cobra.Command) {
	def := embedder.DefaultConfig()
	c.Flags().StringVar(&f.backend, "embedder", def.Backend, "embedding backend: local or ollama")
	c.Flags().StringVar(&f.ollamaURL, "ollama-url", def.OllamaURL, "ollama server base URL")
	c.Flags().StringVar(&f.ollamaModel, "ollama-model", def.OllamaModel, "ollama model name")
}

func (f *embedderFlags) build() (embedder.Embedder, error) {
	emb, err := embedder.New(embedder.Config{
		Backend:     f.backend,
		OllamaURL:   f.ollamaURL,
		OllamaModel: f.ollamaModel,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	return emb, nil
}
