package embedder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "local", cfg.Backend)
	require.Equal(t, "http://localhost:11434", cfg.OllamaURL)
	require.Equal(t, "nomic-embed-text", cfg.OllamaModel)
}

func TestNewWithUnknownBackend(t *testing.T) {
	_, err := New(Config{Backend: "unknown"})
	require.Error(t, err)
}

func TestNewDefaultsToLocal(t *testing.T) {
	e, err := New(DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, localDimension, e.Dimension())
}

func TestLocalEmbedderDeterministic(t *testing.T) {
	e := NewLocal()
	ctx := context.Background()

	a, err := e.Embed(ctx, "def add(a, b):\n    return a + b")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "def add(a, b):\n    return a + b")
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, a, localDimension)
}

func TestLocalEmbedderDistinguishesDifferentText(t *testing.T) {
	e := NewLocal()
	ctx := context.Background()

	a, err := e.Embed(ctx, "alpha beta gamma")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "completely unrelated content")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestLocalEmbedderBatchMatchesSingle(t *testing.T) {
	e := NewLocal()
	ctx := context.Background()
	texts := []string{"one", "two", "three"}

	batch, err := e.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	for i, text := range texts {
		single, err := e.Embed(ctx, text)
		require.NoError(t, err)
		require.Equal(t, single, batch[i])
	}
}

func TestLocalEmbedderEmptyTextIsZeroVector(t *testing.T) {
	e := NewLocal()
	vec, err := e.Embed(context.Background(), "")
	require.NoError(t, err)
	for _, v := range vec {
		require.Zero(t, v)
	}
}

func TestOllamaEmbedderDefaults(t *testing.T) {
	e, err := NewOllama("", "")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:11434", e.baseURL)
	require.Equal(t, "nomic-embed-text", e.model)
	require.Equal(t, 768, e.Dimension())
}

func TestOllamaEmbedderDimensions(t *testing.T) {
	tests := []struct {
		model     string
		dimension int
	}{
		{"nomic-embed-text", 768},
		{"all-minilm", 384},
		{"mxbai-embed-large", 1024},
		{"unknown-model", localDimension},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			e, err := NewOllama("", tt.model)
			require.NoError(t, err)
			require.Equal(t, tt.dimension, e.Dimension())
		})
	}
}
