package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkASTPythonGroupsTopLevelDefinitions(t *testing.T) {
	c := New()
	content := `"""module docstring"""
import os

def a():
    return 1

def b():
    return 2
`
	chunks, err := c.Chunk(content, "python", Config{ChunkSize: 1000, ChunkOverlap: 0})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	joined := strings.Join(collectTexts(chunks), "\n")
	require.Contains(t, joined, "def a()")
	require.Contains(t, joined, "def b()")
}

func TestChunkASTKeepsOversizedSingleNodeWhole(t *testing.T) {
	c := New()
	var body strings.Builder
	for i := 0; i < 200; i++ {
		body.WriteString("    x = 1\n")
	}
	content := "def big():\n" + body.String()

	chunks, err := c.Chunk(content, "python", Config{ChunkSize: 50, ChunkOverlap: 0})
	require.NoError(t, err)
	require.Len(t, chunks, 1, "a single oversized node must still become exactly one chunk")
	require.Contains(t, chunks[0].Text, "def big()")
}

func TestChunkASTFallsBackWhenNoGrammarAvailable(t *testing.T) {
	c := New()
	content := strings.Repeat("key: value\n", 200)
	chunks, err := c.Chunk(content, "yaml", Config{ChunkSize: 100, ChunkOverlap: 20})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	// text mode produces multiple windows for content this size
	require.True(t, len(chunks) > 1)
}

func TestChunkASTContiguousIndices(t *testing.T) {
	c := New()
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("def f")
		b.WriteString(string(rune('a' + i)))
		b.WriteString("():\n    pass\n\n")
	}
	chunks, err := c.Chunk(b.String(), "python", Config{ChunkSize: 60, ChunkOverlap: 0})
	require.NoError(t, err)
	require.True(t, len(chunks) > 1)
	for i, ch := range chunks {
		require.Equal(t, i, indexOf(t, ch.Location))
	}
}

func collectTexts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}
