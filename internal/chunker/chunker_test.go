package chunker

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"main.py", "python"},
		{"Service.cs", "c_sharp"},
		{"lib.rs", "rust"},
		{"index.ts", "typescript"},
		{"App.tsx", "tsx"},
		{"app.js", "javascript"},
		{"app.jsx", "javascript"},
		{"README.md", "markdown"},
		{"doc.mdx", "markdown"},
		{"config.json", "json"},
		{"Cargo.toml", "toml"},
		{"values.yaml", "yaml"},
		{"values.yml", "yaml"},
		{"scene.gdscript", "gdscript"},
		{"notes.txt", "txt"},
		{"noext", ""},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			require.Equal(t, tt.want, DetectLanguage(tt.filename))
		})
	}
}

func TestChunkTextShortContentSingleChunk(t *testing.T) {
	c := New()
	content := "def f():\n    pass\n"
	chunks := c.chunkText(content, "python", Config{ChunkSize: 1000, ChunkOverlap: 300})
	require.Len(t, chunks, 1)
	require.Equal(t, "0:0", chunks[0].Location)
	require.Equal(t, content, chunks[0].Text)
}

func TestChunkTextSlidingWindow(t *testing.T) {
	c := New()
	var b strings.Builder
	for i := 0; i < 500; i++ {
		b.WriteString("line number filler text\n")
	}
	content := b.String()

	chunks := c.chunkText(content, "txt", Config{ChunkSize: 1000, ChunkOverlap: 300})
	require.True(t, len(chunks) > 1)

	for i, ch := range chunks {
		require.Equal(t, i, indexOf(t, ch.Location))
	}
}

func TestChunkTextForwardProgress(t *testing.T) {
	c := New()
	content := strings.Repeat("x", 5000)
	chunks := c.chunkText(content, "txt", Config{ChunkSize: 100, ChunkOverlap: 99})
	require.True(t, len(chunks) <= len(content))
	require.True(t, len(chunks) > 1)
}

func TestChunkTextSkipsWhitespaceOnlyWindows(t *testing.T) {
	c := New()
	content := strings.Repeat(" ", 50) + "\n" + strings.Repeat("a", 2000)
	chunks := c.chunkText(content, "txt", Config{ChunkSize: 40, ChunkOverlap: 10})
	for _, ch := range chunks {
		require.NotEmpty(t, strings.TrimSpace(ch.Text))
	}
}

func indexOf(t *testing.T, location string) int {
	t.Helper()
	parts := strings.SplitN(location, ":", 2)
	require.Len(t, parts, 2)
	n, err := strconv.Atoi(parts[0])
	require.NoError(t, err)
	return n
}
