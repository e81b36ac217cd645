package flow

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tormodhaugland/codemem/internal/embedder"
)

// stubConverter lets tests control conversion output per path without
// depending on real PDF/OOXML fixtures.
type stubConverter struct {
	byExt map[string]string
	fail  map[string]bool
}

func (s *stubConverter) Convert(path string) (string, error) {
	if s.fail[filepath.Ext(path)] {
		return "", fmt.Errorf("stub conversion failure")
	}
	return s.byExt[filepath.Ext(path)], nil
}

func TestIndexDocumentsBasic(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a.pdf"), "placeholder")
	mustWrite(t, filepath.Join(root, "b.html"), "placeholder")

	conv := &stubConverter{byExt: map[string]string{
		".pdf":  "# Report\n\nSome long converted prose about the system.",
		".html": "# Page\n\nMore prose from the html file.",
	}}

	opts := DocumentOptions{SourceRoot: root, DBPath: filepath.Join(t.TempDir(), "db.sqlite"), ChunkSize: 1000, ChunkOverlap: 300, BatchSize: 32}
	stats, err := IndexDocuments(context.Background(), opts, embedder.NewLocal(), conv, nil)
	require.NoError(t, err)
	require.Equal(t, 2, stats.FilesProcessed)
	require.Equal(t, 0, stats.FilesSkipped)
	require.Equal(t, 2, stats.ChunksIndexed)
}

func TestIndexDocumentsSkipsConversionFailure(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "bad.docx"), "placeholder")

	conv := &stubConverter{fail: map[string]bool{".docx": true}}

	opts := DocumentOptions{SourceRoot: root, DBPath: filepath.Join(t.TempDir(), "db.sqlite"), ChunkSize: 1000, ChunkOverlap: 300, BatchSize: 32}
	stats, err := IndexDocuments(context.Background(), opts, embedder.NewLocal(), conv, nil)
	require.NoError(t, err)
	require.Equal(t, 0, stats.FilesProcessed)
	require.Equal(t, 1, stats.FilesSkipped)
}

func TestIndexDocumentsSkipsEmptyOutput(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "empty.pptx"), "placeholder")

	conv := &stubConverter{byExt: map[string]string{".pptx": "   \n  "}}

	opts := DocumentOptions{SourceRoot: root, DBPath: filepath.Join(t.TempDir(), "db.sqlite"), ChunkSize: 1000, ChunkOverlap: 300, BatchSize: 32}
	stats, err := IndexDocuments(context.Background(), opts, embedder.NewLocal(), conv, nil)
	require.NoError(t, err)
	require.Equal(t, 0, stats.FilesProcessed)
	require.Equal(t, 1, stats.FilesSkipped)
}

func TestIndexDocumentsIgnoresNonDocumentExtensions(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "code.py"), "print('hi')")

	conv := &stubConverter{}
	opts := DocumentOptions{SourceRoot: root, DBPath: filepath.Join(t.TempDir(), "db.sqlite"), ChunkSize: 1000, ChunkOverlap: 300, BatchSize: 32}
	stats, err := IndexDocuments(context.Background(), opts, embedder.NewLocal(), conv, nil)
	require.NoError(t, err)
	require.Equal(t, 0, stats.FilesProcessed)
	require.Equal(t, 0, stats.FilesSkipped)
}
