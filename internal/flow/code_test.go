package flow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tormodhaugland/codemem/internal/embedder"
	"github.com/tormodhaugland/codemem/internal/store"
)

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestIndexCodeMissingRoot(t *testing.T) {
	opts := CodeOptions{
		SourceRoot: filepath.Join(t.TempDir(), "does-not-exist"),
		DBPath:     filepath.Join(t.TempDir(), "db.sqlite"),
	}
	_, err := IndexCode(context.Background(), opts, embedder.NewLocal(), nil)
	require.ErrorIs(t, err, ErrDirectoryNotFound)
}

func TestIndexCodeRootNotDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file.txt")
	mustWrite(t, root, "x")

	opts := CodeOptions{SourceRoot: root, DBPath: filepath.Join(t.TempDir(), "db.sqlite")}
	_, err := IndexCode(context.Background(), opts, embedder.NewLocal(), nil)
	require.ErrorIs(t, err, ErrNotDir)
}

func TestIndexCodeBasicAndIdempotent(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a.py"), "def f():\n    pass\n")
	mustWrite(t, filepath.Join(root, ".git", "secret.py"), "SECRET = 1\n")

	dbPath := filepath.Join(t.TempDir(), "db.sqlite")
	opts := CodeOptions{SourceRoot: root, DBPath: dbPath, ChunkSize: 1000, ChunkOverlap: 300, BatchSize: 32}

	stats, err := IndexCode(context.Background(), opts, embedder.NewLocal(), nil)
	require.NoError(t, err)
	require.Equal(t, 1, stats.FilesProcessed)
	require.Equal(t, 1, stats.ChunksIndexed)

	db, err := store.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.EnsureCodeSchema())

	rows, err := db.Conn().Query("SELECT code FROM code_chunks")
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var code string
		require.NoError(t, rows.Scan(&code))
		require.NotContains(t, code, "SECRET")
	}

	stats2, err := IndexCode(context.Background(), opts, embedder.NewLocal(), nil)
	require.NoError(t, err)
	require.Equal(t, 1, stats2.FilesProcessed)
	require.Equal(t, 0, stats2.ChunksDeleted)
}

func TestIndexCodeIndexesNewFileAfterRename(t *testing.T) {
	root := t.TempDir()
	aPath := filepath.Join(root, "a.py")
	mustWrite(t, aPath, "def f():\n    pass\n")

	dbPath := filepath.Join(t.TempDir(), "db.sqlite")
	opts := CodeOptions{SourceRoot: root, DBPath: dbPath, ChunkSize: 1000, ChunkOverlap: 300, BatchSize: 32}

	_, err := IndexCode(context.Background(), opts, embedder.NewLocal(), nil)
	require.NoError(t, err)

	require.NoError(t, os.Remove(aPath))
	mustWrite(t, filepath.Join(root, "b.py"), "def g():\n    return 1\n")

	stats, err := IndexCode(context.Background(), opts, embedder.NewLocal(), nil)
	require.NoError(t, err)
	require.Equal(t, 1, stats.FilesProcessed)
	require.Equal(t, 1, stats.ChunksIndexed)
}

// failAfterNEmbedder embeds successfully for the first n calls to
// EmbedBatch and fails every call after that, modeling a fatal
// mid-run embedder failure.
type failAfterNEmbedder struct {
	inner embedder.Embedder
	n     int
	calls int
}

func (f *failAfterNEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.inner.Embed(ctx, text)
}

func (f *failAfterNEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.calls > f.n {
		return nil, fmt.Errorf("embedder batch failure")
	}
	return f.inner.EmbedBatch(ctx, texts)
}

func (f *failAfterNEmbedder) Dimension() int    { return f.inner.Dimension() }
func (f *failAfterNEmbedder) ModelName() string { return f.inner.ModelName() }

func TestIndexCodeEmbedderFailureLeavesNoPartialCommit(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a.py"), "def f():\n    pass\n")
	mustWrite(t, filepath.Join(root, "b.py"), "def g():\n    return 1\n")

	dbPath := filepath.Join(t.TempDir(), "db.sqlite")
	opts := CodeOptions{SourceRoot: root, DBPath: dbPath, ChunkSize: 1000, ChunkOverlap: 300, BatchSize: 1}

	emb := &failAfterNEmbedder{inner: embedder.NewLocal(), n: 1}
	_, err := IndexCode(context.Background(), opts, emb, nil)
	require.Error(t, err)

	db, err := store.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.EnsureCodeSchema())

	var count int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM code_chunks").Scan(&count))
	require.Equal(t, 0, count, "a fatal embedder failure mid-run must leave no chunk from any batch committed")
}

func TestIndexCodeChunkerVersionBumpPurges(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a.py"), "def f():\n    pass\n")

	dbPath := filepath.Join(t.TempDir(), "db.sqlite")
	opts := CodeOptions{SourceRoot: root, DBPath: dbPath, ChunkSize: 1000, ChunkOverlap: 300, BatchSize: 32}

	_, err := IndexCode(context.Background(), opts, embedder.NewLocal(), nil)
	require.NoError(t, err)

	db, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.EnsureMetadataSchema())
	require.NoError(t, db.SetChunkerVersion("ts0"))
	require.NoError(t, db.Close())

	stats, err := IndexCode(context.Background(), opts, embedder.NewLocal(), nil)
	require.NoError(t, err)
	require.Equal(t, 1, stats.ChunksPurged)
	require.Equal(t, 1, stats.ChunksIndexed)
}
