package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataDirDefault(t *testing.T) {
	t.Setenv(DataDirEnv, "")
	require.Equal(t, "data/memory", DataDir())
}

func TestDataDirFromEnv(t *testing.T) {
	t.Setenv(DataDirEnv, "/tmp/custom")
	require.Equal(t, "/tmp/custom", DataDir())
}

func TestCodebaseDBPath(t *testing.T) {
	t.Setenv(DataDirEnv, "/tmp/custom")
	require.Equal(t, filepath.Join("/tmp/custom", "codebase.sqlite"), CodebaseDBPath())
}

func TestKnowledgeDBPathSharedWhenNoAgent(t *testing.T) {
	t.Setenv(DataDirEnv, "/tmp/custom")
	require.Equal(t, filepath.Join("/tmp/custom", "knowledge", "shared.sqlite"), KnowledgeDBPath(""))
}

func TestKnowledgeDBPathPerAgent(t *testing.T) {
	t.Setenv(DataDirEnv, "/tmp/custom")
	require.Equal(t, filepath.Join("/tmp/custom", "knowledge", "agent-1.sqlite"), KnowledgeDBPath("agent-1"))
}

func TestDefaultIndexDefaults(t *testing.T) {
	d := DefaultIndexDefaults()
	require.Equal(t, 1000, d.ChunkSize)
	require.Equal(t, 300, d.ChunkOverlap)
	require.Equal(t, 32, d.BatchSize)
}
