// Package config resolves the data directory and operation defaults
// from the environment, in the teacher's Default*Config idiom scoped
// down to what this module's CLI surface actually needs.
package config

import (
	"os"
	"path/filepath"
)

// DataDirEnv is the environment variable that roots all default
// database paths.
const DataDirEnv = "MEMORY_SIDECAR_DATA_DIR"

const defaultDataDir = "data/memory"

// DataDir returns the configured data directory, defaulting to
// "data/memory" when MEMORY_SIDECAR_DATA_DIR is unset.
func DataDir() string {
	if v := os.Getenv(DataDirEnv); v != "" {
		return v
	}
	return defaultDataDir
}

// CodebaseDBPath returns the default code index path.
func CodebaseDBPath() string {
	return filepath.Join(DataDir(), "codebase.sqlite")
}

// KnowledgeDBPath returns the default knowledge database path for
// agentID, or the shared database when agentID is empty.
func KnowledgeDBPath(agentID string) string {
	name := "shared.sqlite"
	if agentID != "" {
		name = agentID + ".sqlite"
	}
	return filepath.Join(DataDir(), "knowledge", name)
}

// IndexDefaults holds the documented CLI defaults for chunking and
// batching during an indexing run.
type IndexDefaults struct {
	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
}

// DefaultIndexDefaults mirrors the CLI's documented flag defaults.
func DefaultIndexDefaults() IndexDefaults {
	return IndexDefaults{ChunkSize: 1000, ChunkOverlap: 300, BatchSize: 32}
}

// DefaultTopK is the default result count for search/query commands.
const DefaultTopK = 10

// ChunkerVersion is the compiled-in chunker algorithm version tag.
// Changing it forces a full purge of code_chunks on the next index
// run (see internal/flow).
const ChunkerVersion = "ts1"
