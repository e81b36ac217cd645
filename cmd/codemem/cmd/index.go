package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/codemem/internal/config"
	"github.com/tormodhaugland/codemem/internal/flow"
	"github.com/tormodhaugland/codemem/internal/logging"
)

var (
	indexDBPath       string
	indexChunkSize    int
	indexChunkOverlap int
	indexBatchSize    int
	indexEmbedder     embedderFlags
)

var indexCmd = &cobra.Command{
	Use:   "index SOURCE_PATH",
	Short: "Index a source tree into the code embedding database",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexDBPath, "db", config.CodebaseDBPath(), "path to the code index database")
	indexCmd.Flags().IntVar(&indexChunkSize, "chunk-size", config.DefaultIndexDefaults().ChunkSize, "target chunk size in characters")
	indexCmd.Flags().IntVar(&indexChunkOverlap, "chunk-overlap", config.DefaultIndexDefaults().ChunkOverlap, "text-mode fallback overlap in characters")
	indexCmd.Flags().IntVar(&indexBatchSize, "batch-size", config.DefaultIndexDefaults().BatchSize, "number of chunks embedded per batch")
	indexEmbedder.register(indexCmd)

	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	emb, err := indexEmbedder.build()
	if err != nil {
		return err
	}

	log := logging.New(logging.Config{})

	stats, err := flow.IndexCode(context.Background(), flow.CodeOptions{
		SourceRoot:   args[0],
		DBPath:       indexDBPath,
		ChunkSize:    indexChunkSize,
		ChunkOverlap: indexChunkOverlap,
		BatchSize:    indexBatchSize,
	}, emb, log)
	if err != nil {
		return fmt.Errorf("indexing %s: %w", args[0], err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
