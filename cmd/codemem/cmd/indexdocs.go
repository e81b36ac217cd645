package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/codemem/internal/config"
	"github.com/tormodhaugland/codemem/internal/convert"
	"github.com/tormodhaugland/codemem/internal/flow"
	"github.com/tormodhaugland/codemem/internal/logging"
)

var (
	indexDocsDBPath       string
	indexDocsChunkSize    int
	indexDocsChunkOverlap int
	indexDocsBatchSize    int
	indexDocsEmbedder     embedderFlags
)

var indexDocsCmd = &cobra.Command{
	Use:   "index-docs DOCS_PATH",
	Short: "Index rich documents (PDF/DOCX/PPTX/XLSX/HTML) into the code embedding database",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexDocs,
}

func init() {
	indexDocsCmd.Flags().StringVar(&indexDocsDBPath, "db", config.CodebaseDBPath(), "path to the code index database")
	indexDocsCmd.Flags().IntVar(&indexDocsChunkSize, "chunk-size", config.DefaultIndexDefaults().ChunkSize, "target chunk size in characters")
	indexDocsCmd.Flags().IntVar(&indexDocsChunkOverlap, "chunk-overlap", config.DefaultIndexDefaults().ChunkOverlap, "text-mode fallback overlap in characters")
	indexDocsCmd.Flags().IntVar(&indexDocsBatchSize, "batch-size", config.DefaultIndexDefaults().BatchSize, "number of chunks embedded per batch")
	indexDocsEmbedder.register(indexDocsCmd)

	rootCmd.AddCommand(indexDocsCmd)
}

func runIndexDocs(cmd *cobra.Command, args []string) error {
	emb, err := indexDocsEmbedder.build()
	if err != nil {
		return err
	}

	log := logging.New(logging.Config{})

	stats, err := flow.IndexDocuments(context.Background(), flow.DocumentOptions{
		SourceRoot:   args[0],
		DBPath:       indexDocsDBPath,
		ChunkSize:    indexDocsChunkSize,
		ChunkOverlap: indexDocsChunkOverlap,
		BatchSize:    indexDocsBatchSize,
	}, emb, convert.New(), log)
	if err != nil {
		return fmt.Errorf("indexing documents under %s: %w", args[0], err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
