package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/codemem/internal/config"
	"github.com/tormodhaugland/codemem/internal/store"
)

var validKnowledgeCategories = map[string]bool{
	"pattern":    true,
	"pitfall":    true,
	"codebase":   true,
	"preference": true,
	"outcome":    true,
}

var (
	storeAgent    string
	storeCategory string
	storeTags     []string
	storeDBPath   string
	storeEmbedder embedderFlags
)

var storeCmd = &cobra.Command{
	Use:   "store CONTENT",
	Short: "Store a knowledge entry (a fact tagged by category) for an agent",
	Args:  cobra.ExactArgs(1),
	RunE:  runStore,
}

func init() {
	storeCmd.Flags().StringVar(&storeAgent, "agent", "", "agent id (routes to <agent>.sqlite, or the shared db when empty)")
	storeCmd.Flags().StringVar(&storeCategory, "category", "", "one of: pattern, pitfall, codebase, preference, outcome")
	storeCmd.Flags().StringArrayVar(&storeTags, "tag", nil, "tag in key:value form; repeatable")
	storeCmd.Flags().StringVar(&storeDBPath, "db", "", "override the default knowledge database path")
	storeEmbedder.register(storeCmd)
	_ = storeCmd.MarkFlagRequired("category")

	rootCmd.AddCommand(storeCmd)
}

func runStore(cmd *cobra.Command, args []string) error {
	if !validKnowledgeCategories[storeCategory] {
		return fmt.Errorf("invalid --category %q: must be one of pattern, pitfall, codebase, preference, outcome", storeCategory)
	}

	tags := map[string]string{}
	for _, t := range storeTags {
		k, v, ok := strings.Cut(t, ":")
		if !ok {
			return fmt.Errorf("invalid --tag %q: expected key:value", t)
		}
		tags[k] = v
	}
	var tagsJSON string
	if len(tags) > 0 {
		b, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("encoding tags: %w", err)
		}
		tagsJSON = string(b)
	}

	dbPath := storeDBPath
	if dbPath == "" {
		dbPath = config.KnowledgeDBPath(storeAgent)
	}

	emb, err := storeEmbedder.build()
	if err != nil {
		return err
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.EnsureKnowledgeSchema(); err != nil {
		return fmt.Errorf("initializing knowledge schema: %w", err)
	}

	vector, err := emb.Embed(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("embedding content: %w", err)
	}

	id, err := db.InsertKnowledge(args[0], storeCategory, tagsJSON, vector)
	if err != nil {
		return fmt.Errorf("storing knowledge entry: %w", err)
	}

	fmt.Printf("Stored entry %d\n", id)
	return nil
}
