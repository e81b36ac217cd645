package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tormodhaugland/codemem/internal/config"
	"github.com/tormodhaugland/codemem/internal/query"
)

var (
	queryAgent      string
	queryCategory   string
	queryTopK       int
	queryDBPath     string
	queryJSONOutput bool
	queryHybrid     bool
	queryNoHybrid   bool
	queryEmbedder   embedderFlags
)

var queryCmd = &cobra.Command{
	Use:   "query QUERY",
	Short: "Search an agent's knowledge entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryAgent, "agent", "", "agent id (routes to <agent>.sqlite, or the shared db when empty)")
	queryCmd.Flags().StringVar(&queryCategory, "category", "", "restrict to one knowledge category")
	queryCmd.Flags().IntVar(&queryTopK, "top-k", config.DefaultTopK, "number of results to return")
	queryCmd.Flags().StringVar(&queryDBPath, "db", "", "override the default knowledge database path")
	queryCmd.Flags().BoolVar(&queryJSONOutput, "json-output", false, "print results as JSON")
	queryCmd.Flags().BoolVar(&queryHybrid, "hybrid", true, "fuse vector and full-text results by reciprocal rank")
	queryCmd.Flags().BoolVar(&queryNoHybrid, "no-hybrid", false, "use pure vector search instead of hybrid fusion")
	queryEmbedder.register(queryCmd)

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	dbPath := queryDBPath
	if dbPath == "" {
		dbPath = config.KnowledgeDBPath(queryAgent)
	}

	emb, err := queryEmbedder.build()
	if err != nil {
		return err
	}

	hybrid := queryHybrid && !queryNoHybrid

	results, err := query.QueryKnowledge(context.Background(), dbPath, args[0], queryCategory, queryTopK, hybrid, emb)
	if err != nil {
		return fmt.Errorf("querying knowledge: %w", err)
	}

	if queryJSONOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RELEVANCE\tCATEGORY\tSTORED\tCONTENT")
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%s\t%s\t%s\n", r.Relevance, r.Category, r.StoredAt, truncate(r.Content, 80))
	}
	w.Flush()
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
