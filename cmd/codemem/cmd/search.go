package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/tormodhaugland/codemem/internal/config"
	"github.com/tormodhaugland/codemem/internal/query"
)

var (
	searchDBPath     string
	searchTopK       int
	searchJSONOutput bool
	searchEmbedder   embedderFlags
)

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Vector search over indexed code chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchDBPath, "db", config.CodebaseDBPath(), "path to the code index database")
	searchCmd.Flags().IntVar(&searchTopK, "top-k", config.DefaultTopK, "number of results to return")
	searchCmd.Flags().BoolVar(&searchJSONOutput, "json-output", false, "print results as JSON")
	searchEmbedder.register(searchCmd)

	rootCmd.AddCommand(searchCmd)
}

var searchHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))

func runSearch(cmd *cobra.Command, args []string) error {
	emb, err := searchEmbedder.build()
	if err != nil {
		return err
	}

	results, err := query.SearchCodebase(context.Background(), searchDBPath, args[0], searchTopK, emb)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	if searchJSONOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results")
		return nil
	}

	fmt.Println(searchHeaderStyle.Render(fmt.Sprintf("Found %d results", len(results))))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tFILE\tLOCATION\tLANGUAGE")
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%s\t%s\t%s\n", r.Score, r.Filename, r.Location, r.Language)
	}
	w.Flush()

	for i, r := range results {
		fmt.Printf("\n--- %d. %s:%s ---\n%s\n", i+1, r.Filename, r.Location, strings.TrimSpace(r.Code))
	}

	return nil
}
