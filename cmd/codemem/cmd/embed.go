package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var embedEmbedder embedderFlags

var embedCmd = &cobra.Command{
	Use:   "embed TEXT",
	Short: "Print the embedding vector for a piece of text as a JSON array of floats",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmbed,
}

func init() {
	embedEmbedder.register(embedCmd)
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, args []string) error {
	emb, err := embedEmbedder.build()
	if err != nil {
		return err
	}

	vector, err := emb.Embed(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("embedding text: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	return enc.Encode(vector)
}
