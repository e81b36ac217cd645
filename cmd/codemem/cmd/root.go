// Package cmd wires the codemem CLI subcommands onto a cobra root
// command, in the teacher's main.go + cmd.Execute() idiom.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "codemem",
	Short: "Embedded semantic search over source code and agent knowledge",
	Long: `codemem indexes a source tree or document folder into a local
SQLite database of chunk embeddings, and answers nearest-neighbor
queries over code and free-text knowledge entries.`,
}

// Execute runs the root command; errors are printed by cobra and
// translate to a non-zero exit in main.go.
func Execute() error {
	return rootCmd.Execute()
}
