package main

import (
	"os"

	"github.com/tormodhaugland/codemem/cmd/codemem/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
