// Package query implements the two read paths over an index: vector
// search over code chunks, and vector/full-text/hybrid search over
// knowledge entries. Each call owns its own database connection.
package query

import (
	"context"
	"fmt"

	"github.com/tormodhaugland/codemem/internal/embedder"
	"github.com/tormodhaugland/codemem/internal/store"
)

// SearchCodebase embeds query and returns the top-k nearest code
// chunks from the database at dbPath.
func SearchCodebase(ctx context.Context, dbPath, queryText string, k int, emb embedder.Embedder) ([]store.CodeResult, error) {
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.EnsureCodeSchema(); err != nil {
		return nil, fmt.Errorf("initializing code schema: %w", err)
	}

	vector, err := emb.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := db.SearchCode(vector, k)
	if err != nil {
		return nil, fmt.Errorf("searching code: %w", err)
	}
	return results, nil
}

// QueryKnowledge embeds query and runs either the hybrid RRF search
// or the pure vector search over the knowledge database at dbPath,
// optionally filtered by category.
func QueryKnowledge(ctx context.Context, dbPath, queryText, category string, k int, hybrid bool, emb embedder.Embedder) ([]store.KnowledgeResult, error) {
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.EnsureKnowledgeSchema(); err != nil {
		return nil, fmt.Errorf("initializing knowledge schema: %w", err)
	}

	vector, err := emb.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	if hybrid {
		results, err := db.SearchKnowledgeHybrid(vector, queryText, category, k)
		if err != nil {
			return nil, fmt.Errorf("searching knowledge (hybrid): %w", err)
		}
		return results, nil
	}

	results, err := db.SearchKnowledgeVector(vector, category, k)
	if err != nil {
		return nil, fmt.Errorf("searching knowledge (vector): %w", err)
	}
	return results, nil
}
