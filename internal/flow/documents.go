package flow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/tormodhaugland/codemem/internal/chunker"
	"github.com/tormodhaugland/codemem/internal/convert"
	"github.com/tormodhaugland/codemem/internal/embedder"
	"github.com/tormodhaugland/codemem/internal/store"
	"github.com/tormodhaugland/codemem/internal/walker"
)

const documentLanguage = "document"

// DocumentOptions configures an IndexDocuments run.
type DocumentOptions struct {
	SourceRoot   string
	DBPath       string
	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
}

// IndexDocuments walks SourceRoot for rich-document files, converts
// each to markdown, and indexes the result exactly like IndexCode,
// but conversion failures and empty output count as skipped rather
// than fatal.
func IndexDocuments(ctx context.Context, opts DocumentOptions, emb embedder.Embedder, conv convert.Converter, log *slog.Logger) (Stats, error) {
	var stats Stats

	if err := resolveRoot(opts.SourceRoot); err != nil {
		return stats, err
	}

	db, err := store.Open(opts.DBPath)
	if err != nil {
		return stats, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.EnsureMetadataSchema(); err != nil {
		return stats, fmt.Errorf("initializing metadata schema: %w", err)
	}
	if err := db.EnsureCodeSchema(); err != nil {
		return stats, fmt.Errorf("initializing code schema: %w", err)
	}

	paths, err := walker.Walk(opts.SourceRoot, walker.DocumentExtensions)
	if err != nil {
		return stats, fmt.Errorf("walking source root: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return stats, err
	}
	defer tx.Rollback()

	purged, err := reconcileChunkerVersion(tx)
	if err != nil {
		return stats, err
	}
	stats.ChunksPurged = purged

	chunkCfg := chunker.Config{ChunkSize: opts.ChunkSize, ChunkOverlap: opts.ChunkOverlap}
	ck := chunker.New()

	type pending struct {
		filename string
		location string
		text     string
	}

	var buffer []pending
	flush := func() error {
		if len(buffer) == 0 {
			return nil
		}
		texts := make([]string, len(buffer))
		for i, p := range buffer {
			texts[i] = p.text
		}

		vectors, err := emb.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch: %w", err)
		}

		for i, p := range buffer {
			if _, err := tx.UpsertCodeChunk(p.filename, p.location, documentLanguage, p.text, vectors[i]); err != nil {
				return fmt.Errorf("upserting chunk %s:%s: %w", p.filename, p.location, err)
			}
		}
		stats.ChunksIndexed += len(buffer)
		buffer = buffer[:0]
		return nil
	}

	for _, relPath := range paths {
		fullPath := filepath.Join(opts.SourceRoot, filepath.FromSlash(relPath))

		markdown, err := conv.Convert(fullPath)
		if err != nil {
			stats.FilesSkipped++
			if log != nil {
				log.Warn("skipping document: conversion failed", "file", relPath, "error", err)
			}
			continue
		}
		if strings.TrimSpace(markdown) == "" {
			stats.FilesSkipped++
			if log != nil {
				log.Warn("skipping document: empty conversion output", "file", relPath)
			}
			continue
		}

		chunks, err := ck.Chunk(markdown, documentLanguage, chunkCfg)
		if err != nil {
			stats.FilesSkipped++
			if log != nil {
				log.Warn("skipping document: chunking failed", "file", relPath, "error", err)
			}
			continue
		}

		keep := make([]string, len(chunks))
		for i, c := range chunks {
			keep[i] = c.Location
		}

		deleted, err := tx.DeleteStaleChunks(relPath, keep)
		if err != nil {
			return stats, fmt.Errorf("deleting stale chunks for %s: %w", relPath, err)
		}
		stats.ChunksDeleted += deleted
		stats.FilesProcessed++

		for _, c := range chunks {
			buffer = append(buffer, pending{filename: relPath, location: c.Location, text: c.Text})
			if len(buffer) >= opts.BatchSize {
				if err := flush(); err != nil {
					return stats, err
				}
			}
		}
	}

	if err := flush(); err != nil {
		return stats, err
	}

	if err := tx.Commit(); err != nil {
		return stats, err
	}

	if log != nil {
		log.Info("document index run complete",
			"files_processed", stats.FilesProcessed,
			"files_skipped", stats.FilesSkipped,
			"chunks_indexed", stats.ChunksIndexed,
			"chunks_deleted", stats.ChunksDeleted,
		)
	}

	return stats, nil
}
