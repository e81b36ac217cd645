package flow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tormodhaugland/codemem/internal/chunker"
	"github.com/tormodhaugland/codemem/internal/config"
	"github.com/tormodhaugland/codemem/internal/embedder"
	"github.com/tormodhaugland/codemem/internal/store"
	"github.com/tormodhaugland/codemem/internal/walker"
)

// CodeOptions configures an IndexCode run.
type CodeOptions struct {
	SourceRoot   string
	DBPath       string
	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
}

// IndexCode walks SourceRoot, chunks every indexable file, and
// upserts embeddings into the code index, purging stale chunks for
// files that changed and the whole table if the chunker version
// changed since the last run.
func IndexCode(ctx context.Context, opts CodeOptions, emb embedder.Embedder, log *slog.Logger) (Stats, error) {
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

	paths, err := walker.Walk(opts.SourceRoot, walker.CodeExtensions)
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
		language string
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
			if _, err := tx.UpsertCodeChunk(p.filename, p.location, p.language, p.text, vectors[i]); err != nil {
				return fmt.Errorf("upserting chunk %s:%s: %w", p.filename, p.location, err)
			}
		}
		stats.ChunksIndexed += len(buffer)
		buffer = buffer[:0]
		return nil
	}

	for _, relPath := range paths {
		fullPath := filepath.Join(opts.SourceRoot, filepath.FromSlash(relPath))

		raw, err := os.ReadFile(fullPath)
		if err != nil {
			continue
		}
		content := strings.ToValidUTF8(string(raw), "�")
		if strings.TrimSpace(content) == "" {
			continue
		}

		language := chunker.DetectLanguage(relPath)
		chunks, err := ck.Chunk(content, language, chunkCfg)
		if err != nil {
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
			buffer = append(buffer, pending{
				filename: relPath,
				location: c.Location,
				language: language,
				text:     c.Text,
			})
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
		log.Info("code index run complete",
			"files_processed", stats.FilesProcessed,
			"chunks_indexed", stats.ChunksIndexed,
			"chunks_deleted", stats.ChunksDeleted,
			"chunks_purged", stats.ChunksPurged,
		)
	}

	return stats, nil
}

// reconcileChunkerVersion purges all code chunks when the stored
// chunker_version differs from the compiled-in constant, and writes
// the new version, through the run's own transaction so a later
// failure in the same run leaves the purge uncommitted too.
func reconcileChunkerVersion(tx *store.Tx) (int, error) {
	stored, ok, err := tx.GetMetadata(store.ChunkerVersionKey)
	if err != nil {
		return 0, fmt.Errorf("reading chunker version: %w", err)
	}
	if ok && stored == config.ChunkerVersion {
		return 0, nil
	}

	purged, err := tx.PurgeAllCodeChunks()
	if err != nil {
		return 0, fmt.Errorf("purging code chunks on version change: %w", err)
	}
	if err := tx.SetChunkerVersion(config.ChunkerVersion); err != nil {
		return 0, fmt.Errorf("writing chunker version: %w", err)
	}
	return purged, nil
}
