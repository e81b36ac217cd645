package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tormodhaugland/codemem/internal/vectorcodec"
)

const codeSchemaVersion = 1

const codeSchemaSQL = `
CREATE TABLE IF NOT EXISTS code_chunks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	filename TEXT NOT NULL,
	location TEXT NOT NULL,
	language TEXT,
	code TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	UNIQUE(filename, location)
);

CREATE INDEX IF NOT EXISTS idx_code_chunks_filename ON code_chunks(filename);
`

const codeVecSchemaSQL = `
CREATE VIRTUAL TABLE IF NOT EXISTS code_chunks_vec USING vec0(
	id INTEGER PRIMARY KEY,
	embedding float[384]
);
`

// EnsureCodeSchema idempotently creates the code_chunks table (and,
// when the vector extension is available, its vector companion
// table).
func (db *DB) EnsureCodeSchema() error {
	if err := db.applyMigration(200+codeSchemaVersion, codeSchemaSQL); err != nil {
		return err
	}
	if db.vectorAvailable {
		if err := db.applyMigration(210+codeSchemaVersion, codeVecSchemaSQL); err != nil {
			return err
		}
	}
	return nil
}

// nowMicros formats the current UTC time at microsecond granularity
// in RFC-3339 form, the timestamp layout used across code_chunks and
// knowledge rows.
func nowMicros() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
}

// UpsertCodeChunk inserts or updates the row identified by
// (filename, location), autocommitting immediately. Callers running a
// full index (internal/flow) should instead go through a Tx obtained
// from DB.Begin, so the write only becomes durable at the run's final
// commit.
func (db *DB) UpsertCodeChunk(filename, location, language, code string, embedding []float32) (int64, error) {
	return upsertCodeChunk(db.conn, db.vectorAvailable, filename, location, language, code, embedding)
}

// UpsertCodeChunk is the Tx form of DB.UpsertCodeChunk: the write is
// visible only within tx until tx.Commit is called.
func (tx *Tx) UpsertCodeChunk(filename, location, language, code string, embedding []float32) (int64, error) {
	return upsertCodeChunk(tx.tx, tx.vectorAvailable, filename, location, language, code, embedding)
}

// upsertCodeChunk holds the insert-or-update logic shared by the DB
// and Tx forms. On conflict, language/code/updated_at are updated in
// place. If the vector extension is available, the vector companion
// row is inserted-or-replaced for the same id. Returns the row id.
func upsertCodeChunk(ex execer, vectorAvailable bool, filename, location, language, code string, embedding []float32) (int64, error) {
	now := nowMicros()
	_, err := ex.Exec(`
		INSERT INTO code_chunks (filename, location, language, code, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(filename, location) DO UPDATE SET
			language = excluded.language,
			code = excluded.code,
			updated_at = excluded.updated_at
	`, filename, location, language, code, now)
	if err != nil {
		return 0, fmt.Errorf("upserting code chunk %s:%s: %w", filename, location, err)
	}

	var id int64
	row := ex.QueryRow("SELECT id FROM code_chunks WHERE filename = ? AND location = ?", filename, location)
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("reselecting code chunk id for %s:%s: %w", filename, location, err)
	}

	if vectorAvailable {
		blob := vectorcodec.Encode(embedding)
		_, err := ex.Exec(`INSERT OR REPLACE INTO code_chunks_vec (id, embedding) VALUES (?, ?)`, id, blob)
		if err != nil {
			return 0, fmt.Errorf("upserting code chunk vector %d: %w", id, err)
		}
	}

	return id, nil
}

// DeleteStaleChunks deletes every code_chunks row for filename whose
// location is not in keep, along with its vector companion, as its
// own standalone transaction that commits immediately. An empty keep
// set deletes all rows for the filename. Returns the number of
// deleted text rows.
func (db *DB) DeleteStaleChunks(filename string, keep []string) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning stale-chunk deletion: %w", err)
	}
	defer tx.Rollback()

	n, err := deleteStaleChunks(tx, db.vectorAvailable, filename, keep)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing stale-chunk deletion: %w", err)
	}
	return n, nil
}

// DeleteStaleChunks is the Tx form of DB.DeleteStaleChunks: the
// deletion is visible only within tx until tx.Commit is called.
func (tx *Tx) DeleteStaleChunks(filename string, keep []string) (int, error) {
	return deleteStaleChunks(tx.tx, tx.vectorAvailable, filename, keep)
}

// deleteStaleChunks holds the stale-chunk selection/deletion logic
// shared by the DB and Tx forms.
func deleteStaleChunks(ex execer, vectorAvailable bool, filename string, keep []string) (int, error) {
	var ids []int64
	var rows *sql.Rows
	var err error
	if len(keep) == 0 {
		rows, err = ex.Query("SELECT id FROM code_chunks WHERE filename = ?", filename)
	} else {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",")
		args := make([]any, 0, len(keep)+1)
		args = append(args, filename)
		for _, k := range keep {
			args = append(args, k)
		}
		rows, err = ex.Query(fmt.Sprintf(
			"SELECT id FROM code_chunks WHERE filename = ? AND location NOT IN (%s)", placeholders,
		), args...)
	}
	if err != nil {
		return 0, fmt.Errorf("selecting stale chunks for %s: %w", filename, err)
	}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning stale chunk id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()

	if len(ids) == 0 {
		return 0, nil
	}

	for _, id := range ids {
		if _, err := ex.Exec("DELETE FROM code_chunks WHERE id = ?", id); err != nil {
			return 0, fmt.Errorf("deleting stale chunk %d: %w", id, err)
		}
		if vectorAvailable {
			if _, err := ex.Exec("DELETE FROM code_chunks_vec WHERE id = ?", id); err != nil {
				return 0, fmt.Errorf("deleting stale chunk vector %d: %w", id, err)
			}
		}
	}

	return len(ids), nil
}

// PurgeAllCodeChunks deletes every row from code_chunks and its
// vector companion, as its own standalone transaction that commits
// immediately. Used on chunker-version change. Returns the number of
// deleted text rows.
func (db *DB) PurgeAllCodeChunks() (int, error) {
	var count int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM code_chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting code chunks before purge: %w", err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning purge: %w", err)
	}
	defer tx.Rollback()

	if err := purgeAllCodeChunks(tx, db.vectorAvailable); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing purge: %w", err)
	}
	return count, nil
}

// PurgeAllCodeChunks is the Tx form of DB.PurgeAllCodeChunks: the
// purge is visible only within tx until tx.Commit is called. count is
// read through the same tx so it reflects rows this run can actually
// see.
func (tx *Tx) PurgeAllCodeChunks() (int, error) {
	var count int
	if err := tx.tx.QueryRow("SELECT COUNT(*) FROM code_chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting code chunks before purge: %w", err)
	}
	if err := purgeAllCodeChunks(tx.tx, tx.vectorAvailable); err != nil {
		return 0, err
	}
	return count, nil
}

// purgeAllCodeChunks holds the delete-everything logic shared by the
// DB and Tx forms.
func purgeAllCodeChunks(ex execer, vectorAvailable bool) error {
	if _, err := ex.Exec("DELETE FROM code_chunks"); err != nil {
		return fmt.Errorf("purging code_chunks: %w", err)
	}
	if vectorAvailable {
		if _, err := ex.Exec("DELETE FROM code_chunks_vec"); err != nil {
			return fmt.Errorf("purging code_chunks_vec: %w", err)
		}
	}
	return nil
}

// CodeResult is a single code-search hit.
type CodeResult struct {
	Filename string
	Location string
	Language string
	Code     string
	Score    float64
}

// SearchCode runs a vector-match query against code_chunks_vec,
// joins to code_chunks, and returns results ordered by ascending
// distance with Score = 1 - distance. Returns an empty slice without
// error if the vector extension is unavailable.
func (db *DB) SearchCode(query []float32, k int) ([]CodeResult, error) {
	if !db.vectorAvailable {
		return []CodeResult{}, nil
	}

	blob := vectorcodec.Encode(query)
	rows, err := db.conn.Query(`
		SELECT c.filename, c.location, c.language, c.code, v.distance
		FROM code_chunks_vec v
		JOIN code_chunks c ON c.id = v.id
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance ASC
	`, blob, k)
	if err != nil {
		return nil, fmt.Errorf("searching code chunks: %w", err)
	}
	defer rows.Close()

	var results []CodeResult
	for rows.Next() {
		var r CodeResult
		var distance float64
		var language sql.NullString
		if err := rows.Scan(&r.Filename, &r.Location, &language, &r.Code, &distance); err != nil {
			return nil, fmt.Errorf("scanning code search result: %w", err)
		}
		r.Language = language.String
		r.Score = 1 - distance
		results = append(results, r)
	}
	if results == nil {
		results = []CodeResult{}
	}
	return results, nil
}
