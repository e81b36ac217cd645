package store

import (
	"database/sql"
	"errors"
	"fmt"
)

const metadataSchemaVersion = 1

const metadataSchemaSQL = `
CREATE TABLE IF NOT EXISTS metadata (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// ChunkerVersionKey is the only metadata key the core requires.
const ChunkerVersionKey = "chunker_version"

// EnsureMetadataSchema idempotently creates the metadata table.
func (db *DB) EnsureMetadataSchema() error {
	return db.applyMigration(100+metadataSchemaVersion, metadataSchemaSQL)
}

// GetMetadata returns the stored value for key, and whether it existed.
func (db *DB) GetMetadata(key string) (string, bool, error) {
	return getMetadata(db.conn, key)
}

// GetMetadata is the Tx form of DB.GetMetadata, reading through the
// run's own uncommitted writes as well as committed state.
func (tx *Tx) GetMetadata(key string) (string, bool, error) {
	return getMetadata(tx.tx, key)
}

func getMetadata(ex execer, key string) (string, bool, error) {
	var value string
	err := ex.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading metadata %q: %w", key, err)
	}
	return value, true, nil
}

// SetMetadata upserts a key-value pair, autocommitting immediately.
func (db *DB) SetMetadata(key, value string) error {
	return setMetadata(db.conn, key, value)
}

// SetMetadata is the Tx form of DB.SetMetadata: the write is visible
// only within tx until tx.Commit is called.
func (tx *Tx) SetMetadata(key, value string) error {
	return setMetadata(tx.tx, key, value)
}

func setMetadata(ex execer, key, value string) error {
	_, err := ex.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("writing metadata %q: %w", key, err)
	}
	return nil
}

// ChunkerVersion returns the stored chunker_version, or "" if unset.
func (db *DB) ChunkerVersion() (string, error) {
	v, _, err := db.GetMetadata(ChunkerVersionKey)
	return v, err
}

// SetChunkerVersion records the current chunker version, autocommitting
// immediately.
func (db *DB) SetChunkerVersion(version string) error {
	return db.SetMetadata(ChunkerVersionKey, version)
}

// SetChunkerVersion is the Tx form of DB.SetChunkerVersion.
func (tx *Tx) SetChunkerVersion(version string) error {
	return tx.SetMetadata(ChunkerVersionKey, version)
}
