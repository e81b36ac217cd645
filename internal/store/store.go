// Package store is the persistence layer: it opens a SQLite database
// file, creates and migrates its schema, and exposes upsert/delete/
// search operations over code chunks and knowledge entries.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

// Dimension is the fixed embedding width used across the lifetime of
// a database file.
const Dimension = 384

// ErrVectorUnavailable reports that the sqlite-vec extension is not
// usable. The search methods in this package do not return it: they
// return empty results when the extension is unavailable.
var ErrVectorUnavailable = errors.New("store: vector extension unavailable")

func init() {
	sqlite_vec.Auto()
}

// DB wraps a SQLite connection together with its vector-availability
// flag. The flag belongs to this DB value: Open probes the extension
// for every DB it opens, and the result holds until Close.
type DB struct {
	conn            *sql.DB
	path            string
	vectorAvailable bool
}

// Open creates parent directories for dbPath if missing, opens the
// database, enables WAL journaling and synchronous=NORMAL, attempts
// to confirm the vector extension is usable, and creates the schema
// version table. It does not create the code/knowledge schemas
// themselves — callers call EnsureCodeSchema / EnsureKnowledgeSchema
// as needed, matching the teacher's per-area migration idiom.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting synchronous mode: %w", err)
	}

	db := &DB{conn: conn, path: dbPath}

	db.vectorAvailable = probeVectorExtension(conn)

	if err := db.ensureSchemaVersionTable(); err != nil {
		conn.Close()
		return nil, err
	}
	if err := db.EnsureMetadataSchema(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

// probeVectorExtension exercises a throwaway vec0 virtual table to
// confirm the extension registered by sqlite_vec.Auto() actually
// works against this connection. Failure here is never fatal: it
// only sets the sticky flag guarding vector operations.
func probeVectorExtension(conn *sql.DB) bool {
	_, err := conn.Exec(`CREATE VIRTUAL TABLE IF NOT EXISTS _vec_probe USING vec0(id INTEGER PRIMARY KEY, embedding float[1])`)
	if err != nil {
		return false
	}
	conn.Exec(`DROP TABLE IF EXISTS _vec_probe`)
	return true
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Conn exposes the underlying connection for callers that need
// direct access (transactions spanning multiple store operations).
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// execer is satisfied by both *sql.DB and *sql.Tx, letting the chunk
// and metadata mutation helpers below run unchanged against either a
// standalone autocommit connection or a caller-managed transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Tx is a single transaction spanning an entire indexing run: every
// write made through it is invisible to other connections, and to the
// rest of the process, until Commit is called. A run that fails
// midway — in particular an embedder batch failure — should be
// abandoned by calling Rollback (or simply never calling Commit; the
// deferred Rollback in the caller's Begin usage covers that), leaving
// the database exactly as it was before the run started.
type Tx struct {
	tx              *sql.Tx
	vectorAvailable bool
}

// Begin starts a transaction spanning a whole indexing run. Callers
// must eventually call either Commit (on success) or Rollback (on any
// error), conventionally via "defer tx.Rollback()" immediately after
// Begin — calling Rollback after a successful Commit is a no-op.
func (db *DB) Begin() (*Tx, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning run transaction: %w", err)
	}
	return &Tx{tx: tx, vectorAvailable: db.vectorAvailable}, nil
}

// Commit makes every write performed through tx durable.
func (tx *Tx) Commit() error {
	if err := tx.tx.Commit(); err != nil {
		return fmt.Errorf("committing run transaction: %w", err)
	}
	return nil
}

// Rollback discards every write performed through tx. Safe to call
// after a successful Commit (returns sql.ErrTxDone, which is ignored).
func (tx *Tx) Rollback() error {
	if err := tx.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rolling back run transaction: %w", err)
	}
	return nil
}

// VectorAvailable reports whether the vector extension loaded
// successfully for this connection.
func (db *DB) VectorAvailable() bool {
	return db.vectorAvailable
}

func (db *DB) ensureSchemaVersionTable() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}
	return nil
}

// applyMigration idempotently applies a named migration exactly once
// per schema area, tracked by a unique version number in
// schema_version. Mirrors the teacher's migrate() loop, generalized
// to be callable per-schema instead of once at Open.
func (db *DB) applyMigration(version int, sqlText string) error {
	var count int
	row := db.conn.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version)
	if err := row.Scan(&count); err != nil {
		return fmt.Errorf("checking schema version %d: %w", version, err)
	}
	if count > 0 {
		return nil
	}
	if _, err := db.conn.Exec(sqlText); err != nil {
		return fmt.Errorf("migration v%d: %w", version, err)
	}
	if _, err := db.conn.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("recording migration v%d: %w", version, err)
	}
	return nil
}
