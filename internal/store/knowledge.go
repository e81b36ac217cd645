package store

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/tormodhaugland/codemem/internal/vectorcodec"
)

const knowledgeSchemaVersion = 1

const knowledgeSchemaSQL = `
CREATE TABLE IF NOT EXISTS knowledge (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	content TEXT NOT NULL,
	category TEXT NOT NULL,
	tags TEXT,
	stored_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_knowledge_category ON knowledge(category);
`

const knowledgeVecSchemaSQL = `
CREATE VIRTUAL TABLE IF NOT EXISTS knowledge_vec USING vec0(
	id INTEGER PRIMARY KEY,
	embedding float[384]
);
`

const knowledgeFTSTriggersSQL = `
CREATE TRIGGER IF NOT EXISTS knowledge_ai AFTER INSERT ON knowledge BEGIN
	INSERT INTO knowledge_fts(rowid, content, category) VALUES (new.id, new.content, new.category);
END;

CREATE TRIGGER IF NOT EXISTS knowledge_ad AFTER DELETE ON knowledge BEGIN
	INSERT INTO knowledge_fts(knowledge_fts, rowid, content, category) VALUES('delete', old.id, old.content, old.category);
END;

CREATE TRIGGER IF NOT EXISTS knowledge_au AFTER UPDATE ON knowledge BEGIN
	INSERT INTO knowledge_fts(knowledge_fts, rowid, content, category) VALUES('delete', old.id, old.content, old.category);
	INSERT INTO knowledge_fts(rowid, content, category) VALUES (new.id, new.content, new.category);
END;
`

// EnsureKnowledgeSchema idempotently creates the knowledge table, its
// vector companion (when available), and the full-text virtual table
// plus sync triggers. On first creation of the full-text table, a
// 'rebuild' command back-fills rows inserted before the triggers
// existed; subsequent initializations do not rebuild.
func (db *DB) EnsureKnowledgeSchema() error {
	if err := db.applyMigration(300+knowledgeSchemaVersion, knowledgeSchemaSQL); err != nil {
		return err
	}

	ftsExistedBefore, err := db.tableExists("knowledge_fts")
	if err != nil {
		return err
	}

	if _, err := db.conn.Exec(`CREATE VIRTUAL TABLE IF NOT EXISTS knowledge_fts USING fts5(content, category, content='knowledge', content_rowid='id')`); err != nil {
		return fmt.Errorf("creating knowledge_fts: %w", err)
	}
	if _, err := db.conn.Exec(knowledgeFTSTriggersSQL); err != nil {
		return fmt.Errorf("creating knowledge_fts triggers: %w", err)
	}

	if !ftsExistedBefore {
		if _, err := db.conn.Exec(`INSERT INTO knowledge_fts(knowledge_fts) VALUES('rebuild')`); err != nil {
			return fmt.Errorf("rebuilding knowledge_fts: %w", err)
		}
	}

	if db.vectorAvailable {
		if err := db.applyMigration(310+knowledgeSchemaVersion, knowledgeVecSchemaSQL); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) tableExists(name string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type IN ('table','view') AND name = ?", name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking table %q: %w", name, err)
	}
	return count > 0, nil
}

// InsertKnowledge inserts a new knowledge entry. tagsJSON is the
// pre-serialized JSON object for the tag map, or "" when there are no
// tags (stored as NULL). Duplicates are permitted; this is
// insert-only. Returns the new row id.
func (db *DB) InsertKnowledge(content, category, tagsJSON string, embedding []float32) (int64, error) {
	now := nowMicros()
	var tags any
	if tagsJSON != "" {
		tags = tagsJSON
	}

	res, err := db.conn.Exec(`
		INSERT INTO knowledge (content, category, tags, stored_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, content, category, tags, now, now)
	if err != nil {
		return 0, fmt.Errorf("inserting knowledge entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading knowledge insert id: %w", err)
	}

	if db.vectorAvailable {
		blob := vectorcodec.Encode(embedding)
		if _, err := db.conn.Exec(`INSERT OR REPLACE INTO knowledge_vec (id, embedding) VALUES (?, ?)`, id, blob); err != nil {
			return 0, fmt.Errorf("inserting knowledge vector %d: %w", id, err)
		}
	}

	return id, nil
}

// KnowledgeResult is a single knowledge-search hit.
type KnowledgeResult struct {
	ID        int64
	Content   string
	Category  string
	Tags      string
	StoredAt  string
	UpdatedAt string
	Relevance float64
}

func scanKnowledgeRow(rows *sql.Rows) (KnowledgeResult, error) {
	var r KnowledgeResult
	var tags sql.NullString
	if err := rows.Scan(&r.ID, &r.Content, &r.Category, &tags, &r.StoredAt, &r.UpdatedAt); err != nil {
		return r, fmt.Errorf("scanning knowledge row: %w", err)
	}
	r.Tags = tags.String
	return r, nil
}

// SearchKnowledgeVector runs a vector-match query against
// knowledge_vec, joined to knowledge. When category is non-empty, 3*k
// candidates are fetched and filtered in memory (the vector-match
// query cannot mix arbitrary predicates with MATCH/k), then truncated
// to k. Returns an empty slice without error if the vector extension
// is unavailable.
func (db *DB) SearchKnowledgeVector(query []float32, category string, k int) ([]KnowledgeResult, error) {
	if !db.vectorAvailable {
		return []KnowledgeResult{}, nil
	}

	fetchK := k
	if category != "" {
		fetchK = k * 3
	}

	blob := vectorcodec.Encode(query)
	rows, err := db.conn.Query(`
		SELECT k.id, k.content, k.category, k.tags, k.stored_at, k.updated_at, v.distance
		FROM knowledge_vec v
		JOIN knowledge k ON k.id = v.id
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance ASC
	`, blob, fetchK)
	if err != nil {
		return nil, fmt.Errorf("searching knowledge vectors: %w", err)
	}
	defer rows.Close()

	var results []KnowledgeResult
	for rows.Next() {
		var id int64
		var content, cat, storedAt, updatedAt string
		var tags sql.NullString
		var distance float64
		if err := rows.Scan(&id, &content, &cat, &tags, &storedAt, &updatedAt, &distance); err != nil {
			return nil, fmt.Errorf("scanning knowledge vector result: %w", err)
		}
		if category != "" && cat != category {
			continue
		}
		results = append(results, KnowledgeResult{
			ID: id, Content: content, Category: cat, Tags: tags.String,
			StoredAt: storedAt, UpdatedAt: updatedAt, Relevance: 1 - distance,
		})
		if len(results) >= k {
			break
		}
	}
	if results == nil {
		results = []KnowledgeResult{}
	}
	return results, nil
}

// SearchKnowledgeFullText escapes embedded quotation marks by
// doubling them, wraps the query in quotation marks to force a phrase
// search, and executes a full-text MATCH ordered by rank ascending,
// with an optional category filter and a LIMIT k. Relevance is zero
// in the returned entries; it is recomputed during hybrid fusion.
func (db *DB) SearchKnowledgeFullText(query, category string, k int) ([]KnowledgeResult, error) {
	escaped := strings.ReplaceAll(query, `"`, `""`)
	phrase := `"` + escaped + `"`

	sqlText := `
		SELECT k.id, k.content, k.category, k.tags, k.stored_at, k.updated_at
		FROM knowledge_fts f
		JOIN knowledge k ON k.id = f.rowid
		WHERE knowledge_fts MATCH ?`
	args := []any{phrase}
	if category != "" {
		sqlText += " AND k.category = ?"
		args = append(args, category)
	}
	sqlText += " ORDER BY rank LIMIT ?"
	args = append(args, k)

	rows, err := db.conn.Query(sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("searching knowledge full text: %w", err)
	}
	defer rows.Close()

	var results []KnowledgeResult
	for rows.Next() {
		r, err := scanKnowledgeRow(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if results == nil {
		results = []KnowledgeResult{}
	}
	return results, nil
}

// rrfK is the standard Reciprocal Rank Fusion constant.
const rrfK = 60

// hybridKey is the stable surrogate identifier used to align rows
// returned by the vector and full-text searches: stored_at plus the
// first 80 bytes of content. Fusion keys on this pair, not on the row
// ID that both searches also return.
func hybridKey(r KnowledgeResult) string {
	content := r.Content
	if len(content) > 80 {
		content = content[:80]
	}
	return r.StoredAt + "\x00" + content
}

// SearchKnowledgeHybrid over-fetches 2*k results from each of vector
// and full-text search, fuses them by Reciprocal Rank Fusion keyed on
// (stored_at, content[:80]), and returns the top k by fused score
// descending with Relevance set to that score.
func (db *DB) SearchKnowledgeHybrid(query []float32, queryText, category string, k int) ([]KnowledgeResult, error) {
	vecResults, err := db.SearchKnowledgeVector(query, category, k*2)
	if err != nil {
		return nil, err
	}
	ftsResults, err := db.SearchKnowledgeFullText(queryText, category, k*2)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64)
	bodies := make(map[string]KnowledgeResult)
	for rank, r := range vecResults {
		key := hybridKey(r)
		scores[key] += 1.0 / float64(rrfK+rank+1)
		if _, ok := bodies[key]; !ok {
			bodies[key] = r
		}
	}
	for rank, r := range ftsResults {
		key := hybridKey(r)
		scores[key] += 1.0 / float64(rrfK+rank+1)
		if _, ok := bodies[key]; !ok {
			bodies[key] = r
		}
	}

	type fused struct {
		key   string
		score float64
	}
	var ranked []fused
	for key, score := range scores {
		ranked = append(ranked, fused{key, score})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if len(ranked) > k {
		ranked = ranked[:k]
	}

	results := make([]KnowledgeResult, 0, len(ranked))
	for _, f := range ranked {
		r := bodies[f.key]
		r.Relevance = f.score
		results = append(results, r)
	}
	return results, nil
}
