// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/forms-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "forms.db"
)

// Store manages the forms SQLite database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int
}

// NewStore opens or creates the SQLite database at dataDir/index/forms.db,
// creating the schema if it does not exist.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		dataDir:    cfg.DataDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS forms (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			form_name TEXT NOT NULL UNIQUE,
			title TEXT,
			url TEXT,
			summary TEXT,
			raw_text TEXT,
			fields_count INTEGER,
			summary_path TEXT,
			raw_text_path TEXT,
			summary_embedding TEXT,
			raw_embedding TEXT,
			updated_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_forms_title ON forms(title)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='forms_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE forms_fts USING fts5(title, summary, raw_text, content=forms, content_rowid=rowid)`,
			`CREATE TRIGGER forms_ai AFTER INSERT ON forms BEGIN
				INSERT INTO forms_fts(rowid, title, summary, raw_text)
				VALUES (new.rowid, new.title, new.summary, new.raw_text);
			END`,
			`CREATE TRIGGER forms_ad AFTER DELETE ON forms BEGIN
				INSERT INTO forms_fts(forms_fts, rowid, title, summary, raw_text)
				VALUES('delete', old.rowid, old.title, old.summary, old.raw_text);
			END`,
			`CREATE TRIGGER forms_au AFTER UPDATE ON forms BEGIN
				INSERT INTO forms_fts(forms_fts, rowid, title, summary, raw_text)
				VALUES('delete', old.rowid, old.title, old.summary, old.raw_text);
				INSERT INTO forms_fts(rowid, title, summary, raw_text)
				VALUES (new.rowid, new.title, new.summary, new.raw_text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Record is one form's row for upsert: the index entry plus the raw text
// and embedding vectors that back search.
type Record struct {
	Entry            types.IndexEntry
	RawText          string
	SummaryEmbedding []float32
	RawEmbedding     []float32
}

// Upsert inserts or replaces a form's row. A nil embedding is stored as
// SQL NULL so partially processed forms still index for full-text search.
func (s *Store) Upsert(ctx context.Context, rec Record) error {
	summaryVec, err := marshalVector(rec.SummaryEmbedding)
	if err != nil {
		return err
	}
	rawVec, err := marshalVector(rec.RawEmbedding)
	if err != nil {
		return err
	}

	e := rec.Entry
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO forms (form_name, title, url, summary, raw_text, fields_count,
			summary_path, raw_text_path, summary_embedding, raw_embedding, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(form_name) DO UPDATE SET
			title = excluded.title,
			url = excluded.url,
			summary = excluded.summary,
			raw_text = excluded.raw_text,
			fields_count = excluded.fields_count,
			summary_path = excluded.summary_path,
			raw_text_path = excluded.raw_text_path,
			summary_embedding = excluded.summary_embedding,
			raw_embedding = excluded.raw_embedding,
			updated_at = excluded.updated_at`,
		e.FormName, e.Title, e.URL, e.Summary, rec.RawText, e.FieldsCount,
		e.SummaryPath, e.RawTextPath, summaryVec, rawVec,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upserting form %s: %w", e.FormName, err)
	}
	return nil
}

// Count returns the number of indexed forms.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM forms`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting forms: %w", err)
	}
	return n, nil
}

// marshalVector encodes a vector as JSON, or NULL for nil.
func marshalVector(vec []float32) (any, error) {
	if vec == nil {
		return nil, nil
	}
	data, err := json.Marshal(vec)
	if err != nil {
		return nil, fmt.Errorf("marshaling embedding: %w", err)
	}
	return string(data), nil
}

func unmarshalVector(raw sql.NullString) ([]float32, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var vec []float32
	if err := json.Unmarshal([]byte(raw.String), &vec); err != nil {
		return nil, fmt.Errorf("parsing embedding: %w", err)
	}
	return vec, nil
}
