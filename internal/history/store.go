// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists conversion attempts in a local SQLite database
// with full-text search over the produced USFM.
package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/digitallegionke/USFM/pkg/types"
)

const dbFile = "usfm.db"

// Store manages the conversion history SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the history database at historyDir/usfm.db and
// creates the schema if it does not exist.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.HistoryDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(cfg.HistoryDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
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
		`CREATE TABLE IF NOT EXISTS conversions (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			model TEXT NOT NULL,
			status TEXT NOT NULL,
			source_chars INTEGER NOT NULL,
			output_chars INTEGER NOT NULL,
			usfm TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_id ON conversions(id)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_created_at ON conversions(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='conversions_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE conversions_fts USING fts5(usfm, content=conversions, content_rowid=rowid)`,
			`CREATE TRIGGER conversions_ai AFTER INSERT ON conversions BEGIN
				INSERT INTO conversions_fts(rowid, usfm) VALUES (new.rowid, new.usfm);
			END`,
			`CREATE TRIGGER conversions_ad AFTER DELETE ON conversions BEGIN
				INSERT INTO conversions_fts(conversions_fts, rowid, usfm) VALUES('delete', old.rowid, old.usfm);
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

// StableID derives the record ID from the source text and model: the first
// 12 hex characters of SHA-256(source + model). Identical input converted
// with the same model shares an ID across attempts.
func StableID(sourceText, model string) string {
	h := sha256.New()
	h.Write([]byte(sourceText))
	h.Write([]byte(model))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Record appends one conversion attempt to the history.
func (s *Store) Record(ctx context.Context, rec types.ConversionRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (id, created_at, model, status, source_chars, output_chars, usfm, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.Format(time.RFC3339), rec.Model, string(rec.Status),
		rec.SourceChars, rec.OutputChars, rec.USFM, rec.Error)
	if err != nil {
		return fmt.Errorf("recording conversion %s: %w", rec.ID, err)
	}
	return nil
}

const recordColumns = `id, created_at, model, status, source_chars, output_chars, usfm, error`

func scanRecord(row interface{ Scan(...any) error }) (types.ConversionRecord, error) {
	var rec types.ConversionRecord
	var createdAt, status string
	if err := row.Scan(&rec.ID, &createdAt, &rec.Model, &status,
		&rec.SourceChars, &rec.OutputChars, &rec.USFM, &rec.Error); err != nil {
		return types.ConversionRecord{}, err
	}
	rec.Status = types.ConversionStatus(status)
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		rec.CreatedAt = t
	}
	return rec, nil
}

// List returns the most recent attempts, newest first, capped at the
// configured maximum.
func (s *Store) List(ctx context.Context) ([]types.ConversionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM conversions ORDER BY rowid DESC LIMIT ?`, s.maxResults)
	if err != nil {
		return nil, fmt.Errorf("listing conversions: %w", err)
	}
	defer rows.Close()

	var records []types.ConversionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning conversion row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns the most recent attempt whose ID starts with idPrefix.
func (s *Store) Get(ctx context.Context, idPrefix string) (types.ConversionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM conversions WHERE id LIKE ? ORDER BY rowid DESC LIMIT 1`,
		idPrefix+"%")

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return types.ConversionRecord{}, fmt.Errorf("no conversion found for ID %q", idPrefix)
	}
	if err != nil {
		return types.ConversionRecord{}, fmt.Errorf("looking up conversion %q: %w", idPrefix, err)
	}
	return rec, nil
}

// Search runs an FTS5 full-text query over the stored USFM and returns
// matching attempts, best match first.
func (s *Store) Search(ctx context.Context, query string) ([]types.ConversionRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query")
	}

	// Quote the query so marker backslashes and punctuation reach FTS5 as
	// a phrase rather than syntax.
	phrase := `"` + strings.ReplaceAll(query, `"`, `""`) + `"`

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+qualifiedColumns("c")+`
		 FROM conversions c
		 JOIN conversions_fts f ON c.rowid = f.rowid
		 WHERE conversions_fts MATCH ?
		 ORDER BY rank
		 LIMIT ?`, phrase, s.maxResults)
	if err != nil {
		return nil, fmt.Errorf("searching conversions: %w", err)
	}
	defer rows.Close()

	var records []types.ConversionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func qualifiedColumns(alias string) string {
	cols := strings.Split(recordColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// Clear deletes all history rows. The FTS index follows via triggers.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversions`)
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	return res.RowsAffected()
}

// ExportYAML writes the full history, newest first, as a YAML document.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM conversions ORDER BY rowid DESC`)
	if err != nil {
		return fmt.Errorf("exporting history: %w", err)
	}
	defer rows.Close()

	var records []types.ConversionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return fmt.Errorf("scanning export row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	data, err := yaml.Marshal(struct {
		Conversions []types.ConversionRecord `yaml:"conversions"`
	}{Conversions: records})
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}
	_, err = w.Write(data)
	return err
}
