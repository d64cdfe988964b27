package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/cleared-dev/ledgr/internal/document"
)

// Migrations returns the schema statements. Each string is a single
// statement; all of them are idempotent.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS journal_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			id              TEXT PRIMARY KEY,
			position        INTEGER NOT NULL,
			name            TEXT NOT NULL,
			value           TEXT NOT NULL,
			currency        TEXT NOT NULL,
			date            TEXT NOT NULL,
			category        TEXT NOT NULL,
			account         TEXT NOT NULL,
			account_info    TEXT NOT NULL DEFAULT '{}',
			additional_info TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_account ON entries(account)`,
		`CREATE TABLE IF NOT EXISTS reading_points (
			id       TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			name     TEXT NOT NULL,
			date     TEXT NOT NULL,
			visible  INTEGER NOT NULL DEFAULT 1,
			active   INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS start_values (
			account TEXT PRIMARY KEY,
			value   TEXT NOT NULL
		)`,
	}
}

// SQLite keeps the document in a SQLite database. Save replaces the stored
// journal in one transaction.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	for _, stmt := range Migrations() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save replaces the stored journal with doc.
func (s *SQLite) Save(ctx context.Context, doc *document.Document) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, table := range []string{"journal_meta", "entries", "reading_points", "start_values"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	meta := map[string]string{
		"version":     fmt.Sprint(doc.Version),
		"name":        doc.Name,
		"description": doc.Description,
	}
	for k, v := range meta {
		if _, err = tx.ExecContext(ctx, `INSERT INTO journal_meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("save %s: %w", k, err)
		}
	}

	for account, v := range doc.StartValues {
		if _, err = tx.ExecContext(ctx, `INSERT INTO start_values (account, value) VALUES (?, ?)`, account, v); err != nil {
			return fmt.Errorf("save start value of %s: %w", account, err)
		}
	}

	for i, rp := range doc.ReadingPoints {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO reading_points (id, position, name, date, visible, active)
			VALUES (?, ?, ?, ?, ?, ?)
		`, rp.ID, i, rp.Name, rp.Date, rp.Visible, rp.Active)
		if err != nil {
			return fmt.Errorf("save reading point %s: %w", rp.Name, err)
		}
	}

	for i, e := range doc.Entries {
		cat, merr := json.Marshal(e.Category)
		if merr != nil {
			return fmt.Errorf("encode category of %s: %w", e.ID, merr)
		}
		info := e.AccountInfo
		if info == nil {
			info = map[string]string{}
		}
		infoJSON, merr := json.Marshal(info)
		if merr != nil {
			return fmt.Errorf("encode account info of %s: %w", e.ID, merr)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO entries (id, position, name, value, currency, date, category, account, account_info, additional_info)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, e.ID, i, e.Name, e.Value, e.Currency, e.Date, string(cat), e.Account, string(infoJSON), e.AdditionalInfo)
		if err != nil {
			return fmt.Errorf("save entry %s: %w", e.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load reads the stored journal. An empty database is an empty journal.
func (s *SQLite) Load(ctx context.Context) (*document.Document, error) {
	doc := &document.Document{Version: document.Version, Entries: []document.Entry{}}

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM journal_meta`)
	if err != nil {
		return nil, fmt.Errorf("query meta: %w", err)
	}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan meta: %w", err)
		}
		switch k {
		case "version":
			if _, err := fmt.Sscan(v, &doc.Version); err != nil {
				rows.Close()
				return nil, fmt.Errorf("parse version %q: %w", v, err)
			}
		case "name":
			doc.Name = v
		case "description":
			doc.Description = v
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadStartValues(ctx, doc); err != nil {
		return nil, err
	}
	if err := s.loadReadingPoints(ctx, doc); err != nil {
		return nil, err
	}
	if err := s.loadEntries(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *SQLite) loadStartValues(ctx context.Context, doc *document.Document) error {
	rows, err := s.db.QueryContext(ctx, `SELECT account, value FROM start_values`)
	if err != nil {
		return fmt.Errorf("query start values: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var account, v string
		if err := rows.Scan(&account, &v); err != nil {
			return fmt.Errorf("scan start value: %w", err)
		}
		if doc.StartValues == nil {
			doc.StartValues = make(map[string]string)
		}
		doc.StartValues[account] = v
	}
	return rows.Err()
}

func (s *SQLite) loadReadingPoints(ctx context.Context, doc *document.Document) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, date, visible, active
		FROM reading_points
		ORDER BY position ASC
	`)
	if err != nil {
		return fmt.Errorf("query reading points: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rp document.ReadingPoint
		if err := rows.Scan(&rp.ID, &rp.Name, &rp.Date, &rp.Visible, &rp.Active); err != nil {
			return fmt.Errorf("scan reading point: %w", err)
		}
		doc.ReadingPoints = append(doc.ReadingPoints, rp)
	}
	return rows.Err()
}

func (s *SQLite) loadEntries(ctx context.Context, doc *document.Document) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, value, currency, date, category, account, account_info, additional_info
		FROM entries
		ORDER BY position ASC
	`)
	if err != nil {
		return fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e document.Entry
		var cat, info string
		if err := rows.Scan(&e.ID, &e.Name, &e.Value, &e.Currency, &e.Date, &cat, &e.Account, &info, &e.AdditionalInfo); err != nil {
			return fmt.Errorf("scan entry: %w", err)
		}
		if err := json.Unmarshal([]byte(cat), &e.Category); err != nil {
			return fmt.Errorf("decode category of %s: %w", e.ID, err)
		}
		if err := json.Unmarshal([]byte(info), &e.AccountInfo); err != nil {
			return fmt.Errorf("decode account info of %s: %w", e.ID, err)
		}
		if len(e.AccountInfo) == 0 {
			e.AccountInfo = nil
		}
		doc.Entries = append(doc.Entries, e)
	}
	return rows.Err()
}
