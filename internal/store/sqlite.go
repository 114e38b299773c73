package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"marginalia/internal/document"
)

const schemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS doc (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	title TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS segments (
	id TEXT PRIMARY KEY,
	pos INTEGER NOT NULL,
	text TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
	id TEXT PRIMARY KEY,
	segment_id TEXT UNIQUE NOT NULL,
	start_offset INTEGER NOT NULL,
	end_offset INTEGER NOT NULL,
	content TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// SQLite persists the document in relational tables. Every save rewrites
// the whole document, mirroring the wholesale-replacement model.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	s := &SQLite{db: db}
	if err := s.init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	var v int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = s.db.ExecContext(ctx, "INSERT INTO schema_version(version) VALUES(?)", schemaVersion)
		return err
	}
	if err != nil {
		return err
	}
	if v != schemaVersion {
		return fmt.Errorf("unsupported schema version %d", v)
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context) (*document.Document, error) {
	doc := &document.Document{Notes: make(map[string]document.Note)}
	err := s.db.QueryRowContext(ctx, "SELECT title FROM doc WHERE id = 1").Scan(&doc.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id, text FROM segments ORDER BY pos")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var seg document.Segment
		if err := rows.Scan(&seg.ID, &seg.Text); err != nil {
			return nil, err
		}
		doc.Segments = append(doc.Segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	noteRows, err := s.db.QueryContext(ctx,
		"SELECT id, segment_id, start_offset, end_offset, content, created_at, updated_at FROM notes")
	if err != nil {
		return nil, err
	}
	defer noteRows.Close()
	for noteRows.Next() {
		var note document.Note
		var created, updated int64
		if err := noteRows.Scan(&note.ID, &note.SegmentID, &note.StartOffset, &note.EndOffset, &note.Content, &created, &updated); err != nil {
			return nil, err
		}
		note.CreatedAt = time.Unix(created, 0).UTC()
		note.UpdatedAt = time.Unix(updated, 0).UTC()
		doc.Notes[note.SegmentID] = note
	}
	if err := noteRows.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *SQLite) Save(ctx context.Context, doc *document.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM notes", "DELETE FROM segments", "DELETE FROM doc"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO doc(id, title) VALUES(1, ?)", doc.Title); err != nil {
		return err
	}
	for pos, seg := range doc.Segments {
		if _, err := tx.ExecContext(ctx, "INSERT INTO segments(id, pos, text) VALUES(?, ?, ?)", seg.ID, pos, seg.Text); err != nil {
			return err
		}
	}
	for _, note := range doc.Notes {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO notes(id, segment_id, start_offset, end_offset, content, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?, ?)",
			note.ID, note.SegmentID, note.StartOffset, note.EndOffset, note.Content,
			note.CreatedAt.Unix(), note.UpdatedAt.Unix()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
