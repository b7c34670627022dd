// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest records export runs in a small SQLite database so users
// can review what past runs produced. The database lives outside the
// wiped output tree; a manifest failure never fails an export.
package manifest

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

// RunRecord is one export run.
type RunRecord struct {
	ID                  string    `json:"id"`
	StartedAt           time.Time `json:"started_at"`
	FinishedAt          time.Time `json:"finished_at"`
	Tag                 string    `json:"tag"`
	OutputDir           string    `json:"output_dir"`
	FrontMatter         string    `json:"front_matter"`
	NotesExported       int       `json:"notes_exported"`
	NotesSkipped        int       `json:"notes_skipped"`
	ResourcesDownloaded int       `json:"resources_downloaded"`
	Warnings            int       `json:"warnings"`
}

// PostRecord is one post written during a run.
type PostRecord struct {
	NoteID     string   `json:"note_id"`
	Title      string   `json:"title"`
	Path       string   `json:"path"`
	Categories []string `json:"categories,omitempty"`
}

// Store manages the run-history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the manifest database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating manifest directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening manifest database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating manifest schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			tag TEXT,
			output_dir TEXT,
			front_matter TEXT,
			notes_exported INTEGER,
			notes_skipped INTEGER,
			resources_downloaded INTEGER,
			warnings INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			run_id TEXT NOT NULL REFERENCES runs(id),
			note_id TEXT NOT NULL,
			title TEXT,
			path TEXT,
			categories TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_run_id ON posts(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// NewRunID returns a fresh, time-ordered run identifier.
func NewRunID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// RecordRun inserts a run and its posts in one transaction.
func (s *Store) RecordRun(ctx context.Context, run RunRecord, posts []PostRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, tag, output_dir, front_matter,
			notes_exported, notes_skipped, resources_downloaded, warnings)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.Tag, run.OutputDir, run.FrontMatter,
		run.NotesExported, run.NotesSkipped, run.ResourcesDownloaded, run.Warnings,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for _, p := range posts {
		// Notebook titles may contain any character, so the list is stored
		// as JSON rather than joined on a separator.
		categories, err := json.Marshal(p.Categories)
		if err != nil {
			return fmt.Errorf("encoding categories for post %s: %w", p.NoteID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO posts (run_id, note_id, title, path, categories) VALUES (?, ?, ?, ?, ?)`,
			run.ID, p.NoteID, p.Title, p.Path, string(categories),
		)
		if err != nil {
			return fmt.Errorf("inserting post %s: %w", p.NoteID, err)
		}
	}

	return tx.Commit()
}

// RecentRuns returns the most recent runs, newest first. ULIDs sort
// lexicographically by creation time, so ordering by ID is ordering by
// time.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, tag, output_dir, front_matter,
			notes_exported, notes_skipped, resources_downloaded, warnings
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var started, finished string
		if err := rows.Scan(&r.ID, &started, &finished, &r.Tag, &r.OutputDir, &r.FrontMatter,
			&r.NotesExported, &r.NotesSkipped, &r.ResourcesDownloaded, &r.Warnings); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Posts returns the posts recorded for a run.
func (s *Store) Posts(ctx context.Context, runID string) ([]PostRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT note_id, title, path, categories FROM posts WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	var posts []PostRecord
	for rows.Next() {
		var p PostRecord
		var categories string
		if err := rows.Scan(&p.NoteID, &p.Title, &p.Path, &categories); err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		if categories != "" {
			if err := json.Unmarshal([]byte(categories), &p.Categories); err != nil {
				return nil, fmt.Errorf("decoding categories for post %s: %w", p.NoteID, err)
			}
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
