package store

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		author TEXT NOT NULL DEFAULT '',
		editor TEXT NOT NULL DEFAULT '',
		publisher TEXT NOT NULL DEFAULT '',
		publisher_location TEXT NOT NULL DEFAULT '',
		publication_year TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS proof_pages (
		id INTEGER PRIMARY KEY,
		project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		n INTEGER NOT NULL,
		version INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_proof_pages_project ON proof_pages(project_id, n)`,
	`CREATE TABLE IF NOT EXISTS proof_revisions (
		id INTEGER PRIMARY KEY,
		page_id INTEGER NOT NULL REFERENCES proof_pages(id) ON DELETE CASCADE,
		created INTEGER NOT NULL,
		content TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_proof_revisions_page ON proof_revisions(page_id, created)`,
}

func (s *Store) initSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
