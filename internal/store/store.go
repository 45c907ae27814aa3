// Package store reads and writes the proofing database: projects, their
// pages and the revision history of each page.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/ambuda-org/proofkit/internal/proofing"
)

var ErrProjectNotFound = errors.New("project not found")

// Store manages proofing data backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Project is a book being proofread.
type Project struct {
	ID                int64
	Slug              string
	Title             string
	Author            string
	Editor            string
	Publisher         string
	PublisherLocation string
	PublicationYear   string
}

// Metadata returns the TEI header variables for the project.
func (p *Project) Metadata() proofing.Metadata {
	meta := proofing.Metadata{
		proofing.MetaTitle:           p.Title,
		proofing.MetaAuthor:          p.Author,
		proofing.MetaEditor:          p.Editor,
		proofing.MetaPublisher:       p.Publisher,
		proofing.MetaPublicationYear: p.PublicationYear,
	}
	if strings.TrimSpace(p.PublisherLocation) != "" {
		meta[proofing.MetaPublisherLocation] = p.PublisherLocation
	}
	return meta
}

// Revision is the newest saved content of a page.
type Revision struct {
	PageID  int64
	N       int
	Version proofing.SchemaVersion
	Content string
}

// Open initializes or connects to the proofing database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateProject inserts a project and returns its ID.
func (s *Store) CreateProject(ctx context.Context, p Project) (int64, error) {
	return insertProject(ctx, s.db, p)
}

// AddPage inserts page n of a project and returns its ID.
func (s *Store) AddPage(ctx context.Context, projectID int64, n int, version proofing.SchemaVersion) (int64, error) {
	return insertPage(ctx, s.db, projectID, n, version)
}

// AddRevision records new content for a page. Revisions are ordered by
// created, a unix timestamp; the newest one is the page's current content.
func (s *Store) AddRevision(ctx context.Context, pageID int64, created int64, content string) error {
	return insertRevision(ctx, s.db, pageID, created, content)
}

// ImportProject creates a project with one page per entry of pages, numbered
// from 1, each holding a single revision. Either everything is stored or
// nothing is.
func (s *Store) ImportProject(ctx context.Context, p Project, pages []proofing.Page, created int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	projectID, err := insertProject(ctx, tx, p)
	if err != nil {
		return 0, err
	}
	for i, page := range pages {
		pageID, err := insertPage(ctx, tx, projectID, i+1, page.Version)
		if err != nil {
			return 0, err
		}
		if err := insertRevision(ctx, tx, pageID, created, page.Content); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import of %q: %w", p.Slug, err)
	}
	return projectID, nil
}

func insertProject(ctx context.Context, db execer, p Project) (int64, error) {
	res, err := db.ExecContext(ctx, `INSERT INTO projects
		(slug, title, author, editor, publisher, publisher_location, publication_year)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Slug, p.Title, p.Author, p.Editor, p.Publisher, p.PublisherLocation, p.PublicationYear)
	if err != nil {
		return 0, fmt.Errorf("insert project %q: %w", p.Slug, err)
	}
	return res.LastInsertId()
}

func insertPage(ctx context.Context, db execer, projectID int64, n int, version proofing.SchemaVersion) (int64, error) {
	switch version {
	case proofing.SchemaLegacy, proofing.SchemaStructured:
	default:
		return 0, fmt.Errorf("insert page %d: %w: %d", n, proofing.ErrUnknownSchema, int(version))
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO proof_pages (project_id, n, version) VALUES (?, ?, ?)`,
		projectID, n, int(version))
	if err != nil {
		return 0, fmt.Errorf("insert page %d: %w", n, err)
	}
	return res.LastInsertId()
}

func insertRevision(ctx context.Context, db execer, pageID int64, created int64, content string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO proof_revisions (page_id, created, content) VALUES (?, ?, ?)`,
		pageID, created, content)
	if err != nil {
		return fmt.Errorf("insert revision for page %d: %w", pageID, err)
	}
	return nil
}

// ProjectBySlug loads a project by its slug.
func (s *Store) ProjectBySlug(ctx context.Context, slug string) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, slug, title, author, editor, publisher,
		publisher_location, publication_year FROM projects WHERE slug = ?`, slug)

	var p Project
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Author, &p.Editor, &p.Publisher,
		&p.PublisherLocation, &p.PublicationYear)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("query project %q: %w", slug, err)
	}
	return &p, nil
}

// LatestRevisions returns the newest revision of every page of a project in
// page order. Pages that were never saved have empty content.
func (s *Store) LatestRevisions(ctx context.Context, projectID int64) ([]Revision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.n, p.version, (
			SELECT r.content FROM proof_revisions r
			WHERE r.page_id = p.id
			ORDER BY r.created DESC, r.id DESC
			LIMIT 1
		)
		FROM proof_pages p
		WHERE p.project_id = ?
		ORDER BY p.n, p.id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query revisions: %w", err)
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		var (
			r       Revision
			version int
			content sql.NullString
		)
		if err := rows.Scan(&r.PageID, &r.N, &version, &content); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		r.Version = proofing.SchemaVersion(version)
		r.Content = content.String
		revs = append(revs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revisions: %w", err)
	}
	return revs, nil
}

// LatestPages returns the current content of a project's pages, ready for
// publishing.
func (s *Store) LatestPages(ctx context.Context, projectID int64) ([]proofing.Page, error) {
	revs, err := s.LatestRevisions(ctx, projectID)
	if err != nil {
		return nil, err
	}
	pages := make([]proofing.Page, len(revs))
	for i, r := range revs {
		pages[i] = proofing.Page{ID: r.PageID, Content: r.Content, Version: r.Version}
	}
	return pages, nil
}
