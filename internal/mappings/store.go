// Package mappings is the durable local table store correlating source
// files with remote Wiki.js pages.
//
// The store is an embedded SQLite database opened in WAL mode. It owns
// two tables: file_mappings (one row per linked file, keyed by file
// path) and repository_contexts (one row per repository root). The
// remote store has no knowledge of either table; rows are cheap to
// recreate by re-linking, which is what makes the aggressive orphan
// cleanup policy in reconcile.go acceptable.
package mappings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// ErrNotFound is returned when a lookup matches no stored row.
var ErrNotFound = errors.New("mapping not found")

// Mapping links one local file to one remote page.
type Mapping struct {
	// FilePath is the unique key; a file maps to at most one page.
	FilePath string

	// PageID is the remote page id.
	PageID int

	// Relationship is a free-form tag, e.g. "documents" or "references".
	Relationship string

	// LastUpdated is set on every upsert. No history is retained.
	LastUpdated time.Time

	// FileHash is the sha256 of the file bytes at link time.
	FileHash string

	// RepositoryRoot is the repository the file belongs to.
	RepositoryRoot string

	// SpaceName is the organization-space name, when known.
	SpaceName string
}

// RepoContext associates a repository root with an organization space.
type RepoContext struct {
	RootPath    string
	SpaceName   string
	SpaceID     *int
	LastUpdated time.Time
}

// Store wraps the SQLite connection holding the mapping tables.
type Store struct {
	conn *sql.DB
	path string
}

// Open creates or opens the mapping database at the given path. The
// caller must Close() when done.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(4)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{conn: conn, path: path}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := s.conn.Exec(pragma); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}

	return s, nil
}

// Close checkpoints the WAL and closes the connection.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.conn = nil
	return nil
}

// InitSchema creates the tables if they don't exist. Idempotent.
func (s *Store) InitSchema() error {
	return s.InitSchemaContext(context.Background())
}

// InitSchemaContext creates the schema with context support.
func (s *Store) InitSchemaContext(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS file_mappings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_path TEXT NOT NULL UNIQUE,
		page_id INTEGER NOT NULL,
		relationship_type TEXT NOT NULL,
		last_updated TEXT NOT NULL,
		file_hash TEXT NOT NULL DEFAULT '',
		repository_root TEXT NOT NULL DEFAULT '',
		space_name TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS repository_contexts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		root_path TEXT NOT NULL UNIQUE,
		space_name TEXT NOT NULL,
		space_id INTEGER,
		last_updated TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_file_mappings_page ON file_mappings(page_id);
	CREATE INDEX IF NOT EXISTS idx_file_mappings_repo ON file_mappings(repository_root);
	`

	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Upsert inserts a mapping or overwrites the existing row keyed by file
// path, refreshing the timestamp.
func (s *Store) Upsert(m *Mapping) error {
	return s.UpsertContext(context.Background(), m)
}

// UpsertContext inserts or updates a mapping with context support.
func (s *Store) UpsertContext(ctx context.Context, m *Mapping) error {
	if m.FilePath == "" {
		return fmt.Errorf("invalid mapping: file path is required")
	}
	if m.PageID <= 0 {
		return fmt.Errorf("invalid mapping: page id is required")
	}
	if m.Relationship == "" {
		m.Relationship = "documents"
	}
	m.LastUpdated = time.Now().UTC()

	query := `
	INSERT INTO file_mappings (
		file_path, page_id, relationship_type, last_updated,
		file_hash, repository_root, space_name
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(file_path) DO UPDATE SET
		page_id = excluded.page_id,
		relationship_type = excluded.relationship_type,
		last_updated = excluded.last_updated,
		file_hash = excluded.file_hash,
		repository_root = excluded.repository_root,
		space_name = excluded.space_name
	`

	_, err := s.conn.ExecContext(ctx, query,
		m.FilePath,
		m.PageID,
		m.Relationship,
		m.LastUpdated.Format(time.RFC3339),
		m.FileHash,
		m.RepositoryRoot,
		m.SpaceName,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert mapping for %s: %w", m.FilePath, err)
	}
	return nil
}

const mappingColumns = `file_path, page_id, relationship_type, last_updated,
	file_hash, repository_root, space_name`

// GetByFile returns the mapping for a file path, or ErrNotFound.
func (s *Store) GetByFile(filePath string) (*Mapping, error) {
	return s.GetByFileContext(context.Background(), filePath)
}

// GetByFileContext looks up a mapping with context support.
func (s *Store) GetByFileContext(ctx context.Context, filePath string) (*Mapping, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+mappingColumns+` FROM file_mappings WHERE file_path = ?`, filePath)
	return scanMapping(row)
}

// GetByPageID returns the mapping targeting a page id, or ErrNotFound.
func (s *Store) GetByPageID(ctx context.Context, pageID int) (*Mapping, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+mappingColumns+` FROM file_mappings WHERE page_id = ?`, pageID)
	return scanMapping(row)
}

// DeleteByFile removes a mapping by file path. Idempotent.
func (s *Store) DeleteByFile(ctx context.Context, filePath string) error {
	_, err := s.conn.ExecContext(ctx,
		`DELETE FROM file_mappings WHERE file_path = ?`, filePath)
	if err != nil {
		return fmt.Errorf("failed to delete mapping for %s: %w", filePath, err)
	}
	return nil
}

// DeleteByPageID removes mappings targeting a page id. Idempotent.
func (s *Store) DeleteByPageID(ctx context.Context, pageID int) error {
	_, err := s.conn.ExecContext(ctx,
		`DELETE FROM file_mappings WHERE page_id = ?`, pageID)
	if err != nil {
		return fmt.Errorf("failed to delete mappings for page %d: %w", pageID, err)
	}
	return nil
}

// ListAll returns every stored mapping ordered by file path.
func (s *Store) ListAll(ctx context.Context) ([]*Mapping, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+mappingColumns+` FROM file_mappings ORDER BY file_path ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}
	defer rows.Close()
	return scanMappings(rows)
}

// ListByRepository returns mappings whose repository root equals root.
func (s *Store) ListByRepository(ctx context.Context, root string) ([]*Mapping, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+mappingColumns+` FROM file_mappings WHERE repository_root = ? ORDER BY file_path ASC`, root)
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings for %s: %w", root, err)
	}
	defer rows.Close()
	return scanMappings(rows)
}

// Count returns the number of stored mappings.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM file_mappings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count mappings: %w", err)
	}
	return n, nil
}

// GetRepoContext returns the stored context for a repository root, or
// ErrNotFound.
func (s *Store) GetRepoContext(ctx context.Context, root string) (*RepoContext, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT root_path, space_name, space_id, last_updated
		 FROM repository_contexts WHERE root_path = ?`, root)

	var rc RepoContext
	var spaceID sql.NullInt64
	var updated string
	err := row.Scan(&rc.RootPath, &rc.SpaceName, &spaceID, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan repository context: %w", err)
	}
	if spaceID.Valid {
		id := int(spaceID.Int64)
		rc.SpaceID = &id
	}
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		rc.LastUpdated = t
	}
	return &rc, nil
}

// GetOrCreateRepoContext returns the context for a repository root,
// inserting one with the given space name when absent. Existing rows
// are never modified here.
func (s *Store) GetOrCreateRepoContext(ctx context.Context, root, spaceName string) (*RepoContext, error) {
	rc, err := s.GetRepoContext(ctx, root)
	if err == nil {
		return rc, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO repository_contexts (root_path, space_name, last_updated)
		 VALUES (?, ?, ?)
		 ON CONFLICT(root_path) DO NOTHING`,
		root, spaceName, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to create repository context: %w", err)
	}

	return s.GetRepoContext(ctx, root)
}

func scanMapping(row *sql.Row) (*Mapping, error) {
	var m Mapping
	var updated string
	err := row.Scan(
		&m.FilePath,
		&m.PageID,
		&m.Relationship,
		&updated,
		&m.FileHash,
		&m.RepositoryRoot,
		&m.SpaceName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan mapping: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		m.LastUpdated = t
	}
	return &m, nil
}

func scanMappings(rows *sql.Rows) ([]*Mapping, error) {
	var out []*Mapping
	for rows.Next() {
		var m Mapping
		var updated string
		err := rows.Scan(
			&m.FilePath,
			&m.PageID,
			&m.Relationship,
			&updated,
			&m.FileHash,
			&m.RepositoryRoot,
			&m.SpaceName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mapping: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, updated); err == nil {
			m.LastUpdated = t
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mappings: %w", err)
	}
	return out, nil
}
