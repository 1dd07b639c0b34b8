package mappings

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.InitSchema(); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}
	return s
}

func TestStore_UpsertAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	m := &Mapping{
		FilePath:       "/repo/src/auth.go",
		PageID:         42,
		Relationship:   "documents",
		FileHash:       "abc123",
		RepositoryRoot: "/repo",
		SpaceName:      "Documentation",
	}
	if err := s.UpsertContext(ctx, m); err != nil {
		t.Fatalf("Failed to upsert mapping: %v", err)
	}

	got, err := s.GetByFile("/repo/src/auth.go")
	if err != nil {
		t.Fatalf("Failed to get mapping: %v", err)
	}
	if got.PageID != 42 {
		t.Errorf("Expected page id 42, got %d", got.PageID)
	}
	if got.Relationship != "documents" {
		t.Errorf("Expected relationship 'documents', got %q", got.Relationship)
	}
	if got.LastUpdated.IsZero() {
		t.Error("Expected last updated to be set")
	}
}

func TestStore_UpsertOverwritesExistingRow(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := &Mapping{FilePath: "/repo/readme.md", PageID: 1, FileHash: "h1"}
	if err := s.UpsertContext(ctx, first); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	second := &Mapping{FilePath: "/repo/readme.md", PageID: 2, FileHash: "h2"}
	if err := s.UpsertContext(ctx, second); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	got, err := s.GetByFile("/repo/readme.md")
	if err != nil {
		t.Fatalf("Failed to get mapping: %v", err)
	}
	if got.PageID != 2 || got.FileHash != "h2" {
		t.Errorf("Expected overwritten row (page 2, hash h2), got page %d hash %q", got.PageID, got.FileHash)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected exactly one row after upsert, got %d", n)
	}
}

func TestStore_GetByFileNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetByFile("/nowhere.md")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStore_UpsertRejectsInvalid(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.UpsertContext(ctx, &Mapping{PageID: 1}); err == nil {
		t.Error("Expected error for missing file path")
	}
	if err := s.UpsertContext(ctx, &Mapping{FilePath: "/a.md"}); err == nil {
		t.Error("Expected error for missing page id")
	}
}

func TestStore_DefaultRelationship(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.UpsertContext(ctx, &Mapping{FilePath: "/a.md", PageID: 5}); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	got, err := s.GetByFile("/a.md")
	if err != nil {
		t.Fatalf("Failed to get mapping: %v", err)
	}
	if got.Relationship != "documents" {
		t.Errorf("Expected default relationship 'documents', got %q", got.Relationship)
	}
}

func TestStore_DeleteByFileIsIdempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.UpsertContext(ctx, &Mapping{FilePath: "/a.md", PageID: 5}); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	if err := s.DeleteByFile(ctx, "/a.md"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if err := s.DeleteByFile(ctx, "/a.md"); err != nil {
		t.Errorf("Expected idempotent delete, got %v", err)
	}
	if _, err := s.GetByFile("/a.md"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestStore_DeleteByPageID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i, path := range []string{"/a.md", "/b.md", "/c.md"} {
		pageID := 10
		if i == 2 {
			pageID = 11
		}
		if err := s.UpsertContext(ctx, &Mapping{FilePath: path, PageID: pageID}); err != nil {
			t.Fatalf("Failed to upsert: %v", err)
		}
	}

	if err := s.DeleteByPageID(ctx, 10); err != nil {
		t.Fatalf("Failed to delete by page id: %v", err)
	}

	all, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(all) != 1 || all[0].FilePath != "/c.md" {
		t.Errorf("Expected only /c.md to remain, got %d rows", len(all))
	}
}

func TestStore_ListByRepository(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	rows := []*Mapping{
		{FilePath: "/repo1/a.md", PageID: 1, RepositoryRoot: "/repo1"},
		{FilePath: "/repo1/b.md", PageID: 2, RepositoryRoot: "/repo1"},
		{FilePath: "/repo2/a.md", PageID: 3, RepositoryRoot: "/repo2"},
	}
	for _, m := range rows {
		if err := s.UpsertContext(ctx, m); err != nil {
			t.Fatalf("Failed to upsert %s: %v", m.FilePath, err)
		}
	}

	got, err := s.ListByRepository(ctx, "/repo1")
	if err != nil {
		t.Fatalf("Failed to list by repository: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 mappings for /repo1, got %d", len(got))
	}
	if got[0].FilePath != "/repo1/a.md" || got[1].FilePath != "/repo1/b.md" {
		t.Errorf("Expected ordered results, got %q, %q", got[0].FilePath, got[1].FilePath)
	}
}

func TestStore_GetOrCreateRepoContext(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	rc, err := s.GetOrCreateRepoContext(ctx, "/repo", "Documentation")
	if err != nil {
		t.Fatalf("Failed to create repository context: %v", err)
	}
	if rc.SpaceName != "Documentation" {
		t.Errorf("Expected space 'Documentation', got %q", rc.SpaceName)
	}
	if rc.SpaceID != nil {
		t.Errorf("Expected nil space id for fresh context, got %v", *rc.SpaceID)
	}

	// A second call with a different name must not clobber the row.
	again, err := s.GetOrCreateRepoContext(ctx, "/repo", "Other")
	if err != nil {
		t.Fatalf("Failed to get repository context: %v", err)
	}
	if again.SpaceName != "Documentation" {
		t.Errorf("Expected existing space name preserved, got %q", again.SpaceName)
	}
}

type stubChecker struct {
	existing map[int]bool
	failing  map[int]bool
	calls    []int
}

func (c *stubChecker) PageExists(_ context.Context, id int) (bool, error) {
	c.calls = append(c.calls, id)
	if c.failing[id] {
		return false, fmt.Errorf("lookup failed for page %d", id)
	}
	return c.existing[id], nil
}

func TestStore_ReconcileRemovesOrphans(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	rows := []*Mapping{
		{FilePath: "/a.md", PageID: 1},
		{FilePath: "/b.md", PageID: 2},
		{FilePath: "/c.md", PageID: 3},
	}
	for _, m := range rows {
		if err := s.UpsertContext(ctx, m); err != nil {
			t.Fatalf("Failed to upsert %s: %v", m.FilePath, err)
		}
	}

	checker := &stubChecker{existing: map[int]bool{1: true, 3: true}}
	report, err := s.Reconcile(ctx, checker)
	if err != nil {
		t.Fatalf("Failed to reconcile: %v", err)
	}

	if report.Total != 3 {
		t.Errorf("Expected total 3, got %d", report.Total)
	}
	if len(report.Valid) != 2 || len(report.Orphaned) != 1 {
		t.Fatalf("Expected 2 valid and 1 orphaned, got %d and %d",
			len(report.Valid), len(report.Orphaned))
	}
	if report.Orphaned[0].PageID != 2 {
		t.Errorf("Expected page 2 orphaned, got %d", report.Orphaned[0].PageID)
	}

	all, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 rows after reconcile, got %d", len(all))
	}
}

func TestStore_ReconcileTreatsLookupFailureAsOrphaned(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.UpsertContext(ctx, &Mapping{FilePath: "/a.md", PageID: 7}); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	checker := &stubChecker{failing: map[int]bool{7: true}}
	report, err := s.Reconcile(ctx, checker)
	if err != nil {
		t.Fatalf("Failed to reconcile: %v", err)
	}
	if len(report.Orphaned) != 1 {
		t.Fatalf("Expected the failing lookup to orphan the mapping, got %d orphans", len(report.Orphaned))
	}
	if _, err := s.GetByFile("/a.md"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected mapping removed, got %v", err)
	}
}
