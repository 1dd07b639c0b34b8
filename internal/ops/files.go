package ops

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/N3tn1la/wiki-js-mcp/internal/docgen"
	"github.com/N3tn1la/wiki-js-mcp/internal/mappings"
	"github.com/N3tn1la/wiki-js-mcp/internal/repo"
	"github.com/N3tn1la/wiki-js-mcp/internal/wikijs"
)

// LinkFileArgs bind a local file to a remote page.
type LinkFileArgs struct {
	FilePath     string
	PageID       int
	Relationship string
}

// LinkFileToPage records a file-to-page mapping. The target page is
// verified remotely before the row is written so a dangling link fails
// fast instead of resurfacing later as an orphan.
func (s *Service) LinkFileToPage(ctx context.Context, args LinkFileArgs) string {
	if s.store == nil {
		return failf("mapping store is not configured")
	}
	if args.FilePath == "" {
		return failf("file_path is required")
	}
	if args.PageID <= 0 {
		return failf("page_id is required")
	}

	absPath, err := filepath.Abs(args.FilePath)
	if err != nil {
		return fail(err)
	}
	hash, err := docgen.FileHash(absPath)
	if err != nil {
		return fail(err)
	}

	if err := s.ensureAuth(ctx); err != nil {
		return fail(err)
	}
	if _, err := s.client.PageByID(ctx, args.PageID); err != nil {
		if errors.Is(err, wikijs.ErrNotFound) {
			return failf("page %d does not exist", args.PageID)
		}
		return fail(err)
	}

	rc := repo.DetectOrFallback(filepath.Dir(absPath))
	m := &mappings.Mapping{
		FilePath:       absPath,
		PageID:         args.PageID,
		Relationship:   args.Relationship,
		FileHash:       hash,
		RepositoryRoot: rc.Root,
		SpaceName:      s.spaceName(rc),
	}
	if err := s.store.UpsertContext(ctx, m); err != nil {
		return fail(err)
	}

	s.log.Info("linked file to page",
		zap.String("file", absPath),
		zap.Int("page_id", args.PageID))

	return respond(map[string]any{
		"file_path":       absPath,
		"page_id":         args.PageID,
		"relationship":    m.Relationship,
		"file_hash":       hash,
		"repository_root": rc.Root,
		"message":         "file linked",
	})
}

// SyncFileDocs pushes the current file contents into its mapped page
// and refreshes the stored fingerprint.
func (s *Service) SyncFileDocs(ctx context.Context, filePath string) string {
	if s.store == nil {
		return failf("mapping store is not configured")
	}
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fail(err)
	}

	m, err := s.store.GetByFileContext(ctx, absPath)
	if errors.Is(err, mappings.ErrNotFound) {
		return failf("no mapping for %s: link the file first", absPath)
	}
	if err != nil {
		return fail(err)
	}

	content, err := docgen.SyncContent(absPath)
	if err != nil {
		return fail(err)
	}
	hash, err := docgen.FileHash(absPath)
	if err != nil {
		return fail(err)
	}

	if err := s.ensureAuth(ctx); err != nil {
		return fail(err)
	}
	page, err := s.client.UpdatePage(ctx, m.PageID, wikijs.UpdatePageInput{Content: &content})
	if err != nil {
		return fail(err)
	}

	m.FileHash = hash
	if err := s.store.UpsertContext(ctx, m); err != nil {
		return fail(err)
	}

	return respond(map[string]any{
		"file_path": absPath,
		"page_id":   page.ID,
		"path":      page.Path,
		"file_hash": hash,
		"message":   "documentation synced",
	})
}

// GenerateOverviewArgs control where the generated overview lands.
// When PageID is zero the file's existing mapping is used, and when no
// mapping exists a new page is created and linked.
type GenerateOverviewArgs struct {
	FilePath string
	PageID   int
}

// GenerateFileOverview renders an overview page for a source file and
// writes it to the remote store.
func (s *Service) GenerateFileOverview(ctx context.Context, args GenerateOverviewArgs) string {
	if args.FilePath == "" {
		return failf("file_path is required")
	}
	absPath, err := filepath.Abs(args.FilePath)
	if err != nil {
		return fail(err)
	}

	overview, err := docgen.Overview(absPath)
	if err != nil {
		return fail(err)
	}
	if err := s.ensureAuth(ctx); err != nil {
		return fail(err)
	}

	pageID := args.PageID
	if pageID == 0 && s.store != nil {
		if m, err := s.store.GetByFileContext(ctx, absPath); err == nil {
			pageID = m.PageID
		}
	}

	if pageID > 0 {
		page, err := s.client.UpdatePage(ctx, pageID, wikijs.UpdatePageInput{Content: &overview})
		if err != nil {
			return fail(err)
		}
		return respond(map[string]any{
			"file_path": absPath,
			"page_id":   page.ID,
			"path":      page.Path,
			"message":   "overview updated",
		})
	}

	rc := repo.DetectOrFallback(filepath.Dir(absPath))
	rel, err := filepath.Rel(rc.Root, absPath)
	if err != nil {
		rel = filepath.Base(absPath)
	}
	pagePath := docgen.Slugify(rc.Name) + "/" + docgen.PagePath(rel)

	page, err := s.client.CreatePage(ctx, wikijs.CreatePageInput{
		Title:       filepath.Base(absPath),
		Content:     overview,
		Path:        pagePath,
		Locale:      s.cfg.DefaultLocale,
		IsPublished: true,
	})
	if err != nil {
		return fail(err)
	}

	if s.store != nil {
		hash, err := docgen.FileHash(absPath)
		if err == nil {
			m := &mappings.Mapping{
				FilePath:       absPath,
				PageID:         page.ID,
				Relationship:   "overview",
				FileHash:       hash,
				RepositoryRoot: rc.Root,
				SpaceName:      s.spaceName(rc),
			}
			if err := s.store.UpsertContext(ctx, m); err != nil {
				s.log.Warn("failed to record overview mapping", zap.Error(err))
			}
		}
	}

	return respond(map[string]any{
		"file_path": absPath,
		"page_id":   page.ID,
		"path":      page.Path,
		"message":   "overview created",
	})
}

// BulkUpdateProjectDocs re-syncs every mapped file in the current
// repository. Files whose fingerprint is unchanged are skipped; missing
// files and failed updates are reported individually.
func (s *Service) BulkUpdateProjectDocs(ctx context.Context) string {
	if s.store == nil {
		return failf("mapping store is not configured")
	}

	rc := repo.DetectOrFallback(s.cfg.RepositoryRoot)
	maps, err := s.store.ListByRepository(ctx, rc.Root)
	if err != nil {
		return fail(err)
	}

	if err := s.ensureAuth(ctx); err != nil {
		return fail(err)
	}

	updated := []map[string]any{}
	skipped := []map[string]any{}
	failed := []map[string]any{}

	for _, m := range maps {
		if _, err := os.Stat(m.FilePath); err != nil {
			failed = append(failed, map[string]any{
				"file_path": m.FilePath,
				"error":     "file missing",
			})
			continue
		}

		hash, err := docgen.FileHash(m.FilePath)
		if err != nil {
			failed = append(failed, map[string]any{
				"file_path": m.FilePath,
				"error":     err.Error(),
			})
			continue
		}
		if hash == m.FileHash {
			skipped = append(skipped, map[string]any{
				"file_path": m.FilePath,
				"reason":    "unchanged",
			})
			continue
		}

		content, err := docgen.SyncContent(m.FilePath)
		if err != nil {
			failed = append(failed, map[string]any{
				"file_path": m.FilePath,
				"error":     err.Error(),
			})
			continue
		}

		if _, err := s.client.UpdatePage(ctx, m.PageID, wikijs.UpdatePageInput{Content: &content}); err != nil {
			failed = append(failed, map[string]any{
				"file_path": m.FilePath,
				"page_id":   m.PageID,
				"error":     err.Error(),
			})
			continue
		}

		m.FileHash = hash
		if err := s.store.UpsertContext(ctx, m); err != nil {
			s.log.Warn("failed to refresh fingerprint",
				zap.String("file", m.FilePath), zap.Error(err))
		}
		updated = append(updated, map[string]any{
			"file_path": m.FilePath,
			"page_id":   m.PageID,
		})
	}

	return respond(map[string]any{
		"repository_root": rc.Root,
		"total":           len(maps),
		"updated":         updated,
		"skipped":         skipped,
		"failed":          failed,
	})
}

// CleanupOrphanedMappings verifies every mapping against the remote
// store and removes rows whose page no longer exists.
func (s *Service) CleanupOrphanedMappings(ctx context.Context) string {
	if s.store == nil {
		return failf("mapping store is not configured")
	}
	if err := s.ensureAuth(ctx); err != nil {
		return fail(err)
	}

	report, err := s.store.Reconcile(ctx, s.client)
	if err != nil {
		return fail(err)
	}
	return respond(report)
}
