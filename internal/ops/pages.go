package ops

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/N3tn1la/wiki-js-mcp/internal/docgen"
	"github.com/N3tn1la/wiki-js-mcp/internal/pathtree"
	"github.com/N3tn1la/wiki-js-mcp/internal/repo"
	"github.com/N3tn1la/wiki-js-mcp/internal/wikijs"
)

// CreatePageArgs are the arguments of the create operation. Path is
// derived from the title when absent; ParentPath nests the page under
// an existing parent.
type CreatePageArgs struct {
	Title       string
	Content     string
	Path        string
	ParentPath  string
	Description string
	Tags        []string
	Locale      string
}

// CreatePage creates a remote page. The write is issued exactly once.
func (s *Service) CreatePage(ctx context.Context, args CreatePageArgs) string {
	if args.Title == "" {
		return failf("title is required")
	}
	if err := s.ensureAuth(ctx); err != nil {
		return fail(err)
	}

	path := args.Path
	if path == "" {
		path = docgen.Slugify(args.Title)
	}
	if args.ParentPath != "" {
		path = pathtree.NormalizeParent(args.ParentPath) + "/" + path
	}
	locale := args.Locale
	if locale == "" {
		locale = s.cfg.DefaultLocale
	}

	page, err := s.client.CreatePage(ctx, wikijs.CreatePageInput{
		Title:       args.Title,
		Content:     args.Content,
		Description: args.Description,
		Path:        path,
		Locale:      locale,
		IsPublished: true,
		Tags:        args.Tags,
	})
	if err != nil {
		return fail(err)
	}

	s.log.Info("created page",
		zap.Int("page_id", page.ID),
		zap.String("path", page.Path))

	return respond(map[string]any{
		"page_id": page.ID,
		"title":   page.Title,
		"path":    page.Path,
		"message": "page created",
	})
}

// UpdatePageArgs carry the optional fields of an update; nil pointers
// keep the current remote values.
type UpdatePageArgs struct {
	PageID      int
	Title       *string
	Content     *string
	Description *string
}

// UpdatePage merges the given fields over the page's current state.
func (s *Service) UpdatePage(ctx context.Context, args UpdatePageArgs) string {
	if args.PageID <= 0 {
		return failf("page id is required")
	}
	if err := s.ensureAuth(ctx); err != nil {
		return fail(err)
	}

	page, err := s.client.UpdatePage(ctx, args.PageID, wikijs.UpdatePageInput{
		Title:       args.Title,
		Content:     args.Content,
		Description: args.Description,
	})
	if err != nil {
		return fail(err)
	}

	return respond(map[string]any{
		"page_id":    page.ID,
		"title":      page.Title,
		"path":       page.Path,
		"updated_at": page.UpdatedAt,
		"message":    "page updated",
	})
}

// GetPage fetches a full page by id.
func (s *Service) GetPage(ctx context.Context, pageID int) string {
	if err := s.ensureAuth(ctx); err != nil {
		return fail(err)
	}

	page, err := s.client.PageByID(ctx, pageID)
	if err != nil {
		return fail(err)
	}
	return respond(pagePayload(page))
}

// GetPageBySlug fetches a full page by its path.
func (s *Service) GetPageBySlug(ctx context.Context, slugPath string) string {
	if slugPath == "" {
		return failf("slug is required")
	}
	if err := s.ensureAuth(ctx); err != nil {
		return fail(err)
	}

	page, err := s.client.PageByPath(ctx, slugPath, s.cfg.DefaultLocale)
	if err != nil {
		return fail(err)
	}
	return respond(pagePayload(page))
}

// SearchPages filters the page listing by a case-insensitive substring
// match over title, path, and description.
func (s *Service) SearchPages(ctx context.Context, query string) string {
	if err := s.ensureAuth(ctx); err != nil {
		return fail(err)
	}

	pages, err := s.client.ListPages(ctx)
	if err != nil {
		return fail(err)
	}

	needle := strings.ToLower(query)
	results := []map[string]any{}
	for _, p := range pages {
		haystack := strings.ToLower(p.Title + " " + p.Path + " " + p.Description)
		if strings.Contains(haystack, needle) {
			results = append(results, map[string]any{
				"id":    p.ID,
				"title": p.Title,
				"path":  p.Path,
			})
		}
	}

	return respond(map[string]any{
		"query":   query,
		"total":   len(results),
		"results": results,
	})
}

// GetPageChildrenArgs identify the parent either by page id or by path.
type GetPageChildrenArgs struct {
	PageID int
	Path   string
}

// GetPageChildren returns the direct children of a page. The hierarchy
// is derived from a single listing snapshot.
func (s *Service) GetPageChildren(ctx context.Context, args GetPageChildrenArgs) string {
	if err := s.ensureAuth(ctx); err != nil {
		return fail(err)
	}

	parentPath := args.Path
	if parentPath == "" && args.PageID > 0 {
		page, err := s.client.PageByID(ctx, args.PageID)
		if err != nil {
			return fail(err)
		}
		parentPath = page.Path
	}
	parentPath = pathtree.NormalizeParent(parentPath)

	pages, err := s.client.ListPages(ctx)
	if err != nil {
		return fail(err)
	}

	paths := make([]string, len(pages))
	byPath := make(map[string]wikijs.PageSummary, len(pages))
	for i, p := range pages {
		paths[i] = p.Path
		byPath[p.Path] = p
	}

	children := []map[string]any{}
	for _, childPath := range pathtree.ChildrenOf(paths, parentPath) {
		p := byPath[childPath]
		children = append(children, map[string]any{
			"id":           p.ID,
			"title":        p.Title,
			"path":         p.Path,
			"has_children": len(pathtree.ChildrenOf(paths, p.Path)) > 0,
		})
	}

	return respond(map[string]any{
		"parent_path": parentPath,
		"total":       len(children),
		"children":    children,
	})
}

// CreateNestedPageArgs place a new page under an existing parent path.
type CreateNestedPageArgs struct {
	Title      string
	Content    string
	ParentPath string
}

// CreateNestedPage creates a child page under parent_path. The parent
// must already exist; hierarchy builders create parents first.
func (s *Service) CreateNestedPage(ctx context.Context, args CreateNestedPageArgs) string {
	if args.Title == "" {
		return failf("title is required")
	}
	if args.ParentPath == "" {
		return failf("parent_path is required")
	}
	if err := s.ensureAuth(ctx); err != nil {
		return fail(err)
	}

	parent := pathtree.NormalizeParent(args.ParentPath)
	if _, err := s.client.PageByPath(ctx, parent, s.cfg.DefaultLocale); err != nil {
		if errors.Is(err, wikijs.ErrNotFound) {
			return failf("parent page %q does not exist", parent)
		}
		return fail(err)
	}

	path := parent + "/" + docgen.Slugify(args.Title)
	page, err := s.client.CreatePage(ctx, wikijs.CreatePageInput{
		Title:       args.Title,
		Content:     args.Content,
		Path:        path,
		Locale:      s.cfg.DefaultLocale,
		IsPublished: true,
	})
	if err != nil {
		return fail(err)
	}

	return respond(map[string]any{
		"page_id":     page.ID,
		"title":       page.Title,
		"path":        page.Path,
		"parent_path": parent,
		"message":     "nested page created",
	})
}

// HierarchyPage is one entry of a documentation hierarchy. Path is
// relative to the hierarchy root.
type HierarchyPage struct {
	Title   string
	Path    string
	Content string
}

// CreateDocumentationHierarchyArgs describe a whole subtree to build.
type CreateDocumentationHierarchyArgs struct {
	SpaceName string
	Pages     []HierarchyPage
}

// CreateDocumentationHierarchy builds a page subtree under a root named
// after the space. Pages are created shallowest first so every parent
// exists before its children.
func (s *Service) CreateDocumentationHierarchy(ctx context.Context, args CreateDocumentationHierarchyArgs) string {
	if args.SpaceName == "" {
		return failf("space_name is required")
	}
	if err := s.ensureAuth(ctx); err != nil {
		return fail(err)
	}

	rootPath := docgen.Slugify(args.SpaceName)
	created := []map[string]any{}
	failed := []map[string]any{}

	rootID, err := s.ensureRootPage(ctx, rootPath, args.SpaceName)
	if err != nil {
		return fail(err)
	}
	created = append(created, map[string]any{"page_id": rootID, "path": rootPath})

	entries := make([]HierarchyPage, len(args.Pages))
	copy(entries, args.Pages)
	sort.SliceStable(entries, func(i, j int) bool {
		return pathtree.Depth(entries[i].Path) < pathtree.Depth(entries[j].Path)
	})

	for _, entry := range entries {
		rel := entry.Path
		if rel == "" {
			rel = docgen.Slugify(entry.Title)
		}
		path := rootPath + "/" + strings.Trim(rel, "/")

		page, err := s.client.CreatePage(ctx, wikijs.CreatePageInput{
			Title:       entry.Title,
			Content:     entry.Content,
			Path:        path,
			Locale:      s.cfg.DefaultLocale,
			IsPublished: true,
		})
		if err != nil {
			failed = append(failed, map[string]any{"path": path, "error": err.Error()})
			continue
		}
		created = append(created, map[string]any{"page_id": page.ID, "path": page.Path})
	}

	return respond(map[string]any{
		"root_path":     rootPath,
		"created":       created,
		"failed":        failed,
		"total_created": len(created),
		"total_failed":  len(failed),
	})
}

// CreateRepoStructureArgs configure the standard repository skeleton.
type CreateRepoStructureArgs struct {
	SpaceName string
	Sections  []string
}

// defaultSections is the skeleton used when no sections are given.
var defaultSections = []string{"Overview", "API Documentation", "Components", "Deployment"}

// CreateRepoStructure creates the standard documentation skeleton for
// a repository: one root page plus a child page per section.
func (s *Service) CreateRepoStructure(ctx context.Context, args CreateRepoStructureArgs) string {
	if err := s.ensureAuth(ctx); err != nil {
		return fail(err)
	}

	spaceName := args.SpaceName
	if spaceName == "" {
		spaceName = s.spaceName(repo.DetectOrFallback(s.cfg.RepositoryRoot))
	}
	sections := args.Sections
	if len(sections) == 0 {
		sections = defaultSections
	}

	rootPath := docgen.Slugify(spaceName)
	rootID, err := s.ensureRootPage(ctx, rootPath, spaceName)
	if err != nil {
		return fail(err)
	}

	created := []map[string]any{}
	failed := []map[string]any{}
	for _, section := range sections {
		path := rootPath + "/" + docgen.Slugify(section)
		page, err := s.client.CreatePage(ctx, wikijs.CreatePageInput{
			Title:       section,
			Content:     "# " + section + "\n",
			Path:        path,
			Locale:      s.cfg.DefaultLocale,
			IsPublished: true,
		})
		if err != nil {
			failed = append(failed, map[string]any{"section": section, "error": err.Error()})
			continue
		}
		created = append(created, map[string]any{"page_id": page.ID, "path": page.Path})
	}

	return respond(map[string]any{
		"space_name": spaceName,
		"root_id":    rootID,
		"root_path":  rootPath,
		"created":    created,
		"failed":     failed,
	})
}

// ensureRootPage returns the id of the page at rootPath, creating it
// when absent.
func (s *Service) ensureRootPage(ctx context.Context, rootPath, title string) (int, error) {
	existing, err := s.client.PageByPath(ctx, rootPath, s.cfg.DefaultLocale)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, wikijs.ErrNotFound) {
		return 0, err
	}

	page, err := s.client.CreatePage(ctx, wikijs.CreatePageInput{
		Title:       title,
		Content:     "# " + title + "\n",
		Path:        rootPath,
		Locale:      s.cfg.DefaultLocale,
		IsPublished: true,
	})
	if err != nil {
		return 0, err
	}
	return page.ID, nil
}
