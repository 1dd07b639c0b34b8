// Package deletion plans and executes ordered page deletions.
//
// Every deletion, regardless of how the targets were selected, goes
// through the same pipeline: select targets, dedupe them by page id,
// sort deepest path first, then delete sequentially. Children are
// always removed before their parents so a mid-run failure never
// leaves an orphaned subtree below a deleted ancestor.
package deletion

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/N3tn1la/wiki-js-mcp/internal/pathtree"
	"github.com/N3tn1la/wiki-js-mcp/internal/wikijs"
)

// Hierarchy deletion modes.
const (
	ModeChildrenOnly = "children_only"
	ModeIncludeRoot  = "include_root"
	ModeRootOnly     = "root_only"
)

// PageAPI is the slice of the remote client the engine needs.
type PageAPI interface {
	PageByID(ctx context.Context, id int) (*wikijs.Page, error)
	PageByPath(ctx context.Context, path, locale string) (*wikijs.Page, error)
	ListPages(ctx context.Context) ([]wikijs.PageSummary, error)
	DeletePage(ctx context.Context, id int) error
}

// MappingRemover drops local file mappings for deleted pages. Cleanup
// is best effort; a failure here never fails the deletion.
type MappingRemover interface {
	DeleteByPageID(ctx context.Context, pageID int) error
}

// Target is one page scheduled for deletion.
type Target struct {
	ID    int    `json:"id"`
	Path  string `json:"path"`
	Title string `json:"title,omitempty"`
}

// Plan is an ordered list of deletion targets, deduplicated by page id
// and sorted so deeper paths come first.
type Plan struct {
	Targets []Target `json:"targets"`
}

// ItemResult records the outcome for a single target.
type ItemResult struct {
	ID    int    `json:"id"`
	Path  string `json:"path,omitempty"`
	Title string `json:"title,omitempty"`
	Error string `json:"error,omitempty"`
}

// Report summarizes an executed plan.
type Report struct {
	Deleted []ItemResult `json:"deleted"`
	Failed  []ItemResult `json:"failed"`
}

// Engine selects, orders, and deletes pages.
type Engine struct {
	pages PageAPI
	store MappingRemover
	log   *zap.Logger
}

// NewEngine creates a deletion engine. store may be nil when no local
// mapping cleanup is wanted.
func NewEngine(pages PageAPI, store MappingRemover, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{pages: pages, store: store, log: log}
}

// PlanIDs builds a plan from explicit page ids. Each id is resolved so
// the plan can be depth ordered; ids that no longer resolve are kept
// with an empty path and surface as failures during execution.
func (e *Engine) PlanIDs(ctx context.Context, ids []int) (*Plan, error) {
	targets := make([]Target, 0, len(ids))
	for _, id := range ids {
		page, err := e.pages.PageByID(ctx, id)
		if err != nil {
			targets = append(targets, Target{ID: id})
			continue
		}
		targets = append(targets, Target{ID: page.ID, Path: page.Path, Title: page.Title})
	}
	return newPlan(targets), nil
}

// PlanPaths builds a plan from explicit page paths. Paths that do not
// resolve keep a zero id and surface as failures during execution.
func (e *Engine) PlanPaths(ctx context.Context, paths []string, locale string) (*Plan, error) {
	targets := make([]Target, 0, len(paths))
	for _, p := range paths {
		p = pathtree.NormalizeParent(p)
		page, err := e.pages.PageByPath(ctx, p, locale)
		if err != nil {
			targets = append(targets, Target{Path: p})
			continue
		}
		targets = append(targets, Target{ID: page.ID, Path: page.Path, Title: page.Title})
	}
	return newPlan(targets), nil
}

// PlanPattern builds a plan from every page whose path matches the
// glob pattern. Selection runs against a single listing snapshot.
func (e *Engine) PlanPattern(ctx context.Context, pattern string) (*Plan, error) {
	pages, err := e.pages.ListPages(ctx)
	if err != nil {
		return nil, err
	}

	var targets []Target
	for _, p := range pages {
		if pathtree.Match(p.Path, pattern) {
			targets = append(targets, Target{ID: p.ID, Path: p.Path, Title: p.Title})
		}
	}
	return newPlan(targets), nil
}

// PlanHierarchy builds a plan for the subtree rooted at rootPath. The
// mode controls whether the root page itself is included:
// children_only deletes only descendants, include_root deletes the
// subtree plus the root, root_only deletes just the root page.
func (e *Engine) PlanHierarchy(ctx context.Context, rootPath, mode string) (*Plan, error) {
	if mode == "" {
		mode = ModeChildrenOnly
	}

	pages, err := e.pages.ListPages(ctx)
	if err != nil {
		return nil, err
	}

	root := pathtree.NormalizeParent(rootPath)
	var targets []Target
	for _, p := range pages {
		isRoot := p.Path == root
		isDescendant := pathtree.IsDescendant(p.Path, root)

		switch mode {
		case ModeRootOnly:
			if isRoot {
				targets = append(targets, Target{ID: p.ID, Path: p.Path, Title: p.Title})
			}
		case ModeIncludeRoot:
			if isRoot || isDescendant {
				targets = append(targets, Target{ID: p.ID, Path: p.Path, Title: p.Title})
			}
		default:
			if isDescendant {
				targets = append(targets, Target{ID: p.ID, Path: p.Path, Title: p.Title})
			}
		}
	}
	return newPlan(targets), nil
}

// Execute deletes every target in plan order, one page at a time.
// Failures are recorded and execution continues with the next target.
// When removeMappings is set, each successful deletion also drops the
// page's local file mappings; that cleanup is best effort and never
// appears in the failure list.
func (e *Engine) Execute(ctx context.Context, plan *Plan, removeMappings bool) *Report {
	report := &Report{
		Deleted: []ItemResult{},
		Failed:  []ItemResult{},
	}

	for _, t := range plan.Targets {
		item := ItemResult{ID: t.ID, Path: t.Path, Title: t.Title}

		if err := e.pages.DeletePage(ctx, t.ID); err != nil {
			item.Error = err.Error()
			report.Failed = append(report.Failed, item)
			e.log.Warn("page deletion failed",
				zap.Int("page_id", t.ID),
				zap.String("path", t.Path),
				zap.Error(err))
			continue
		}

		if removeMappings && e.store != nil {
			if err := e.store.DeleteByPageID(ctx, t.ID); err != nil {
				e.log.Warn("mapping cleanup failed after deletion",
					zap.Int("page_id", t.ID),
					zap.Error(err))
			}
		}

		report.Deleted = append(report.Deleted, item)
		e.log.Info("deleted page",
			zap.Int("page_id", t.ID),
			zap.String("path", t.Path))
	}

	return report
}

// newPlan dedupes targets by id and orders them deepest first. Targets
// at equal depth keep a stable path ordering so runs are deterministic.
func newPlan(targets []Target) *Plan {
	seen := make(map[int]bool, len(targets))
	deduped := make([]Target, 0, len(targets))
	for _, t := range targets {
		// Unresolved targets keep a zero id and are never collapsed.
		if t.ID != 0 {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
		}
		deduped = append(deduped, t)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		di, dj := pathtree.Depth(deduped[i].Path), pathtree.Depth(deduped[j].Path)
		if di != dj {
			return di > dj
		}
		return deduped[i].Path < deduped[j].Path
	})

	return &Plan{Targets: deduped}
}
