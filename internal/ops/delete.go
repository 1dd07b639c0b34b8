package ops

import (
	"context"
	"errors"

	"github.com/N3tn1la/wiki-js-mcp/internal/deletion"
	"github.com/N3tn1la/wiki-js-mcp/internal/wikijs"
)

// confirmationPrompt is returned by every destructive operation until
// the caller repeats it with confirm_deletion set.
const confirmationPrompt = "confirmation required: re-run with confirm_deletion=true to delete the listed pages"

// declined renders the preview returned when the safety gate blocks a
// deletion. No delete call has been made at this point.
func declined(plan *deletion.Plan, extra map[string]any) string {
	result := map[string]any{
		"confirm_required": true,
		"pages_to_delete":  plan.Targets,
		"total":            len(plan.Targets),
		"message":          confirmationPrompt,
	}
	for k, v := range extra {
		result[k] = v
	}
	return respond(result)
}

// DeletePageArgs identify a single page by id or path. Confirm must be
// set for the deletion to execute; RemoveMappings also drops the
// page's local file mappings.
type DeletePageArgs struct {
	PageID         int
	Path           string
	Confirm        bool
	RemoveMappings bool
}

// DeletePage deletes one page after explicit confirmation.
func (s *Service) DeletePage(ctx context.Context, args DeletePageArgs) string {
	if args.PageID <= 0 && args.Path == "" {
		return failf("page_id or path is required")
	}
	if err := s.ensureAuth(ctx); err != nil {
		return fail(err)
	}

	pageID := args.PageID
	if pageID <= 0 {
		page, err := s.client.PageByPath(ctx, args.Path, s.cfg.DefaultLocale)
		if err != nil {
			if errors.Is(err, wikijs.ErrNotFound) {
				return failf("page %q does not exist", args.Path)
			}
			return fail(err)
		}
		pageID = page.ID
	}

	plan, err := s.engine.PlanIDs(ctx, []int{pageID})
	if err != nil {
		return fail(err)
	}
	if !args.Confirm {
		return declined(plan, nil)
	}

	report := s.engine.Execute(ctx, plan, args.RemoveMappings)
	return respond(map[string]any{
		"deleted":       report.Deleted,
		"failed":        report.Failed,
		"total_deleted": len(report.Deleted),
		"total_failed":  len(report.Failed),
	})
}

// BatchDeleteArgs select pages by explicit ids, explicit paths, or a
// path glob pattern. One selector is expected.
type BatchDeleteArgs struct {
	PageIDs        []int
	Paths          []string
	Pattern        string
	Confirm        bool
	RemoveMappings bool
}

// BatchDeletePages deletes a set of pages sequentially, deepest path
// first, after explicit confirmation.
func (s *Service) BatchDeletePages(ctx context.Context, args BatchDeleteArgs) string {
	if len(args.PageIDs) == 0 && len(args.Paths) == 0 && args.Pattern == "" {
		return failf("page_ids, paths, or path_pattern is required")
	}
	if err := s.ensureAuth(ctx); err != nil {
		return fail(err)
	}

	var plan *deletion.Plan
	var err error
	switch {
	case args.Pattern != "":
		plan, err = s.engine.PlanPattern(ctx, args.Pattern)
	case len(args.Paths) > 0:
		plan, err = s.engine.PlanPaths(ctx, args.Paths, s.cfg.DefaultLocale)
	default:
		plan, err = s.engine.PlanIDs(ctx, args.PageIDs)
	}
	if err != nil {
		return fail(err)
	}

	if !args.Confirm {
		return declined(plan, map[string]any{"pattern": args.Pattern})
	}

	report := s.engine.Execute(ctx, plan, args.RemoveMappings)
	return respond(map[string]any{
		"pattern":       args.Pattern,
		"deleted":       report.Deleted,
		"failed":        report.Failed,
		"total_deleted": len(report.Deleted),
		"total_failed":  len(report.Failed),
	})
}

// DeleteHierarchyArgs select a subtree rooted at a path. Mode is one of
// children_only, include_root, or root_only.
type DeleteHierarchyArgs struct {
	RootPath       string
	Mode           string
	Confirm        bool
	RemoveMappings bool
}

// DeleteHierarchy deletes a page subtree bottom-up after explicit
// confirmation. Children always go before parents so an interrupted
// run never strands a subtree under a deleted ancestor.
func (s *Service) DeleteHierarchy(ctx context.Context, args DeleteHierarchyArgs) string {
	if args.RootPath == "" {
		return failf("root_path is required")
	}
	switch args.Mode {
	case "", deletion.ModeChildrenOnly, deletion.ModeIncludeRoot, deletion.ModeRootOnly:
	default:
		return failf("unknown mode %q: expected children_only, include_root, or root_only", args.Mode)
	}
	if err := s.ensureAuth(ctx); err != nil {
		return fail(err)
	}

	plan, err := s.engine.PlanHierarchy(ctx, args.RootPath, args.Mode)
	if err != nil {
		return fail(err)
	}

	if !args.Confirm {
		return declined(plan, map[string]any{
			"root_path": args.RootPath,
			"mode":      args.Mode,
		})
	}

	report := s.engine.Execute(ctx, plan, args.RemoveMappings)
	return respond(map[string]any{
		"root_path":     args.RootPath,
		"mode":          args.Mode,
		"deleted":       report.Deleted,
		"failed":        report.Failed,
		"total_deleted": len(report.Deleted),
		"total_failed":  len(report.Failed),
	})
}
