package ops

import (
	"context"

	"github.com/N3tn1la/wiki-js-mcp/internal/docgen"
	"github.com/N3tn1la/wiki-js-mcp/internal/pathtree"
)

// Organization spaces are emulated as top-level pages: the remote
// store has no first-class space object, so a space is a root page and
// its subtree.

// ListSpaces returns every top-level page with its direct child count.
func (s *Service) ListSpaces(ctx context.Context) string {
	if err := s.ensureAuth(ctx); err != nil {
		return fail(err)
	}

	pages, err := s.client.ListPages(ctx)
	if err != nil {
		return fail(err)
	}

	paths := make([]string, len(pages))
	for i, p := range pages {
		paths[i] = p.Path
	}

	spaces := []map[string]any{}
	for _, p := range pages {
		if pathtree.Depth(p.Path) != 0 {
			continue
		}
		spaces = append(spaces, map[string]any{
			"id":       p.ID,
			"name":     p.Title,
			"path":     p.Path,
			"children": len(pathtree.ChildrenOf(paths, p.Path)),
		})
	}

	return respond(map[string]any{
		"total":  len(spaces),
		"spaces": spaces,
	})
}

// CreateSpaceArgs name a new top-level organization space.
type CreateSpaceArgs struct {
	Name        string
	Description string
}

// CreateSpace creates the root page of a new organization space.
func (s *Service) CreateSpace(ctx context.Context, args CreateSpaceArgs) string {
	if args.Name == "" {
		return failf("name is required")
	}
	if err := s.ensureAuth(ctx); err != nil {
		return fail(err)
	}

	path := docgen.Slugify(args.Name)
	id, err := s.ensureRootPage(ctx, path, args.Name)
	if err != nil {
		return fail(err)
	}

	return respond(map[string]any{
		"space_id":    id,
		"name":        args.Name,
		"path":        path,
		"description": args.Description,
		"message":     "space created",
	})
}

// ManageCollectionsArgs select a collection action: "list" or "create".
type ManageCollectionsArgs struct {
	Action string
	Name   string
}

// ManageCollections lists or creates top-level page collections.
// Collections and spaces are the same structure viewed differently;
// both resolve to root pages.
func (s *Service) ManageCollections(ctx context.Context, args ManageCollectionsArgs) string {
	switch args.Action {
	case "", "list":
		return s.ListSpaces(ctx)
	case "create":
		if args.Name == "" {
			return failf("name is required for create")
		}
		return s.CreateSpace(ctx, CreateSpaceArgs{Name: args.Name})
	default:
		return failf("unknown action %q: expected list or create", args.Action)
	}
}
