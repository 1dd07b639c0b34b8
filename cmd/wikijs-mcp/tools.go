package main

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/N3tn1la/wiki-js-mcp/internal/ops"
)

// runStdioServer registers every tool and serves MCP over stdio until
// the stream closes.
func runStdioServer(svc *ops.Service) error {
	s := server.NewMCPServer("wikijs-mcp", version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	registerTools(s, svc)
	return server.ServeStdio(s)
}

// text wraps an operation's JSON payload as a tool result. Operations
// report their own failures in-band, so handlers never return Go
// errors for domain failures.
func text(payload string) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(payload), nil
}

// optString returns a pointer only when the argument was actually
// supplied, distinguishing "not given" from an explicit empty string.
func optString(req mcp.CallToolRequest, key string) *string {
	if v, ok := req.GetArguments()[key]; ok {
		if s, ok := v.(string); ok {
			return &s
		}
	}
	return nil
}

// intSlice reads an array argument of numeric ids.
func intSlice(req mcp.CallToolRequest, key string) []int {
	raw, ok := req.GetArguments()[key].([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(float64); ok {
			out = append(out, int(f))
		}
	}
	return out
}

func registerTools(s *server.MCPServer, svc *ops.Service) {
	s.AddTool(mcp.NewTool("wikijs_create_page",
		mcp.WithDescription("Create a new documentation page. The path is derived from the title unless given explicitly; parent_path nests the page under an existing parent."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Page title")),
		mcp.WithString("content", mcp.Description("Markdown content")),
		mcp.WithString("path", mcp.Description("Explicit page path; defaults to the slugged title")),
		mcp.WithString("parent_path", mcp.Description("Path of the parent page to nest under")),
		mcp.WithString("description", mcp.Description("Short page description")),
		mcp.WithArray("tags", mcp.Description("Tags to attach to the page")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.CreatePage(ctx, ops.CreatePageArgs{
			Title:       req.GetString("title", ""),
			Content:     req.GetString("content", ""),
			Path:        req.GetString("path", ""),
			ParentPath:  req.GetString("parent_path", ""),
			Description: req.GetString("description", ""),
			Tags:        req.GetStringSlice("tags", nil),
		}))
	})

	s.AddTool(mcp.NewTool("wikijs_update_page",
		mcp.WithDescription("Update a page's title, content, or description. Omitted fields keep their current values."),
		mcp.WithNumber("page_id", mcp.Required(), mcp.Description("Page id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("content", mcp.Description("New markdown content")),
		mcp.WithString("description", mcp.Description("New description")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.UpdatePage(ctx, ops.UpdatePageArgs{
			PageID:      req.GetInt("page_id", 0),
			Title:       optString(req, "title"),
			Content:     optString(req, "content"),
			Description: optString(req, "description"),
		}))
	})

	s.AddTool(mcp.NewTool("wikijs_get_page",
		mcp.WithDescription("Fetch a page with its full content by id."),
		mcp.WithNumber("page_id", mcp.Required(), mcp.Description("Page id")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.GetPage(ctx, req.GetInt("page_id", 0)))
	})

	s.AddTool(mcp.NewTool("wikijs_get_page_by_slug",
		mcp.WithDescription("Fetch a page with its full content by path."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Page path, e.g. docs/api/auth")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.GetPageBySlug(ctx, req.GetString("slug", "")))
	})

	s.AddTool(mcp.NewTool("wikijs_search_pages",
		mcp.WithDescription("Search pages by title, path, and description."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.SearchPages(ctx, req.GetString("query", "")))
	})

	s.AddTool(mcp.NewTool("wikijs_list_spaces",
		mcp.WithDescription("List top-level organization spaces."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.ListSpaces(ctx))
	})

	s.AddTool(mcp.NewTool("wikijs_create_space",
		mcp.WithDescription("Create a top-level organization space."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Space name")),
		mcp.WithString("description", mcp.Description("Space description")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.CreateSpace(ctx, ops.CreateSpaceArgs{
			Name:        req.GetString("name", ""),
			Description: req.GetString("description", ""),
		}))
	})

	s.AddTool(mcp.NewTool("wikijs_manage_collections",
		mcp.WithDescription("List or create page collections (top-level groupings)."),
		mcp.WithString("action", mcp.Description("list or create (default list)")),
		mcp.WithString("name", mcp.Description("Collection name, required for create")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.ManageCollections(ctx, ops.ManageCollectionsArgs{
			Action: req.GetString("action", ""),
			Name:   req.GetString("name", ""),
		}))
	})

	s.AddTool(mcp.NewTool("wikijs_link_file_to_page",
		mcp.WithDescription("Link a local source file to a documentation page."),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Path of the local file")),
		mcp.WithNumber("page_id", mcp.Required(), mcp.Description("Target page id")),
		mcp.WithString("relationship", mcp.Description("Relationship tag (default documents)")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.LinkFileToPage(ctx, ops.LinkFileArgs{
			FilePath:     req.GetString("file_path", ""),
			PageID:       req.GetInt("page_id", 0),
			Relationship: req.GetString("relationship", ""),
		}))
	})

	s.AddTool(mcp.NewTool("wikijs_sync_file_docs",
		mcp.WithDescription("Push the current contents of a linked file into its documentation page."),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Path of the linked file")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.SyncFileDocs(ctx, req.GetString("file_path", "")))
	})

	s.AddTool(mcp.NewTool("wikijs_generate_file_overview",
		mcp.WithDescription("Generate an overview page for a source file, creating and linking a page when none exists."),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Path of the source file")),
		mcp.WithNumber("page_id", mcp.Description("Existing page to write the overview into")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.GenerateFileOverview(ctx, ops.GenerateOverviewArgs{
			FilePath: req.GetString("file_path", ""),
			PageID:   req.GetInt("page_id", 0),
		}))
	})

	s.AddTool(mcp.NewTool("wikijs_bulk_update_project_docs",
		mcp.WithDescription("Re-sync every linked file in the current repository whose contents changed."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.BulkUpdateProjectDocs(ctx))
	})

	s.AddTool(mcp.NewTool("wikijs_connection_status",
		mcp.WithDescription("Report connectivity, authentication state, and mapping statistics."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.ConnectionStatus(ctx))
	})

	s.AddTool(mcp.NewTool("wikijs_repository_context",
		mcp.WithDescription("Detect the current repository and its documentation space."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.RepositoryContext(ctx))
	})

	s.AddTool(mcp.NewTool("wikijs_create_repo_structure",
		mcp.WithDescription("Create the standard documentation skeleton for a repository."),
		mcp.WithString("space_name", mcp.Description("Space name; derived from the repository when omitted")),
		mcp.WithArray("sections", mcp.Description("Section titles; a standard set is used when omitted")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.CreateRepoStructure(ctx, ops.CreateRepoStructureArgs{
			SpaceName: req.GetString("space_name", ""),
			Sections:  req.GetStringSlice("sections", nil),
		}))
	})

	s.AddTool(mcp.NewTool("wikijs_create_nested_page",
		mcp.WithDescription("Create a child page under an existing parent path."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Page title")),
		mcp.WithString("parent_path", mcp.Required(), mcp.Description("Path of the existing parent page")),
		mcp.WithString("content", mcp.Description("Markdown content")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.CreateNestedPage(ctx, ops.CreateNestedPageArgs{
			Title:      req.GetString("title", ""),
			Content:    req.GetString("content", ""),
			ParentPath: req.GetString("parent_path", ""),
		}))
	})

	s.AddTool(mcp.NewTool("wikijs_get_page_children",
		mcp.WithDescription("List the direct children of a page, identified by id or path."),
		mcp.WithNumber("page_id", mcp.Description("Parent page id")),
		mcp.WithString("path", mcp.Description("Parent page path")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.GetPageChildren(ctx, ops.GetPageChildrenArgs{
			PageID: req.GetInt("page_id", 0),
			Path:   req.GetString("path", ""),
		}))
	})

	s.AddTool(mcp.NewTool("wikijs_create_documentation_hierarchy",
		mcp.WithDescription("Create a whole documentation subtree: a root page plus nested pages, parents before children."),
		mcp.WithString("space_name", mcp.Required(), mcp.Description("Name of the hierarchy root")),
		mcp.WithArray("pages", mcp.Description("Pages to create: objects with title, path (relative to the root), and content")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var pages []ops.HierarchyPage
		if raw, ok := req.GetArguments()["pages"].([]any); ok {
			for _, entry := range raw {
				m, ok := entry.(map[string]any)
				if !ok {
					continue
				}
				p := ops.HierarchyPage{}
				if v, ok := m["title"].(string); ok {
					p.Title = v
				}
				if v, ok := m["path"].(string); ok {
					p.Path = v
				}
				if v, ok := m["content"].(string); ok {
					p.Content = v
				}
				pages = append(pages, p)
			}
		}
		return text(svc.CreateDocumentationHierarchy(ctx, ops.CreateDocumentationHierarchyArgs{
			SpaceName: req.GetString("space_name", ""),
			Pages:     pages,
		}))
	})

	s.AddTool(mcp.NewTool("wikijs_delete_page",
		mcp.WithDescription("Delete one page by id or path. Returns a preview until confirm_deletion is set."),
		mcp.WithNumber("page_id", mcp.Description("Page id")),
		mcp.WithString("path", mcp.Description("Page path")),
		mcp.WithBoolean("confirm_deletion", mcp.Description("Set to true to actually delete")),
		mcp.WithBoolean("remove_mappings", mcp.Description("Also drop local file mappings for the deleted page (default true)")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.DeletePage(ctx, ops.DeletePageArgs{
			PageID:         req.GetInt("page_id", 0),
			Path:           req.GetString("path", ""),
			Confirm:        req.GetBool("confirm_deletion", false),
			RemoveMappings: req.GetBool("remove_mappings", true),
		}))
	})

	s.AddTool(mcp.NewTool("wikijs_batch_delete_pages",
		mcp.WithDescription("Delete multiple pages by id list, path list, or path glob pattern, deepest paths first. Returns a preview until confirm_deletion is set."),
		mcp.WithArray("page_ids", mcp.Description("Page ids to delete")),
		mcp.WithArray("paths", mcp.Description("Page paths to delete")),
		mcp.WithString("path_pattern", mcp.Description("Glob pattern over page paths, e.g. team-x/*")),
		mcp.WithBoolean("confirm_deletion", mcp.Description("Set to true to actually delete")),
		mcp.WithBoolean("remove_mappings", mcp.Description("Also drop local file mappings for deleted pages (default true)")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.BatchDeletePages(ctx, ops.BatchDeleteArgs{
			PageIDs:        intSlice(req, "page_ids"),
			Paths:          req.GetStringSlice("paths", nil),
			Pattern:        req.GetString("path_pattern", ""),
			Confirm:        req.GetBool("confirm_deletion", false),
			RemoveMappings: req.GetBool("remove_mappings", true),
		}))
	})

	s.AddTool(mcp.NewTool("wikijs_delete_hierarchy",
		mcp.WithDescription("Delete a page subtree bottom-up. Mode is children_only, include_root, or root_only. Returns a preview until confirm_deletion is set."),
		mcp.WithString("root_path", mcp.Required(), mcp.Description("Path of the subtree root")),
		mcp.WithString("mode", mcp.Description("Deletion mode (default children_only)")),
		mcp.WithBoolean("confirm_deletion", mcp.Description("Set to true to actually delete")),
		mcp.WithBoolean("remove_mappings", mcp.Description("Also drop local file mappings for deleted pages (default true)")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.DeleteHierarchy(ctx, ops.DeleteHierarchyArgs{
			RootPath:       req.GetString("root_path", ""),
			Mode:           req.GetString("mode", ""),
			Confirm:        req.GetBool("confirm_deletion", false),
			RemoveMappings: req.GetBool("remove_mappings", true),
		}))
	})

	s.AddTool(mcp.NewTool("wikijs_cleanup_orphaned_mappings",
		mcp.WithDescription("Remove file mappings whose pages no longer exist remotely."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.CleanupOrphanedMappings(ctx))
	})

	s.AddTool(mcp.NewTool("wikijs_graphql_introspection",
		mcp.WithDescription("Summarize the remote GraphQL schema: operations and types."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.GraphQLIntrospection(ctx))
	})

	s.AddTool(mcp.NewTool("wikijs_get_page_schema_details",
		mcp.WithDescription("Describe the fields of a remote schema type (default Page)."),
		mcp.WithString("type_name", mcp.Description("Schema type name")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return text(svc.GetPageSchemaDetails(ctx, req.GetString("type_name", "")))
	})
}
