package wikijs

import (
	"context"
	"errors"
)

// PageTag is a tag attached to a page.
type PageTag struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Tag   string `json:"tag"`
}

// Page is a full remote page record. Bodies are never cached; every read
// re-fetches from the remote store.
type Page struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Path        string    `json:"path"`
	Content     string    `json:"content"`
	Description string    `json:"description"`
	Editor      string    `json:"editor"`
	IsPublished bool      `json:"isPublished"`
	IsPrivate   bool      `json:"isPrivate"`
	Locale      string    `json:"locale"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
	AuthorName  string    `json:"authorName"`
	CreatorName string    `json:"creatorName"`
	Tags        []PageTag `json:"tags"`
}

// TagNames returns the bare tag strings of a page.
func (p *Page) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		if t.Tag != "" {
			names = append(names, t.Tag)
		}
	}
	return names
}

// PageSummary is the listing projection of a page: everything needed for
// search, hierarchy derivation, and deletion planning, without the body.
type PageSummary struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Path        string `json:"path"`
	Description string `json:"description"`
	IsPublished bool   `json:"isPublished"`
	Locale      string `json:"locale"`
	UpdatedAt   string `json:"updatedAt"`
}

type responseResult struct {
	Succeeded bool   `json:"succeeded"`
	ErrorCode int    `json:"errorCode"`
	Slug      string `json:"slug"`
	Message   string `json:"message"`
}

// PageByID fetches a single page. Returns ErrNotFound when the id does
// not resolve.
func (c *Client) PageByID(ctx context.Context, id int) (*Page, error) {
	var out struct {
		Pages struct {
			Single *Page `json:"single"`
		} `json:"pages"`
	}
	if err := c.Query(ctx, pageByIDQuery, map[string]any{"id": id}, &out); err != nil {
		return nil, err
	}
	if out.Pages.Single == nil {
		return nil, ErrNotFound
	}
	return out.Pages.Single, nil
}

// PageByPath fetches a single page by its path within a locale. Returns
// ErrNotFound when the path does not resolve. Comparison is exact and
// case-sensitive; this layer does no path canonicalization.
func (c *Client) PageByPath(ctx context.Context, path, locale string) (*Page, error) {
	var out struct {
		Pages struct {
			SingleByPath *Page `json:"singleByPath"`
		} `json:"pages"`
	}
	vars := map[string]any{"path": path, "locale": locale}
	if err := c.Query(ctx, pageByPathQuery, vars, &out); err != nil {
		return nil, err
	}
	if out.Pages.SingleByPath == nil {
		return nil, ErrNotFound
	}
	return out.Pages.SingleByPath, nil
}

// ListPages fetches the full page list in one call. Operations that
// derive hierarchy or plan deletions work from this single snapshot so
// their decisions observe a consistent view of the store.
func (c *Client) ListPages(ctx context.Context) ([]PageSummary, error) {
	var out struct {
		Pages struct {
			List []PageSummary `json:"list"`
		} `json:"pages"`
	}
	if err := c.Query(ctx, listPagesQuery, nil, &out); err != nil {
		return nil, err
	}
	return out.Pages.List, nil
}

// PageExists reports whether a page id still resolves remotely. Other
// errors (transport, remote) propagate for the caller to classify.
func (c *Client) PageExists(ctx context.Context, id int) (bool, error) {
	_, err := c.PageByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreatePageInput carries all arguments of the create mutation. The
// remote store requires every field, so zero values are sent as-is.
type CreatePageInput struct {
	Title       string
	Content     string
	Description string
	Path        string
	Locale      string
	Editor      string
	IsPublished bool
	IsPrivate   bool
	Tags        []string
}

// CreatePage creates a page. A responseResult with succeeded=false
// surfaces as a RemoteError; a success without page data is a
// DecodeError rather than a silent nil.
func (c *Client) CreatePage(ctx context.Context, in CreatePageInput) (*Page, error) {
	if in.Editor == "" {
		in.Editor = "markdown"
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}

	var out struct {
		Pages struct {
			Create struct {
				ResponseResult responseResult `json:"responseResult"`
				Page           *Page          `json:"page"`
			} `json:"create"`
		} `json:"pages"`
	}

	vars := map[string]any{
		"title":       in.Title,
		"content":     in.Content,
		"description": in.Description,
		"path":        in.Path,
		"locale":      in.Locale,
		"editor":      in.Editor,
		"isPublished": in.IsPublished,
		"isPrivate":   in.IsPrivate,
		"tags":        in.Tags,
	}

	if err := c.Mutate(ctx, createPageMutation, vars, &out); err != nil {
		return nil, err
	}

	create := out.Pages.Create
	if !create.ResponseResult.Succeeded {
		return nil, remoteErr(create.ResponseResult.Message)
	}
	if create.Page == nil {
		return nil, &DecodeError{Field: "pages.create.page"}
	}
	return create.Page, nil
}

// UpdatePageInput carries the optional fields of an update. Nil pointers
// keep the current remote value.
type UpdatePageInput struct {
	Title       *string
	Content     *string
	Description *string
}

// UpdatePage merges the given fields over the page's current remote
// state and issues the update mutation. The current tag set is carried
// along because the remote store rejects updates with an absent tag
// list; a page without tags is sent the placeholder "default" tag.
func (c *Client) UpdatePage(ctx context.Context, id int, in UpdatePageInput) (*Page, error) {
	current, err := c.PageByID(ctx, id)
	if err != nil {
		return nil, err
	}

	title := current.Title
	if in.Title != nil {
		title = *in.Title
	}
	content := current.Content
	if in.Content != nil {
		content = *in.Content
	}
	description := current.Description
	if in.Description != nil {
		description = *in.Description
	}

	tags := current.TagNames()
	if len(tags) == 0 {
		tags = []string{"default"}
	}

	var out struct {
		Pages struct {
			Update struct {
				ResponseResult responseResult `json:"responseResult"`
				Page           *Page          `json:"page"`
			} `json:"update"`
		} `json:"pages"`
	}

	vars := map[string]any{
		"id":          id,
		"title":       title,
		"content":     content,
		"description": description,
		"tags":        tags,
	}

	if err := c.Mutate(ctx, updatePageMutation, vars, &out); err != nil {
		return nil, err
	}

	update := out.Pages.Update
	if !update.ResponseResult.Succeeded {
		return nil, remoteErr(update.ResponseResult.Message)
	}
	if update.Page == nil {
		return nil, &DecodeError{Field: "pages.update.page"}
	}
	return update.Page, nil
}

// DeletePage deletes a page by id. The delete mutation is a write: one
// attempt, no retry.
func (c *Client) DeletePage(ctx context.Context, id int) error {
	var out struct {
		Pages struct {
			Delete struct {
				ResponseResult responseResult `json:"responseResult"`
			} `json:"delete"`
		} `json:"pages"`
	}

	if err := c.Mutate(ctx, deletePageMutation, map[string]any{"id": id}, &out); err != nil {
		return err
	}

	if !out.Pages.Delete.ResponseResult.Succeeded {
		return remoteErr(out.Pages.Delete.ResponseResult.Message)
	}
	return nil
}
