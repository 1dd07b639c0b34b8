// Package ops implements the gateway's tool operations. Every
// operation takes its arguments as a struct, talks to the remote store
// and the local mapping database, and returns its result as a JSON
// string. Failures are reported in-band as a JSON object with a single
// "error" field so callers always receive well-formed output.
package ops

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/N3tn1la/wiki-js-mcp/internal/config"
	"github.com/N3tn1la/wiki-js-mcp/internal/deletion"
	"github.com/N3tn1la/wiki-js-mcp/internal/mappings"
	"github.com/N3tn1la/wiki-js-mcp/internal/repo"
	"github.com/N3tn1la/wiki-js-mcp/internal/wikijs"
)

// PageClient is the remote-store surface the operations depend on.
// *wikijs.Client satisfies it.
type PageClient interface {
	Authenticate(ctx context.Context) error
	Authenticated() bool
	PageByID(ctx context.Context, id int) (*wikijs.Page, error)
	PageByPath(ctx context.Context, path, locale string) (*wikijs.Page, error)
	ListPages(ctx context.Context) ([]wikijs.PageSummary, error)
	PageExists(ctx context.Context, id int) (bool, error)
	CreatePage(ctx context.Context, in wikijs.CreatePageInput) (*wikijs.Page, error)
	UpdatePage(ctx context.Context, id int, in wikijs.UpdatePageInput) (*wikijs.Page, error)
	DeletePage(ctx context.Context, id int) error
	SchemaSummary(ctx context.Context) (json.RawMessage, error)
	TypeDetail(ctx context.Context, name string) (json.RawMessage, error)
}

// Service wires the remote client, the mapping store, and the deletion
// engine behind the tool operations.
type Service struct {
	client PageClient
	store  *mappings.Store
	engine *deletion.Engine
	cfg    *config.Config
	log    *zap.Logger
}

// NewService creates the operation service. store may be nil when the
// file-mapping features are unused.
func NewService(client PageClient, store *mappings.Store, cfg *config.Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	var remover deletion.MappingRemover
	if store != nil {
		remover = store
	}
	return &Service{
		client: client,
		store:  store,
		engine: deletion.NewEngine(client, remover, log),
		cfg:    cfg,
		log:    log,
	}
}

// respond marshals a result payload. A marshal failure degrades into an
// error payload rather than panicking mid-operation.
func respond(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fail(err)
	}
	return string(b)
}

func fail(err error) string {
	b, merr := json.Marshal(map[string]string{"error": err.Error()})
	if merr != nil {
		return `{"error": "internal error"}`
	}
	return string(b)
}

func failf(format string, args ...any) string {
	return fail(fmt.Errorf(format, args...))
}

// ensureAuth establishes the session before a remote operation. The
// client makes this idempotent so calling it per-operation is cheap.
func (s *Service) ensureAuth(ctx context.Context) error {
	return s.client.Authenticate(ctx)
}

// spaceName derives the organization-space name for a repository,
// falling back to the configured default for unnamed roots.
func (s *Service) spaceName(rc *repo.Context) string {
	if rc.Name == "" || rc.Name == "." || rc.Name == "/" {
		if s.cfg.DefaultSpaceName != "" {
			return s.cfg.DefaultSpaceName
		}
	}
	return rc.SpaceName()
}

// pagePayload is the JSON projection of a full page used by read
// operations.
func pagePayload(p *wikijs.Page) map[string]any {
	return map[string]any{
		"id":           p.ID,
		"title":        p.Title,
		"path":         p.Path,
		"content":      p.Content,
		"description":  p.Description,
		"editor":       p.Editor,
		"is_published": p.IsPublished,
		"locale":       p.Locale,
		"created_at":   p.CreatedAt,
		"updated_at":   p.UpdatedAt,
		"author":       p.AuthorName,
		"tags":         p.TagNames(),
	}
}

// ConnectionStatus reports connectivity, authentication state, and
// local store statistics without failing the whole call when the
// remote side is down.
func (s *Service) ConnectionStatus(ctx context.Context) string {
	status := map[string]any{
		"api_url":       s.cfg.APIURL,
		"database_path": s.cfg.DBPath,
		"connected":     false,
		"authenticated": false,
	}

	if err := s.ensureAuth(ctx); err != nil {
		status["error"] = err.Error()
		return respond(status)
	}

	if _, err := s.client.ListPages(ctx); err != nil {
		status["error"] = err.Error()
		return respond(status)
	}

	status["connected"] = true
	status["authenticated"] = s.client.Authenticated()

	if s.store != nil {
		if n, err := s.store.Count(ctx); err == nil {
			status["mapped_files"] = n
		}
	}
	return respond(status)
}

// RepositoryContext detects the enclosing repository and reports the
// organization-space identity and mapping coverage tied to it.
func (s *Service) RepositoryContext(ctx context.Context) string {
	rc := repo.DetectOrFallback(s.cfg.RepositoryRoot)

	result := map[string]any{
		"repository_root": rc.Root,
		"repository_name": rc.Name,
		"has_git":         rc.HasGit,
		"space_name":      s.spaceName(rc),
	}

	if s.store == nil {
		return respond(result)
	}

	stored, err := s.store.GetOrCreateRepoContext(ctx, rc.Root, s.spaceName(rc))
	if err != nil {
		return fail(err)
	}
	result["space_name"] = stored.SpaceName
	if stored.SpaceID != nil {
		result["space_id"] = *stored.SpaceID
	}

	maps, err := s.store.ListByRepository(ctx, rc.Root)
	if err != nil {
		return fail(err)
	}
	result["mapped_files"] = len(maps)

	return respond(result)
}
