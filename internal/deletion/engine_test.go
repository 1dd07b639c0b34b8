package deletion

import (
	"context"
	"fmt"
	"testing"

	"github.com/N3tn1la/wiki-js-mcp/internal/pathtree"
	"github.com/N3tn1la/wiki-js-mcp/internal/wikijs"
)

// stubPages is an in-memory page store keyed by id.
type stubPages struct {
	pages      map[int]*wikijs.Page
	failDelete map[int]bool
	deleteLog  []int
}

func newStubPages(paths map[int]string) *stubPages {
	s := &stubPages{pages: map[int]*wikijs.Page{}, failDelete: map[int]bool{}}
	for id, path := range paths {
		s.pages[id] = &wikijs.Page{ID: id, Path: path, Title: "Page " + path}
	}
	return s
}

func (s *stubPages) PageByID(_ context.Context, id int) (*wikijs.Page, error) {
	p, ok := s.pages[id]
	if !ok {
		return nil, wikijs.ErrNotFound
	}
	return p, nil
}

func (s *stubPages) PageByPath(_ context.Context, path, _ string) (*wikijs.Page, error) {
	for _, p := range s.pages {
		if p.Path == path {
			return p, nil
		}
	}
	return nil, wikijs.ErrNotFound
}

func (s *stubPages) ListPages(_ context.Context) ([]wikijs.PageSummary, error) {
	var out []wikijs.PageSummary
	for _, p := range s.pages {
		out = append(out, wikijs.PageSummary{ID: p.ID, Path: p.Path, Title: p.Title})
	}
	return out, nil
}

func (s *stubPages) DeletePage(_ context.Context, id int) error {
	s.deleteLog = append(s.deleteLog, id)
	if s.failDelete[id] {
		return fmt.Errorf("delete rejected for page %d", id)
	}
	if _, ok := s.pages[id]; !ok {
		return fmt.Errorf("page %d not found", id)
	}
	delete(s.pages, id)
	return nil
}

type stubRemover struct {
	removed []int
}

func (r *stubRemover) DeleteByPageID(_ context.Context, id int) error {
	r.removed = append(r.removed, id)
	return nil
}

func assertDepthMonotone(t *testing.T, targets []Target) {
	t.Helper()
	for i := 1; i < len(targets); i++ {
		prev, cur := pathtree.Depth(targets[i-1].Path), pathtree.Depth(targets[i].Path)
		if cur > prev {
			t.Errorf("Plan order violates deepest-first: %q (depth %d) before %q (depth %d)",
				targets[i-1].Path, prev, targets[i].Path, cur)
		}
	}
}

func TestPlanHierarchy_ChildrenOnlyOrdersDeepestFirst(t *testing.T) {
	pages := newStubPages(map[int]string{
		1: "docs",
		2: "docs/api",
		3: "docs/api/auth",
		4: "docs/guides",
		5: "other",
	})
	e := NewEngine(pages, nil, nil)

	plan, err := e.PlanHierarchy(context.Background(), "docs", ModeChildrenOnly)
	if err != nil {
		t.Fatalf("Failed to plan: %v", err)
	}

	if len(plan.Targets) != 3 {
		t.Fatalf("Expected 3 targets, got %d", len(plan.Targets))
	}
	assertDepthMonotone(t, plan.Targets)
	if plan.Targets[0].Path != "docs/api/auth" {
		t.Errorf("Expected deepest page first, got %q", plan.Targets[0].Path)
	}
	for _, target := range plan.Targets {
		if target.Path == "docs" {
			t.Error("children_only plan must not include the root page")
		}
		if target.Path == "other" {
			t.Error("Plan must not include pages outside the subtree")
		}
	}
}

func TestPlanHierarchy_IncludeRootPutsRootLast(t *testing.T) {
	pages := newStubPages(map[int]string{
		1: "docs",
		2: "docs/api",
		3: "docs/api/auth",
	})
	e := NewEngine(pages, nil, nil)

	plan, err := e.PlanHierarchy(context.Background(), "docs/", ModeIncludeRoot)
	if err != nil {
		t.Fatalf("Failed to plan: %v", err)
	}

	if len(plan.Targets) != 3 {
		t.Fatalf("Expected 3 targets, got %d", len(plan.Targets))
	}
	if plan.Targets[len(plan.Targets)-1].Path != "docs" {
		t.Errorf("Expected root deleted last, got %q", plan.Targets[len(plan.Targets)-1].Path)
	}
	assertDepthMonotone(t, plan.Targets)
}

func TestPlanHierarchy_RootOnly(t *testing.T) {
	pages := newStubPages(map[int]string{
		1: "docs",
		2: "docs/api",
	})
	e := NewEngine(pages, nil, nil)

	plan, err := e.PlanHierarchy(context.Background(), "docs", ModeRootOnly)
	if err != nil {
		t.Fatalf("Failed to plan: %v", err)
	}
	if len(plan.Targets) != 1 || plan.Targets[0].Path != "docs" {
		t.Fatalf("Expected only the root page, got %+v", plan.Targets)
	}
}

func TestPlanPattern_GlobCrossesSlashes(t *testing.T) {
	pages := newStubPages(map[int]string{
		1: "team-x/docs",
		2: "team-x/docs/api",
		3: "team-y/docs",
	})
	e := NewEngine(pages, nil, nil)

	plan, err := e.PlanPattern(context.Background(), "team-x/*")
	if err != nil {
		t.Fatalf("Failed to plan: %v", err)
	}
	if len(plan.Targets) != 2 {
		t.Fatalf("Expected 2 targets for team-x/*, got %d", len(plan.Targets))
	}
	for _, target := range plan.Targets {
		if target.Path == "team-y/docs" {
			t.Error("Pattern must not match outside team-x")
		}
	}
	assertDepthMonotone(t, plan.Targets)
}

func TestPlanPaths_ResolvesAndKeepsUnresolved(t *testing.T) {
	pages := newStubPages(map[int]string{
		1: "docs",
		2: "docs/api",
	})
	e := NewEngine(pages, nil, nil)

	plan, err := e.PlanPaths(context.Background(), []string{"docs/api/", "gone", "missing"}, "en")
	if err != nil {
		t.Fatalf("Failed to plan: %v", err)
	}
	if len(plan.Targets) != 3 {
		t.Fatalf("Expected 3 targets, got %d", len(plan.Targets))
	}
	if plan.Targets[0].ID != 2 {
		t.Errorf("Expected docs/api resolved to id 2, got %+v", plan.Targets[0])
	}

	report := e.Execute(context.Background(), plan, false)
	if len(report.Deleted) != 1 || len(report.Failed) != 2 {
		t.Errorf("Expected 1 deletion and 2 failures, got %d and %d",
			len(report.Deleted), len(report.Failed))
	}
}

func TestExecute_SkipsMappingCleanupWhenDisabled(t *testing.T) {
	pages := newStubPages(map[int]string{1: "docs"})
	remover := &stubRemover{}
	e := NewEngine(pages, remover, nil)

	plan, err := e.PlanIDs(context.Background(), []int{1})
	if err != nil {
		t.Fatalf("Failed to plan: %v", err)
	}
	e.Execute(context.Background(), plan, false)

	if len(remover.removed) != 0 {
		t.Errorf("Expected no mapping cleanup, got %v", remover.removed)
	}
}

func TestPlanIDs_DedupesByID(t *testing.T) {
	pages := newStubPages(map[int]string{
		1: "a",
		2: "a/b",
	})
	e := NewEngine(pages, nil, nil)

	plan, err := e.PlanIDs(context.Background(), []int{2, 1, 2, 2})
	if err != nil {
		t.Fatalf("Failed to plan: %v", err)
	}
	if len(plan.Targets) != 2 {
		t.Fatalf("Expected duplicate ids collapsed to 2 targets, got %d", len(plan.Targets))
	}
}

func TestExecute_ContinuesPastFailures(t *testing.T) {
	pages := newStubPages(map[int]string{
		1: "docs",
		2: "docs/api",
		3: "docs/guides",
	})
	pages.failDelete[2] = true
	e := NewEngine(pages, nil, nil)

	plan, err := e.PlanHierarchy(context.Background(), "docs", ModeIncludeRoot)
	if err != nil {
		t.Fatalf("Failed to plan: %v", err)
	}
	report := e.Execute(context.Background(), plan, true)

	if len(report.Deleted) != 2 {
		t.Errorf("Expected 2 deletions, got %d", len(report.Deleted))
	}
	if len(report.Failed) != 1 || report.Failed[0].ID != 2 {
		t.Fatalf("Expected page 2 to fail, got %+v", report.Failed)
	}
	if report.Failed[0].Error == "" {
		t.Error("Expected failure to carry an error message")
	}
	if len(pages.deleteLog) != 3 {
		t.Errorf("Expected one delete call per target, got %d", len(pages.deleteLog))
	}
}

func TestExecute_CleansUpMappings(t *testing.T) {
	pages := newStubPages(map[int]string{
		1: "docs",
		2: "docs/api",
	})
	remover := &stubRemover{}
	e := NewEngine(pages, remover, nil)

	plan, err := e.PlanIDs(context.Background(), []int{1, 2})
	if err != nil {
		t.Fatalf("Failed to plan: %v", err)
	}
	report := e.Execute(context.Background(), plan, true)

	if len(report.Deleted) != 2 {
		t.Fatalf("Expected 2 deletions, got %d", len(report.Deleted))
	}
	if len(remover.removed) != 2 {
		t.Errorf("Expected mapping cleanup for both pages, got %v", remover.removed)
	}
}

func TestExecute_UnresolvedTargetReportsFailure(t *testing.T) {
	pages := newStubPages(map[int]string{1: "a"})
	e := NewEngine(pages, nil, nil)

	plan, err := e.PlanIDs(context.Background(), []int{99})
	if err != nil {
		t.Fatalf("Failed to plan: %v", err)
	}
	report := e.Execute(context.Background(), plan, true)

	if len(report.Failed) != 1 || report.Failed[0].ID != 99 {
		t.Fatalf("Expected the unknown id to fail, got %+v", report.Failed)
	}
	if _, err := pages.PageByID(context.Background(), 1); err != nil {
		t.Error("Unrelated page must survive")
	}
}
