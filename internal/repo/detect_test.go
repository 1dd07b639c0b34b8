package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDetect_FindsGitRootFromNestedDir(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0755); err != nil {
		t.Fatalf("Failed to create .git: %v", err)
	}
	nested := filepath.Join(root, "src", "internal", "deep")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("Failed to create nested dirs: %v", err)
	}

	ctx, err := Detect(nested)
	if err != nil {
		t.Fatalf("Failed to detect repository: %v", err)
	}
	if ctx.Root != root {
		t.Errorf("Expected root %q, got %q", root, ctx.Root)
	}
	if !ctx.HasGit {
		t.Error("Expected HasGit to be set")
	}
}

func TestDetect_MarkerFileWins(t *testing.T) {
	root := t.TempDir()
	marker := filepath.Join(root, MarkerFile)
	if err := os.WriteFile(marker, []byte("{}"), 0644); err != nil {
		t.Fatalf("Failed to write marker: %v", err)
	}

	ctx, err := Detect(root)
	if err != nil {
		t.Fatalf("Failed to detect repository: %v", err)
	}
	if !ctx.HasMarker {
		t.Error("Expected HasMarker to be set")
	}
	if ctx.HasGit {
		t.Error("Expected HasGit to be false")
	}
}

func TestDetect_NearestMarkerWins(t *testing.T) {
	outer := t.TempDir()
	if err := os.MkdirAll(filepath.Join(outer, ".git"), 0755); err != nil {
		t.Fatalf("Failed to create outer .git: %v", err)
	}
	inner := filepath.Join(outer, "vendor", "lib")
	if err := os.MkdirAll(filepath.Join(inner, ".git"), 0755); err != nil {
		t.Fatalf("Failed to create inner .git: %v", err)
	}

	ctx, err := Detect(inner)
	if err != nil {
		t.Fatalf("Failed to detect repository: %v", err)
	}
	if ctx.Root != inner {
		t.Errorf("Expected nearest root %q, got %q", inner, ctx.Root)
	}
}

func TestDetect_NotInRepository(t *testing.T) {
	dir := t.TempDir()

	_, err := Detect(dir)
	if !errors.Is(err, ErrNotInRepository) {
		t.Errorf("Expected ErrNotInRepository, got %v", err)
	}
}

func TestDetectOrFallback_UsesStartDir(t *testing.T) {
	dir := t.TempDir()

	ctx := DetectOrFallback(dir)
	if ctx.Root != dir {
		t.Errorf("Expected fallback root %q, got %q", dir, ctx.Root)
	}
	if ctx.Name != filepath.Base(dir) {
		t.Errorf("Expected name %q, got %q", filepath.Base(dir), ctx.Name)
	}
}

func TestSpaceName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"my-service", "My Service Documentation"},
		{"wiki_js_mcp", "Wiki Js Mcp Documentation"},
		{"backend", "Backend Documentation"},
		{"", "Documentation"},
	}
	for _, tt := range tests {
		ctx := &Context{Name: tt.name}
		if got := ctx.SpaceName(); got != tt.want {
			t.Errorf("SpaceName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
