// Package repo locates the repository a file belongs to and derives
// the organization-space identity from it.
package repo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// MarkerFile, when present in a directory, marks it as a repository
// root even without version control metadata.
const MarkerFile = ".wikijs_mcp"

// ErrNotInRepository is returned when no repository marker is found
// anywhere above the starting path.
var ErrNotInRepository = errors.New("not inside a repository")

// Context describes a detected repository.
type Context struct {
	// Root is the repository root directory.
	Root string

	// Name is the base name of the root directory.
	Name string

	// HasGit indicates a .git directory or file was found at Root.
	HasGit bool

	// HasMarker indicates the marker file was found at Root.
	HasMarker bool
}

// Detect walks up from path looking for a .git entry or the marker
// file. The nearest directory containing either wins.
//
// Returns ErrNotInRepository if the walk reaches the filesystem root
// without finding a marker.
func Detect(path string) (*Context, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	current := absPath
	for {
		gitPath := filepath.Join(current, ".git")
		markerPath := filepath.Join(current, MarkerFile)

		hasGit := false
		if _, err := os.Stat(gitPath); err == nil {
			// Both a .git directory and a worktree's .git file count.
			hasGit = true
		}

		hasMarker := false
		if info, err := os.Stat(markerPath); err == nil && info.Mode().IsRegular() {
			hasMarker = true
		}

		if hasGit || hasMarker {
			return &Context{
				Root:      current,
				Name:      filepath.Base(current),
				HasGit:    hasGit,
				HasMarker: hasMarker,
			}, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return nil, ErrNotInRepository
		}
		current = parent
	}
}

// DetectOrFallback is like Detect but treats the starting directory
// itself as the root when no marker is found. Being outside version
// control is acceptable for the mapping workflows.
func DetectOrFallback(path string) *Context {
	ctx, err := Detect(path)
	if err == nil {
		return ctx
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	return &Context{Root: absPath, Name: filepath.Base(absPath)}
}

// SpaceName derives a human-readable organization-space name from the
// repository name, e.g. "my-service" becomes "My Service Documentation".
func (c *Context) SpaceName() string {
	name := strings.TrimSpace(c.Name)
	if name == "" || name == string(filepath.Separator) || name == "." {
		return "Documentation"
	}

	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ") + " Documentation"
}
