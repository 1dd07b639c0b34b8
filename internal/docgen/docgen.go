// Package docgen derives documentation artifacts from source files:
// content fingerprints, slugged page paths, and generated overview
// pages.
package docgen

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// FileHash returns the hex-encoded sha256 of the file contents.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Slugify converts an arbitrary name into a URL-safe path segment.
func Slugify(name string) string {
	return slug.Make(name)
}

// PagePath derives a hierarchical page path from a file path relative
// to the repository root. Every directory segment and the file name
// are slugged independently; the extension is dropped.
//
// "src/Auth Service/login.go" becomes "src/auth-service/login".
func PagePath(relPath string) string {
	relPath = filepath.ToSlash(relPath)
	ext := filepath.Ext(relPath)
	relPath = strings.TrimSuffix(relPath, ext)

	parts := strings.Split(relPath, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || p == "." {
			continue
		}
		out = append(out, slug.Make(p))
	}
	return strings.Join(out, "/")
}

// Stats summarizes the line makeup of a source file.
type Stats struct {
	TotalLines   int
	CodeLines    int
	CommentLines int
	BlankLines   int
}

// CountStats classifies each line of content. Lines whose first
// non-blank characters are a common comment leader count as comments;
// block comment interiors are not tracked.
func CountStats(content string) Stats {
	var s Stats
	for _, line := range strings.Split(content, "\n") {
		s.TotalLines++
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			s.BlankLines++
		case strings.HasPrefix(trimmed, "//"),
			strings.HasPrefix(trimmed, "#"),
			strings.HasPrefix(trimmed, "/*"),
			strings.HasPrefix(trimmed, "*"):
			s.CommentLines++
		default:
			s.CodeLines++
		}
	}
	return s
}

// Overview generates a markdown overview page for a source file. Go
// files get a declaration outline; other files get line statistics
// only.
func Overview(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	content := string(data)

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", filepath.Base(path))
	b.WriteString("## File Information\n\n")
	fmt.Fprintf(&b, "- **Path**: `%s`\n", filepath.ToSlash(path))
	fmt.Fprintf(&b, "- **Size**: %d bytes\n", info.Size())
	fmt.Fprintf(&b, "- **Modified**: %s\n\n", info.ModTime().UTC().Format(time.RFC3339))

	if strings.EqualFold(filepath.Ext(path), ".go") {
		outline, err := GoOutline(path, content)
		if err == nil && outline != "" {
			b.WriteString(outline)
		}
	}

	stats := CountStats(content)
	b.WriteString("## Statistics\n\n")
	fmt.Fprintf(&b, "- Total lines: %d\n", stats.TotalLines)
	fmt.Fprintf(&b, "- Code lines: %d\n", stats.CodeLines)
	fmt.Fprintf(&b, "- Comment lines: %d\n", stats.CommentLines)
	fmt.Fprintf(&b, "- Blank lines: %d\n", stats.BlankLines)

	return b.String(), nil
}

// SyncContent wraps the file contents in a fenced code block suitable
// for a documentation page body.
func SyncContent(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	lang := strings.TrimPrefix(filepath.Ext(path), ".")
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", filepath.Base(path))
	fmt.Fprintf(&b, "```%s\n", lang)
	b.Write(data)
	if len(data) > 0 && data[len(data)-1] != '\n' {
		b.WriteByte('\n')
	}
	b.WriteString("```\n")
	return b.String(), nil
}
