// Package pathtree derives hierarchy from flat, slash-delimited page
// paths.
//
// Wiki.js stores pages under a flat keyed namespace; the tree implied by
// "/" separators is never persisted anywhere. Every function here is a
// pure computation over one fetched snapshot of the page list, so
// hierarchy decisions inside a single operation observe a consistent
// view even while other actors mutate the remote store.
package pathtree

import "strings"

// NormalizeParent strips trailing slashes from a parent path. An empty
// parent addresses the root level.
func NormalizeParent(parent string) string {
	return strings.TrimRight(parent, "/")
}

// Depth returns the number of "/" separators in a path. Top-level pages
// have depth 0.
func Depth(path string) int {
	return strings.Count(path, "/")
}

// ChildrenOf returns the direct descendants of parent: every path that
// starts with parent+"/" and has no further "/" after that prefix.
// Comparison is case-sensitive and exact; no percent-encoding or locale
// canonicalization is attempted.
func ChildrenOf(paths []string, parent string) []string {
	parent = NormalizeParent(parent)
	prefix := parent + "/"
	if parent == "" {
		prefix = ""
	}

	var children []string
	for _, p := range paths {
		if parent != "" && !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if rest == "" || strings.Contains(rest, "/") {
			continue
		}
		children = append(children, p)
	}
	return children
}

// Descendants returns every path strictly below root, at any depth.
func Descendants(paths []string, root string) []string {
	var out []string
	for _, p := range paths {
		if IsDescendant(p, root) {
			out = append(out, p)
		}
	}
	return out
}

// IsDescendant reports whether path lies strictly below root. A path
// never descends from itself, and "ab/x" is not below "a".
func IsDescendant(path, root string) bool {
	return strings.HasPrefix(path, NormalizeParent(root)+"/")
}

// Match reports whether path matches a glob-style pattern. "*" matches
// any run of characters including "/", and "?" matches one character, so
// "team-x/*" covers the whole team-x subtree.
func Match(path, pattern string) bool {
	return matchHere(path, pattern)
}

func matchHere(s, pat string) bool {
	for len(pat) > 0 {
		switch pat[0] {
		case '*':
			// Collapse consecutive stars, then try every split point.
			for len(pat) > 0 && pat[0] == '*' {
				pat = pat[1:]
			}
			if len(pat) == 0 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if matchHere(s[i:], pat) {
					return true
				}
			}
			return false
		case '?':
			if len(s) == 0 {
				return false
			}
			s, pat = s[1:], pat[1:]
		default:
			if len(s) == 0 || s[0] != pat[0] {
				return false
			}
			s, pat = s[1:], pat[1:]
		}
	}
	return len(s) == 0
}
