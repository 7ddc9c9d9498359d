package reconcile

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// /X/Y/file.ext where X and Y are the directories directly above the leaf.
	primaryKeyPattern = regexp.MustCompile(`/[^/]/[^/]/[^/]+$`)
	// Leftmost /X/Y/ pair and everything after it.
	derivedKeyPattern = regexp.MustCompile(`/[^/]/[^/]/.*$`)
)

// RelativePath strips root from path and returns a slash-separated path with a
// leading slash. It returns "" when nothing is left after stripping.
func RelativePath(root, path string) string {
	root = filepath.ToSlash(filepath.Clean(root))
	path = filepath.ToSlash(filepath.Clean(path))

	rel := strings.TrimPrefix(path, root)
	if rel == "" || rel == "/" {
		return ""
	}
	if !strings.HasPrefix(rel, "/") {
		rel = "/" + rel
	}
	return rel
}

// ExtractKey derives the canonical key of a file from its root-relative path.
// The key has the shape of the catalog gallery values, e.g. "/a/b/photo.jpg".
// It returns false when the path carries no two-character signature.
func ExtractKey(rel string, area Area, fold bool) (string, bool) {
	if rel == "" {
		return "", false
	}

	pattern := derivedKeyPattern
	if area.Kind == KindPrimary {
		pattern = primaryKeyPattern
	}

	key := pattern.FindString(rel)
	if key == "" {
		return "", false
	}
	if fold {
		key = strings.ToLower(key)
	}
	return key, true
}
