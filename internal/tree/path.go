package tree

import (
	"strings"

	"github.com/pkg/errors"
)

// Root is the path of the wiki root.
const Root = "/"

// Normalize returns the canonical form of the given URL-decoded path.
// The result starts with a slash, has no empty segment and no trailing slash
// except for the root. Dot segments are rejected.
func Normalize(raw string) (string, error) {
	if strings.ContainsRune(raw, 0) {
		return "", errors.Wrap(ErrInvalidPath, "null byte")
	}

	segments := split(raw)
	for _, segment := range segments {
		if segment == "." || segment == ".." {
			return "", errors.Wrapf(ErrInvalidPath, "dot segment in %q", raw)
		}
	}

	return Root + strings.Join(segments, "/"), nil
}

// Depth returns the number of segments of the given path. The root has a depth of 0.
func Depth(path string) int {
	return len(split(path))
}

// Parent returns the path of the folder containing the given path.
// The parent of the root is the root.
func Parent(path string) string {
	segments := split(path)
	if len(segments) <= 1 {
		return Root
	}
	return Root + strings.Join(segments[:len(segments)-1], "/")
}

// Join returns the path of name inside the parent folder.
func Join(parent, name string) string {
	if parent == Root || parent == "" {
		return Root + strings.Trim(name, "/")
	}
	return strings.TrimRight(parent, "/") + "/" + strings.Trim(name, "/")
}

// SearchPrefix returns the prefix matching all the descendants of the given path.
func SearchPrefix(parent string) string {
	if parent == Root {
		return Root
	}
	return parent + "/"
}

func split(path string) []string {
	fields := strings.Split(path, "/")
	segments := fields[:0]
	for _, field := range fields {
		if field != "" {
			segments = append(segments, field)
		}
	}
	return segments
}
