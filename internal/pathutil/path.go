// Package pathutil provides the small set of path and encoding helpers the
// provisioning backends need: join, split, prefix/suffix tests, and (on
// Windows) UTF-8↔UTF-16 conversion and long-path prefixing. These are kept
// as free functions, not a stateful type — there is no per-call
// configuration and no platform-wide state to own.
package pathutil

import (
	"path/filepath"
	"strings"
)

// Join joins path elements using the platform separator.
func Join(elem ...string) string {
	return filepath.Join(elem...)
}

// Base returns the last element of path.
func Base(path string) string {
	return filepath.Base(path)
}

// Dir returns all but the last element of path.
func Dir(path string) string {
	return filepath.Dir(path)
}

// HasPrefix reports whether name starts with prefix.
func HasPrefix(name, prefix string) bool {
	return strings.HasPrefix(name, prefix)
}

// HasSuffix reports whether name ends with suffix.
func HasSuffix(name, suffix string) bool {
	return strings.HasSuffix(name, suffix)
}

// TrimPrefix removes prefix from the front of name, if present.
func TrimPrefix(name, prefix string) string {
	return strings.TrimPrefix(name, prefix)
}

// Rel returns target relative to base using filepath.Rel semantics.
func Rel(base, target string) (string, error) {
	return filepath.Rel(base, target)
}
