//go:build !windows

package pathutil

// IsAbs reports whether path is an absolute POSIX path (starts with "/").
func IsAbs(path string) bool {
	return len(path) > 0 && path[0] == '/'
}
