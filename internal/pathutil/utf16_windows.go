//go:build windows

package pathutil

import "golang.org/x/sys/windows"

// ToUTF16 converts a UTF-8 path into the UTF-16 form the Windows API
// expects, without a trailing NUL (matching windows.UTF16FromString minus
// its sentinel entry).
func ToUTF16(path string) ([]uint16, error) {
	u16, err := windows.UTF16FromString(path)
	if err != nil {
		return nil, err
	}
	if n := len(u16); n > 0 && u16[n-1] == 0 {
		u16 = u16[:n-1]
	}
	return u16, nil
}

// FromUTF16 converts a NUL-terminated (or not) UTF-16 buffer back to UTF-8.
func FromUTF16(u16 []uint16) string {
	return windows.UTF16ToString(u16)
}

// LongPath prepends the \\?\ long-path prefix to an absolute path so
// Windows APIs accept paths beyond MAX_PATH. UNC paths get \\?\UNC\ instead.
// Paths already carrying a long-path prefix, or relative paths, are
// returned unchanged.
func LongPath(path string) string {
	if len(path) >= 4 && path[:4] == `\\?\` {
		return path
	}
	if len(path) >= 2 && path[:2] == `\\` {
		return `\\?\UNC\` + path[2:]
	}
	if !IsAbs(path) {
		return path
	}
	return `\\?\` + path
}
