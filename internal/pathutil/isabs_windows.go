//go:build windows

package pathutil

// IsAbs reports whether path is absolute per the conventions this
// provisioner recognizes on Windows: a UNC path ("\\..."), including the
// "\\?\" long-path form, or a drive-letter path ("C:\..." or "C:/...").
func IsAbs(path string) bool {
	if len(path) >= 2 && path[:2] == `\\` {
		return true
	}
	if len(path) >= 3 && isDriveLetter(path[0]) && path[1] == ':' && (path[2] == '\\' || path[2] == '/') {
		return true
	}
	return false
}

func isDriveLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
