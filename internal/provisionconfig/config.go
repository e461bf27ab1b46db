// Package provisionconfig holds the rootfs provisioner's runtime
// configuration: backend selection, workspace layout, and the external
// tool names the command façade invokes.
package provisionconfig

import (
	"os"
	"path/filepath"
	"runtime"
)

// Config holds provisiond runtime configuration.
type Config struct {
	// DataDir is the base directory for provisioner runtime state.
	DataDir string

	// BackendDir is the per-backend private workspace directory (e.g. the
	// wclayer backend's scratch layer staging area).
	BackendDir string

	// RootfsDir is the directory under which per-container rootfs
	// directories are created.
	RootfsDir string

	// LayerCacheDir is the directory holding downloaded layer tarballs,
	// keyed by digest, that backends read layers from.
	LayerCacheDir string

	// Backend selects the provisioning backend: "copy" or "wclayer".
	// "auto" resolves per-platform in ResolveBackend.
	Backend string

	// CopyTool is the external copy command the copy backend invokes.
	// Empty means the platform default ("cp" on POSIX).
	CopyTool string

	// TarTool is the external tar command the command façade invokes.
	// Empty means "tar".
	TarTool string

	// WclayerTool is the external wclayer command the wclayer backend
	// invokes. Empty means "wclayer".
	WclayerTool string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	baseDir := filepath.Join(homeDir, ".provisiond")

	return &Config{
		DataDir:       baseDir,
		BackendDir:    filepath.Join(baseDir, "backend"),
		RootfsDir:     filepath.Join(baseDir, "rootfs"),
		LayerCacheDir: filepath.Join(baseDir, "layers"),
		Backend:       "auto",
	}
}

// EnsureDirs creates all required directories.
func (c *Config) EnsureDirs() error {
	dirs := []string{
		c.DataDir,
		c.BackendDir,
		c.RootfsDir,
		c.LayerCacheDir,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}

// ResolveBackend resolves "auto" to a concrete backend name: "wclayer" on
// Windows, "copy" everywhere else.
func (c *Config) ResolveBackend() {
	switch c.Backend {
	case "copy", "wclayer":
		// Explicit choice — keep as-is.
	default:
		if runtime.GOOS == "windows" {
			c.Backend = "wclayer"
		} else {
			c.Backend = "copy"
		}
	}
}
