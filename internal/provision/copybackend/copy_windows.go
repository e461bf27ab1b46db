//go:build windows

package copybackend

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mesos-agent/rootfsprovisioner/internal/pathutil"
	"github.com/mesos-agent/rootfsprovisioner/internal/provision"
)

// copyLayer performs Phase 3 on Windows: a recursive, attribute-preserving
// directory-tree copy, so nested directories are never silently skipped.
// Every destination path is routed through pathutil.LongPath before it
// reaches an os.* call, since a deep layer stack copied file-by-file
// (rather than via a single cp -aT) is exactly the case that runs past
// MAX_PATH in practice.
func (b *Backend) copyLayer(ctx context.Context, layer, rootfs string) error {
	return filepath.WalkDir(layer, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return provision.IOError("copy", path, walkErr)
		}
		if path == layer {
			return nil
		}

		rel, err := pathutil.Rel(layer, path)
		if err != nil {
			return provision.IOError("copy", path, err)
		}
		dst := pathutil.LongPath(pathutil.Join(rootfs, rel))
		src := pathutil.LongPath(path)

		info, err := entry.Info()
		if err != nil {
			return provision.IOError("copy", path, err)
		}

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			target, err := os.Readlink(src)
			if err != nil {
				return provision.IOError("copy", path, err)
			}
			// Round-trip the reparse target through UTF-16 — the form the
			// Windows symlink syscall actually stores it in — so an
			// unpaired surrogate from a malformed layer is caught here
			// with a clear error instead of surfacing as an opaque
			// CreateSymbolicLink failure.
			u16, err := pathutil.ToUTF16(target)
			if err != nil {
				return provision.IOError("copy", path, err)
			}
			target = pathutil.FromUTF16(u16)

			os.Remove(dst)
			if err := os.Symlink(target, dst); err != nil {
				return provision.IOError("copy", dst, err)
			}
		case entry.IsDir():
			if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
				return provision.IOError("copy", dst, err)
			}
		default:
			if err := copyFile(src, dst, info.Mode()); err != nil {
				return provision.IOError("copy", dst, err)
			}
		}

		return nil
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// destroyRootfs removes rootfs in its entirety via native recursive
// delete.
func (b *Backend) destroyRootfs(ctx context.Context, rootfs string) error {
	if err := os.RemoveAll(pathutil.LongPath(rootfs)); err != nil {
		return provision.IOError("rmdir", rootfs, err)
	}
	return nil
}
