package copybackend

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/mesos-agent/rootfsprovisioner/internal/pathutil"
	"github.com/mesos-agent/rootfsprovisioner/internal/provision"
)

// scanResult is the outcome of Phase 1 (scan) for one layer: the paths to
// remove from rootfs before the layer is copied in (pre_copy_removals),
// and the paths, joined onto rootfs, of whiteout marker files to delete once
// the layer has been copied (whiteouts_to_delete).
type scanResult struct {
	preCopyRemovals   []string
	whiteoutsToDelete []string
}

// scanLayer walks layer (physical: never follows symlinks) and computes the
// removals and whiteout-marker cleanups spec'd in the Copy backend's
// Phase 1, in layer-traversal order. It never touches rootfs — it only
// decides what must happen to it.
func scanLayer(layer, rootfs string) (scanResult, error) {
	var result scanResult

	err := filepath.WalkDir(layer, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return provision.IOError("scan", path, walkErr)
		}
		if path == layer {
			return nil
		}

		rel, err := pathutil.Rel(layer, path)
		if err != nil {
			return provision.IOError("scan", path, err)
		}
		rp := pathutil.Join(rootfs, rel)

		isWhiteout := !entry.IsDir() && entry.Type().IsRegular() && pathutil.HasPrefix(entry.Name(), WhiteoutPrefix)

		var removePath string
		var removeSet bool

		if isWhiteout {
			result.whiteoutsToDelete = append(result.whiteoutsToDelete, rp)

			dir := pathutil.Dir(rel)
			if entry.Name() == OpaqueWhiteoutMarker {
				removePath = pathutil.Join(rootfs, dir)
			} else {
				removePath = pathutil.Join(rootfs, dir, pathutil.TrimPrefix(entry.Name(), WhiteoutPrefix))
			}
			removeSet = true
		}

		if info, err := os.Stat(rp); err == nil {
			entryIsDir := entry.IsDir()
			rpIsDir := info.IsDir()

			if entryIsDir != rpIsDir {
				// Kind change across layers: directory replaced by a
				// non-directory, or vice versa.
				removePath = rp
				removeSet = true
			} else if linkInfo, lerr := os.Lstat(rp); lerr == nil && linkInfo.Mode()&os.ModeSymlink != 0 {
				// Never let the subsequent copy follow a symlink it is
				// about to overwrite.
				removePath = rp
				removeSet = true
			}
		} else if !os.IsNotExist(err) && !errors.Is(err, syscall.ENOTDIR) {
			// ENOTDIR means an ancestor of rp in rootfs is not a directory
			// (it is queued for removal above), so rp does not exist either.
			return provision.IOError("scan", rp, err)
		}

		if removeSet {
			result.preCopyRemovals = append(result.preCopyRemovals, removePath)
		}

		return nil
	})
	if err != nil {
		return scanResult{}, err
	}

	return result, nil
}

// applyPreCopyRemovals executes Phase 2: remove each queued path, in order,
// tolerating paths an earlier removal already took out (e.g. an ancestor
// directory removed by an opaque whiteout).
func applyPreCopyRemovals(paths []string) error {
	for _, p := range paths {
		info, err := os.Lstat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return provision.IOError("pre-copy-removal", p, err)
		}

		if info.IsDir() {
			if err := os.RemoveAll(p); err != nil {
				return provision.IOError("pre-copy-removal", p, err)
			}
		} else {
			if err := os.Remove(p); err != nil {
				return provision.IOError("pre-copy-removal", p, err)
			}
		}
	}
	return nil
}

// removeWhiteoutMarkers executes Phase 4: delete each whiteout marker file
// that landed in rootfs once the layer has been copied in. A marker whose
// parent directory no longer exists (because an earlier removal in this
// same layer's pass took the whole subtree out) is not an error; a marker
// missing for any other reason is.
func removeWhiteoutMarkers(paths []string) error {
	for _, p := range paths {
		if err := os.Remove(p); err != nil {
			if os.IsNotExist(err) {
				if _, statErr := os.Stat(pathutil.Dir(p)); os.IsNotExist(statErr) {
					// Parent directory is gone — this layer pass already
					// wiped the whole subtree the marker would have lived
					// in. Not an error.
					continue
				}
			}
			return provision.WhiteoutRemovalFailed(p, err)
		}
	}
	return nil
}
