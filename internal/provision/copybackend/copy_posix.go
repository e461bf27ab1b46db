//go:build !windows

package copybackend

import (
	"context"
	"runtime"

	"github.com/mesos-agent/rootfsprovisioner/internal/pathutil"
	"github.com/mesos-agent/rootfsprovisioner/internal/provision"
)

// copyLayer performs Phase 3: recursively copy layer over rootfs,
// preserving attributes, ownership, and symlinks as links. On Linux this is
// `cp -aT layer rootfs`; BSD/macOS cp has no -T flag but copies a source's
// *contents* when the source path carries a trailing slash, so that form is
// used there instead.
func (b *Backend) copyLayer(ctx context.Context, layer, rootfs string) error {
	var args []string

	if runtime.GOOS == "darwin" || runtime.GOOS == "freebsd" {
		src := layer
		if !pathutil.HasSuffix(src, "/") {
			src += "/"
		}
		args = []string{"-a", src, rootfs}
	} else {
		args = []string{"-aT", layer, rootfs}
	}

	if err := b.runner.Run(ctx, "", b.copyTool(), args...); err != nil {
		return provision.SubprocessFailure("copy", b.copyTool(), cmdStderr(err), err)
	}

	return nil
}

// destroyRootfs removes rootfs in its entirety via `rm -rf`.
func (b *Backend) destroyRootfs(ctx context.Context, rootfs string) error {
	if err := b.runner.Run(ctx, "", b.rmTool(), "-rf", rootfs); err != nil {
		return provision.SubprocessFailure("rmdir", b.rmTool(), cmdStderr(err), err)
	}
	return nil
}
