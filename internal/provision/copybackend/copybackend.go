package copybackend

import (
	"context"
	"os"
	"sync"

	"github.com/mesos-agent/rootfsprovisioner/internal/command"
	"github.com/mesos-agent/rootfsprovisioner/internal/provision"
)

// Backend is the whiteout-aware layered copy backend. The zero value is
// ready to use, invoking "cp"/"rm" as found on PATH. CopyTool/RmTool
// override those names.
type Backend struct {
	mu     sync.Mutex
	runner command.Runner

	CopyTool string
	RmTool   string
}

// New creates a Copy backend.
func New() *Backend {
	return &Backend{}
}

func (b *Backend) copyTool() string {
	if b.CopyTool != "" {
		return b.CopyTool
	}
	return "cp"
}

func (b *Backend) rmTool() string {
	if b.RmTool != "" {
		return b.RmTool
	}
	return "rm"
}

// Name identifies this backend.
func (b *Backend) Name() string { return "copy" }

// Provision implements provision.Backend.
func (b *Backend) Provision(ctx context.Context, layers []string, rootfs, backendDir string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(layers) == 0 {
		return provision.ErrEmptyLayers
	}

	if _, err := os.Stat(rootfs); err == nil {
		return provision.ErrAlreadyProvisioned
	} else if !os.IsNotExist(err) {
		return provision.IOError("stat", rootfs, err)
	}

	if err := os.Mkdir(rootfs, 0755); err != nil {
		return provision.IOError("mkdir", rootfs, err)
	}

	for _, layer := range layers {
		if err := ctx.Err(); err != nil {
			return provision.ErrCancelled
		}

		if err := b.applyLayer(ctx, layer, rootfs); err != nil {
			return err
		}
	}

	return nil
}

// applyLayer runs the four phases for one layer against the partially
// built rootfs: scan, pre-copy removals, copy, and post-copy whiteout
// cleanup.
func (b *Backend) applyLayer(ctx context.Context, layer, rootfs string) error {
	scan, err := scanLayer(layer, rootfs)
	if err != nil {
		return err
	}

	if err := applyPreCopyRemovals(scan.preCopyRemovals); err != nil {
		return err
	}

	if err := b.copyLayer(ctx, layer, rootfs); err != nil {
		return err
	}

	return removeWhiteoutMarkers(scan.whiteoutsToDelete)
}

// Destroy implements provision.Backend.
func (b *Backend) Destroy(ctx context.Context, rootfs, backendDir string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := os.Stat(rootfs); err != nil {
		return false, provision.IOError("stat", rootfs, err)
	}

	if err := b.destroyRootfs(ctx, rootfs); err != nil {
		return false, err
	}

	return true, nil
}
