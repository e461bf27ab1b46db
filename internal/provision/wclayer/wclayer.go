package wclayer

import (
	"context"
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/google/go-containerregistry/pkg/v1/tarball"

	"github.com/mesos-agent/rootfsprovisioner/internal/command"
	"github.com/mesos-agent/rootfsprovisioner/internal/pathutil"
	"github.com/mesos-agent/rootfsprovisioner/internal/provision"
)

// layerTool is the subset of command.Facade this package drives. Tests
// substitute a fake implementation so they never shell out to the real
// wclayer.exe.
type layerTool interface {
	WclayerImport(ctx context.Context, dir, input string, layers []string) error
	WclayerCreate(ctx context.Context, scratchDir string, layers []string) error
	WclayerMount(ctx context.Context, scratch string, layers []string) error
	WclayerUnmount(ctx context.Context, dir string) error
	WclayerRemove(ctx context.Context, dir string) error
}

// Backend is the Windows native layer backend.
type Backend struct {
	mu     sync.Mutex
	facade layerTool
}

// New creates a wclayer backend that drives the real wclayer.exe.
func New() *Backend {
	return &Backend{facade: command.Facade{}}
}

// NewWithTool creates a wclayer backend that drives wclayerTool (a path or
// PATH-resolvable name) instead of the default "wclayer".
func NewWithTool(wclayerTool string) *Backend {
	return &Backend{facade: command.Facade{WclayerTool: wclayerTool}}
}

// newWithFacade creates a wclayer backend against an arbitrary layerTool,
// for tests.
func newWithFacade(f layerTool) *Backend {
	return &Backend{facade: f}
}

// Name identifies this backend.
func (b *Backend) Name() string { return "wclayer" }

// Provision implements provision.Backend. layers are layer tarball paths,
// base first.
func (b *Backend) Provision(ctx context.Context, layers []string, rootfs, backendDir string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(layers) == 0 {
		return provision.ErrEmptyLayers
	}

	if _, err := os.Stat(pathutil.LongPath(rootfs)); err == nil {
		return provision.ErrAlreadyProvisioned
	} else if !os.IsNotExist(err) {
		return provision.IOError("stat", rootfs, err)
	}

	if err := os.Mkdir(pathutil.LongPath(rootfs), 0755); err != nil {
		return provision.IOError("mkdir", rootfs, err)
	}

	// Numeric per-layer directories keep each import target under rootfs
	// short; LongPath still guards the full path since rootfs itself may
	// already be deep.
	n := len(layers)
	dirs := make([]string, n) // dirs[i] = numeric import directory for layers[i]
	for processIdx := 0; processIdx < n; processIdx++ {
		layerIdx := n - 1 - processIdx
		dirs[layerIdx] = pathutil.LongPath(pathutil.Join(rootfs, strconv.Itoa(processIdx+1)))
	}

	// Import top-down: the top layer's import takes no parents; each
	// subsequent (lower) import takes the already-imported higher layers
	// as parents, in top-first order. Imports are chained sequentially.
	var parents []string
	for processIdx := 0; processIdx < n; processIdx++ {
		if err := ctx.Err(); err != nil {
			return provision.ErrCancelled
		}

		layerIdx := n - 1 - processIdx
		dir := dirs[layerIdx]
		tarPath := layers[layerIdx]

		if err := validateLayerTarball(tarPath); err != nil {
			return provision.SubprocessFailure("wclayer-import", "wclayer", "", err)
		}

		if err := b.facade.WclayerImport(ctx, dir, tarPath, parents); err != nil {
			return provision.SubprocessFailure("wclayer-import", "wclayer", cmdStderr(err), err)
		}

		parents = append(parents, dir)
	}

	// parents now holds every numeric dir in top-first order, base last —
	// exactly the "rlayers" convention wclayer create/mount expect.
	rlayers := parents

	scratchDir := pathutil.LongPath(pathutil.Join(backendDir, "scratch", pathutil.Base(rootfs)))

	if err := b.facade.WclayerCreate(ctx, scratchDir, rlayers); err != nil {
		return provision.SubprocessFailure("wclayer-create", "wclayer", cmdStderr(err), err)
	}

	if err := b.facade.WclayerMount(ctx, scratchDir, rlayers); err != nil {
		return provision.SubprocessFailure("wclayer-mount", "wclayer", cmdStderr(err), err)
	}

	return nil
}

// Destroy implements provision.Backend. Unmount failures are logged and do
// not abort — remove(scratch) and remove(rootfs) still run, and either one
// failing fails the overall destroy.
func (b *Backend) Destroy(ctx context.Context, rootfs, backendDir string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	scratchDir := pathutil.LongPath(pathutil.Join(backendDir, "scratch", pathutil.Base(rootfs)))

	if err := b.facade.WclayerUnmount(ctx, scratchDir); err != nil {
		log.Printf("wclayer: failed to unmount scratch directory %q: %v", scratchDir, err)
	}

	if err := b.facade.WclayerRemove(ctx, scratchDir); err != nil {
		return false, provision.SubprocessFailure("wclayer-remove", "wclayer", cmdStderr(err), err)
	}

	if err := b.facade.WclayerRemove(ctx, pathutil.LongPath(rootfs)); err != nil {
		return false, provision.SubprocessFailure("wclayer-remove", "wclayer", cmdStderr(err), err)
	}

	return true, nil
}

// validateLayerTarball confirms tarPath is readable as an OCI-style layer
// tarball before it is handed to wclayer import, which untars it itself —
// this only checks the boundary, it never unpacks the contents.
func validateLayerTarball(tarPath string) error {
	layer, err := tarball.LayerFromFile(tarPath)
	if err != nil {
		return err
	}
	_, err = layer.Size()
	return err
}

func cmdStderr(err error) string {
	if cmdErr, ok := err.(*command.Error); ok {
		return cmdErr.Stderr
	}
	return ""
}
