package provision

import "context"

// Backend realizes a container rootfs from an ordered stack of image
// layers, and tears it down again on container destruction.
//
// Implementations serialize their own operations — a single Backend value
// must not run two Provision/Destroy calls concurrently against the same
// rootfs. Multiple Backend instances (or the same backend against different
// rootfs paths, one at a time) may run in parallel.
type Backend interface {
	// Provision composes layers (base-first) into rootfs, using backendDir
	// as private workspace. It fails with ErrEmptyLayers if layers is
	// empty, ErrAlreadyProvisioned if rootfs already exists, or a
	// *BackendError for any I/O or subprocess failure.
	//
	// On success rootfs exists and is non-empty, and no whiteout marker
	// files remain under it.
	Provision(ctx context.Context, layers []string, rootfs, backendDir string) error

	// Destroy tears down a previously provisioned rootfs. It returns true
	// on full success. false is reserved for "nothing to destroy" outcomes;
	// current backends always return true or a non-nil error.
	Destroy(ctx context.Context, rootfs, backendDir string) (bool, error)

	// Name identifies the backend ("copy" or "wclayer").
	Name() string
}
