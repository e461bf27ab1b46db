// Package provision defines the backend contract shared by the rootfs
// provisioners: the copy backend (internal/provision/copybackend) and the
// Windows native layer backend (internal/provision/wclayer).
//
// A Backend turns an ordered stack of image layers into a usable container
// root filesystem (Provision) and tears it down again (Destroy). Core
// callers never know which concrete backend they hold — the daemon entrypoint
// selects one at startup (by flag, or by platform) and drives it through this
// interface for the single provision or destroy it was invoked for.
package provision
