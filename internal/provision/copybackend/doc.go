// Package copybackend implements the whiteout-aware layered copy backend:
// for each layer, base first, it scans for AUFS whiteout markers, removes
// whatever they (or a kind/symlink change) shadow in the rootfs built so
// far, copies the layer in, and then deletes the whiteout markers that
// landed in the merge. POSIX and Windows share this algorithm; only the
// bulk-copy and destroy steps differ per platform.
package copybackend
