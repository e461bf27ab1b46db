// Package wclayer implements the Windows native layer backend: it imports
// a stack of layer tarballs into a Windows layer store with the external
// wclayer tool, then creates and mounts a writable scratch layer on top of
// the imported read-only stack.
package wclayer
