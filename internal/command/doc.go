// Package command is the external-tool façade: thin, typed wrappers around
// tar, sha512sum, and (on Windows) wclayer, each dispatched through a single
// Runner that spawns the child process, captures stderr, and reports a
// uniform *Error on failure. Gzip and Decompress run in-process and spawn
// no child.
//
// Library code above this package never touches os/exec directly. The
// wclayer backend calls the Wclayer* wrappers; the copy backend builds its
// own cp and rm argument vectors and runs them through Runner.
package command
