package provision

import (
	"errors"
	"fmt"
)

// ErrEmptyLayers is returned when Provision is called with no layers.
var ErrEmptyLayers = errors.New("no filesystem layers provided")

// ErrAlreadyProvisioned is returned when the target rootfs already exists.
var ErrAlreadyProvisioned = errors.New("rootfs is already provisioned")

// ErrCancelled is returned when the caller's context is found cancelled at
// a suspension point: the check made before each layer is applied or
// imported. A subprocess already running when the context is cancelled is
// not interrupted.
var ErrCancelled = errors.New("provision cancelled")

// BackendError wraps a failure from a specific stage of a backend
// operation. Stage names the phase (e.g. "mkdir", "copy", "whiteout-remove",
// "wclayer-import") so callers and logs can tell where things went wrong
// without parsing message text.
//
// Tool and Stderr are populated when the failure came from a subprocess;
// Path is populated when the failure came from a filesystem syscall. Both
// may be empty for failures raised directly by backend bookkeeping.
type BackendError struct {
	Stage  string
	Tool   string
	Path   string
	Stderr string
	Err    error
}

func (e *BackendError) Error() string {
	switch {
	case e.Tool != "" && e.Stderr != "":
		return fmt.Sprintf("%s: %s failed: %v: %s", e.Stage, e.Tool, e.Err, e.Stderr)
	case e.Tool != "":
		return fmt.Sprintf("%s: %s failed: %v", e.Stage, e.Tool, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Path, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// WhiteoutRemovalFailed reports that a post-copy whiteout marker could not
// be removed from the merged rootfs.
func WhiteoutRemovalFailed(path string, err error) error {
	return &BackendError{Stage: "whiteout-remove", Path: path, Err: err}
}

// IOError reports a low-level filesystem failure (mkdir/stat/walk/unlink/rmdir).
func IOError(op, path string, err error) error {
	return &BackendError{Stage: op, Path: path, Err: err}
}

// SubprocessFailure reports that an external command failed or could not be
// spawned/reaped.
func SubprocessFailure(stage, tool, stderr string, err error) error {
	return &BackendError{Stage: stage, Tool: tool, Stderr: stderr, Err: err}
}
