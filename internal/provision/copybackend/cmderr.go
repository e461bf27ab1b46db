package copybackend

import "github.com/mesos-agent/rootfsprovisioner/internal/command"

// cmdStderr extracts captured stderr from a command.Error, if that's what
// err is, so BackendError can carry it without copybackend importing the
// command package's error type into its own public surface.
func cmdStderr(err error) string {
	if cmdErr, ok := err.(*command.Error); ok {
		return cmdErr.Stderr
	}
	return ""
}
