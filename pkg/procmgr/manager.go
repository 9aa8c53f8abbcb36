package procmgr

import (
	"context"
	"os/exec"
)

// Manager is the process control collaborator: liveness queries and
// restarts against a named service unit, plus best-effort reclamation
// of the service's listening port.
type Manager interface {
	// IsActive reports whether the unit is running. The string is the
	// raw status for diagnostics. Never returns an error: any failure
	// to query counts as not active.
	IsActive(ctx context.Context, unit string) (bool, string)

	// Restart asks the process manager to restart the unit.
	Restart(ctx context.Context, unit string) error

	// FreePort terminates whatever is bound to the TCP port. Best
	// effort: a nil error when nothing is bound.
	FreePort(ctx context.Context, port int) error
}

// CommandRunner executes an external command and returns its combined
// output. Injectable so tests never shell out.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// DefaultCommandRunner runs commands through os/exec.
func DefaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}
