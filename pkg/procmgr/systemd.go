package procmgr

import (
	"context"
	"fmt"
	"strings"

	"github.com/core-tools/hsu-sentinel/pkg/errors"
	"github.com/core-tools/hsu-sentinel/pkg/logging"
)

// SystemdManagerOptions configures the systemd-backed Manager.
type SystemdManagerOptions struct {
	// UserUnit selects `systemctl --user` operation.
	UserUnit bool
}

type systemdManager struct {
	options SystemdManagerOptions
	runner  CommandRunner
	logger  logging.Logger
}

// NewSystemdManager returns a Manager that shells out to systemctl and
// fuser. A nil runner uses DefaultCommandRunner.
func NewSystemdManager(options SystemdManagerOptions, runner CommandRunner, logger logging.Logger) Manager {
	if runner == nil {
		runner = DefaultCommandRunner
	}
	return &systemdManager{
		options: options,
		runner:  runner,
		logger:  logger,
	}
}

func (s *systemdManager) systemctlArgs(args ...string) []string {
	if s.options.UserUnit {
		return append([]string{"--user"}, args...)
	}
	return args
}

func (s *systemdManager) IsActive(ctx context.Context, unit string) (bool, string) {
	output, err := s.runner(ctx, "systemctl", s.systemctlArgs("is-active", unit)...)
	status := strings.TrimSpace(string(output))

	if ctx.Err() == context.DeadlineExceeded {
		s.logger.Warnf("Liveness query timed out, unit: %s", unit)
		return false, "query-timeout"
	}

	// systemctl is-active exits nonzero for every non-active state and
	// prints the state name; both paths funnel into the status string.
	if err != nil && status == "" {
		s.logger.Warnf("Liveness query failed, unit: %s, error: %v", unit, err)
		return false, "query-failed"
	}

	return status == "active", status
}

func (s *systemdManager) Restart(ctx context.Context, unit string) error {
	s.logger.Infof("Restarting unit: %s", unit)

	output, err := s.runner(ctx, "systemctl", s.systemctlArgs("restart", unit)...)
	if ctx.Err() == context.DeadlineExceeded {
		return errors.NewTimeoutError("restart timed out", ctx.Err()).WithContext("unit", unit)
	}
	if err != nil {
		return errors.NewRecoveryError("restart failed", err).
			WithContext("unit", unit).
			WithContext("output", strings.TrimSpace(string(output)))
	}

	return nil
}

func (s *systemdManager) FreePort(ctx context.Context, port int) error {
	s.logger.Infof("Freeing TCP port: %d", port)

	// fuser exits nonzero when no process holds the port, which is the
	// common case here and not a failure.
	output, err := s.runner(ctx, "fuser", "-k", fmt.Sprintf("%d/tcp", port))
	if ctx.Err() == context.DeadlineExceeded {
		return errors.NewTimeoutError("port free timed out", ctx.Err()).WithContext("port", port)
	}
	if err != nil {
		s.logger.Debugf("No process bound to port %d (fuser: %v, output: %s)",
			port, err, strings.TrimSpace(string(output)))
	}

	return nil
}
