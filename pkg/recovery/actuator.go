package recovery

import (
	"context"
	"time"

	"github.com/core-tools/hsu-sentinel/pkg/config"
	"github.com/core-tools/hsu-sentinel/pkg/logging"
	"github.com/core-tools/hsu-sentinel/pkg/probe"
	"github.com/core-tools/hsu-sentinel/pkg/procmgr"
)

// SleepFunc pauses for the given duration, returning early if the
// context is cancelled. Injectable so tests run without real delays.
type SleepFunc func(ctx context.Context, d time.Duration)

// Actuator owns the disruptive recovery sequence. Restart's boolean
// result is the authoritative "did recovery work" signal: the
// supervisor performs no re-probing of its own afterwards.
type Actuator interface {
	Restart(ctx context.Context, identity config.ServiceIdentity) bool
}

type actuator struct {
	manager procmgr.Manager
	probes  probe.Client
	policy  config.RetryPolicy
	sleep   SleepFunc
	logger  logging.Logger
}

func NewActuator(manager procmgr.Manager, probes probe.Client, policy config.RetryPolicy, logger logging.Logger) Actuator {
	return NewActuatorWithSleep(manager, probes, policy, DefaultSleep, logger)
}

// NewActuatorWithSleep creates an actuator with an injectable sleep
// function for testing.
func NewActuatorWithSleep(manager procmgr.Manager, probes probe.Client, policy config.RetryPolicy, sleep SleepFunc, logger logging.Logger) Actuator {
	return &actuator{
		manager: manager,
		probes:  probes,
		policy:  policy,
		sleep:   sleep,
		logger:  logger,
	}
}

// Restart runs the fixed recovery sequence: free the port, pause,
// restart the unit, wait for settle, verify the health endpoint once.
// The ordering must not change: restarting against a still-bound port
// risks a bind failure, and verifying before settle risks a false
// negative against a not-yet-ready listener.
func (a *actuator) Restart(ctx context.Context, identity config.ServiceIdentity) bool {
	a.logger.Infof("Recovery started, service: %s, unit: %s", identity.Name, identity.Unit)

	if err := a.manager.FreePort(ctx, identity.Port); err != nil {
		// Best effort; a stuck port holder is the restart's problem now.
		a.logger.Warnf("Port free step reported error, port: %d, error: %v", identity.Port, err)
	}
	a.sleep(ctx, a.policy.PortFreePause)

	if err := a.manager.Restart(ctx, identity.Unit); err != nil {
		a.logger.Errorf("Restart command failed, unit: %s, error: %v", identity.Unit, err)
		return false
	}

	a.logger.Infof("Restart issued, waiting %v for service to settle", a.policy.SettleDelay)
	a.sleep(ctx, a.policy.SettleDelay)

	healthy := a.probes.CheckHealthEndpoint(ctx, identity, a.policy.CheckTimeout)
	if healthy {
		a.logger.Infof("Recovery verified, service: %s is healthy after restart", identity.Name)
	} else {
		a.logger.Errorf("Recovery verification failed, service: %s is still unhealthy", identity.Name)
	}
	return healthy
}

func DefaultSleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
