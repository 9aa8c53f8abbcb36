package supervisor

import (
	"context"
	"fmt"

	"github.com/core-tools/hsu-sentinel/pkg/config"
	"github.com/core-tools/hsu-sentinel/pkg/logging"
	"github.com/core-tools/hsu-sentinel/pkg/notify"
	"github.com/core-tools/hsu-sentinel/pkg/probe"
	"github.com/core-tools/hsu-sentinel/pkg/recovery"
)

// Supervisor runs one health-decision pass over the monitored service:
// probe at increasing depth, recover on failure, escalate when recovery
// does not stick. A run is strictly sequential; overlap prevention is
// the external scheduler's job.
type Supervisor struct {
	identity config.ServiceIdentity
	policy   config.RetryPolicy
	probes   probe.Client
	actuator recovery.Actuator
	notifier notify.Notifier
	sleep    recovery.SleepFunc
	logger   logging.Logger
	state    runState
}

func NewSupervisor(identity config.ServiceIdentity, policy config.RetryPolicy, probes probe.Client,
	actuator recovery.Actuator, notifier notify.Notifier, logger logging.Logger) *Supervisor {
	return NewSupervisorWithSleep(identity, policy, probes, actuator, notifier, nil, logger)
}

// NewSupervisorWithSleep creates a supervisor with an injectable sleep
// function for testing. A nil sleep uses real delays.
func NewSupervisorWithSleep(identity config.ServiceIdentity, policy config.RetryPolicy, probes probe.Client,
	actuator recovery.Actuator, notifier notify.Notifier, sleep recovery.SleepFunc, logger logging.Logger) *Supervisor {
	if sleep == nil {
		sleep = recovery.DefaultSleep
	}
	return &Supervisor{
		identity: identity,
		policy:   policy,
		probes:   probes,
		actuator: actuator,
		notifier: notifier,
		sleep:    sleep,
		logger:   logger,
	}
}

// Run executes one supervision pass and returns the final outcome.
func (s *Supervisor) Run(ctx context.Context) RunOutcome {
	s.logger.Infof("Supervision run started, service: %s", s.identity.Name)

	// Rule 1: a dead process makes the remaining checks meaningless.
	s.transition(stateCheckingProcess)
	processCtx, cancel := context.WithTimeout(ctx, s.policy.CheckTimeout)
	alive := s.probes.CheckProcessAlive(processCtx, s.identity)
	cancel()
	if !alive {
		s.logger.Warnf("Process check failed, unit: %s is not active", s.identity.Unit)
		return s.recover(ctx, OutcomeEscalatedProcessDown,
			fmt.Sprintf("process check: unit %s is not active", s.identity.Unit))
	}

	// Rule 2: retry the health endpoint to absorb transient blips
	// before reaching for a restart.
	s.transition(stateCheckingHealth)
	if !s.healthEndpointUp(ctx) {
		s.logger.Warnf("Health endpoint failed all %d attempts, url: %s", s.policy.MaxRetries, s.identity.HealthURL)
		return s.recover(ctx, OutcomeEscalatedHealthDown,
			fmt.Sprintf("health check: %s failed %d attempts", s.identity.HealthURL, s.policy.MaxRetries))
	}

	// Rule 3: one functional round trip through the data path.
	s.transition(stateCheckingFunctional)
	result := s.probes.CheckFunctional(ctx, s.identity, s.policy.FunctionalTimeout)
	if !result.IsAlive() {
		s.logger.Warnf("Functional probe failed, status: %s, detail: %s", result.Status, result.Detail)
		return s.recover(ctx, OutcomeEscalatedFunctionalDown,
			fmt.Sprintf("functional probe: %s (%s)", result.Status, result.Detail))
	}

	// Rule 4: the common, cheap path touches neither actuator nor notifier.
	s.transition(stateHealthy)
	s.logger.Infof("Supervision run finished, outcome: %s", OutcomeAllHealthy)
	return OutcomeAllHealthy
}

func (s *Supervisor) healthEndpointUp(ctx context.Context) bool {
	for attempt := 1; attempt <= s.policy.MaxRetries; attempt++ {
		if s.probes.CheckHealthEndpoint(ctx, s.identity, s.policy.CheckTimeout) {
			s.logger.Infof("Health endpoint passed, attempt: %d/%d", attempt, s.policy.MaxRetries)
			return true
		}
		s.logger.Warnf("Health endpoint failed, attempt: %d/%d", attempt, s.policy.MaxRetries)
		if attempt < s.policy.MaxRetries {
			s.sleep(ctx, s.policy.RetryDelay)
		}
	}
	return false
}

// recover invokes the actuator once; its boolean verdict alone decides
// between a recovered and an escalated outcome.
func (s *Supervisor) recover(ctx context.Context, escalated RunOutcome, reason string) RunOutcome {
	s.transition(stateRecovering)

	if s.actuator.Restart(ctx, s.identity) {
		s.transition(stateHealthy)
		s.logger.Infof("Supervision run finished, outcome: %s", OutcomeRecoveredAfterRestart)
		return OutcomeRecoveredAfterRestart
	}

	s.transition(stateEscalated)
	s.escalate(ctx, reason)
	s.logger.Errorf("Supervision run finished, outcome: %s", escalated)
	return escalated
}

// escalate delivers exactly one human-facing alert for the run. The
// delivery result is deliberately discarded: a dead alert sink must not
// turn into a second failure.
func (s *Supervisor) escalate(ctx context.Context, reason string) {
	portState := "closed"
	if s.probes.CheckPortOpen(ctx, s.identity, s.policy.CheckTimeout) {
		portState = "open"
	}

	message := fmt.Sprintf("Automated recovery failed for %s. Failing stage: %s. Restart did not verify. TCP port %d is %s.",
		s.identity.Name, reason, s.identity.Port, portState)

	delivery := s.notifier.Notify(ctx, message)
	if !delivery.Delivered {
		s.logger.Warnf("Escalation alert not delivered: %s", delivery.Reason)
	}
}

func (s *Supervisor) transition(next runState) {
	if s.state == "" {
		s.logger.Infof("State: %s", next)
	} else {
		s.logger.Infof("State: %s -> %s", s.state, next)
	}
	s.state = next
}
