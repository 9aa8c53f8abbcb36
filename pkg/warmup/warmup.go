package warmup

import (
	"context"

	"github.com/core-tools/hsu-sentinel/pkg/config"
	"github.com/core-tools/hsu-sentinel/pkg/logging"
	"github.com/core-tools/hsu-sentinel/pkg/probe"
	"github.com/core-tools/hsu-sentinel/pkg/recovery"
)

// Warmup pre-exercises the functional path once at service boot so the
// first real request never pays the cold-start cost. It is one-shot: a
// failed warm-up is logged and left for the next supervision run to
// detect; it never triggers the recovery actuator.
type Warmup struct {
	identity config.ServiceIdentity
	policy   config.RetryPolicy
	probes   probe.Client
	sleep    recovery.SleepFunc
	logger   logging.Logger
}

func NewWarmup(identity config.ServiceIdentity, policy config.RetryPolicy, probes probe.Client, logger logging.Logger) *Warmup {
	return NewWarmupWithSleep(identity, policy, probes, nil, logger)
}

// NewWarmupWithSleep creates a warm-up runner with an injectable sleep
// function for testing. A nil sleep uses real delays.
func NewWarmupWithSleep(identity config.ServiceIdentity, policy config.RetryPolicy, probes probe.Client,
	sleep recovery.SleepFunc, logger logging.Logger) *Warmup {
	if sleep == nil {
		sleep = recovery.DefaultSleep
	}
	return &Warmup{
		identity: identity,
		policy:   policy,
		probes:   probes,
		sleep:    sleep,
		logger:   logger,
	}
}

// Run blocks until the health endpoint is reachable (bounded by the
// warm-up deadline), then performs the configured number of functional
// probes. True iff successes reach the quorum.
func (w *Warmup) Run(ctx context.Context) bool {
	w.logger.Infof("Warm-up started, service: %s", w.identity.Name)

	if !w.awaitReachable(ctx) {
		w.logger.Errorf("Warm-up aborted, health endpoint not reachable within %v", w.policy.WarmupMaxWait)
		return false
	}

	successes := 0
	for attempt := 1; attempt <= w.policy.WarmupAttempts; attempt++ {
		result := w.probes.CheckFunctional(ctx, w.identity, w.policy.FunctionalTimeout)
		if result.IsAlive() {
			successes++
			w.logger.Infof("Warm-up probe passed, attempt: %d/%d", attempt, w.policy.WarmupAttempts)
		} else {
			w.logger.Warnf("Warm-up probe failed, attempt: %d/%d, status: %s, detail: %s",
				attempt, w.policy.WarmupAttempts, result.Status, result.Detail)
		}
		if attempt < w.policy.WarmupAttempts {
			w.sleep(ctx, w.policy.WarmupPause)
		}
	}

	ok := successes >= w.policy.WarmupQuorum
	if ok {
		w.logger.Infof("Warm-up finished, successes: %d/%d (quorum %d)",
			successes, w.policy.WarmupAttempts, w.policy.WarmupQuorum)
	} else {
		w.logger.Errorf("Warm-up below quorum, successes: %d/%d (quorum %d); leaving detection to the next supervision run",
			successes, w.policy.WarmupAttempts, w.policy.WarmupQuorum)
	}
	return ok
}

func (w *Warmup) awaitReachable(ctx context.Context) bool {
	polls := int(w.policy.WarmupMaxWait / w.policy.WarmupPollInterval)
	if polls < 1 {
		polls = 1
	}

	for i := 1; i <= polls; i++ {
		if w.probes.CheckHealthEndpoint(ctx, w.identity, w.policy.CheckTimeout) {
			w.logger.Infof("Health endpoint reachable, poll: %d/%d", i, polls)
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		w.logger.Debugf("Health endpoint not reachable yet, poll: %d/%d", i, polls)
		if i < polls {
			w.sleep(ctx, w.policy.WarmupPollInterval)
		}
	}
	return false
}
