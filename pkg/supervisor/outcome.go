package supervisor

// RunOutcome is the final result of a single supervision run. It is
// produced once per invocation and consumed by the exit-code layer.
type RunOutcome string

const (
	// OutcomeAllHealthy means every check passed without recovery.
	OutcomeAllHealthy RunOutcome = "all_healthy"

	// OutcomeRecoveredAfterRestart means a check failed but the restart
	// sequence brought the service back.
	OutcomeRecoveredAfterRestart RunOutcome = "recovered_after_restart"

	// Escalated outcomes mean recovery failed; the name records which
	// check first found the service unhealthy.
	OutcomeEscalatedProcessDown    RunOutcome = "escalated_process_down"
	OutcomeEscalatedHealthDown     RunOutcome = "escalated_health_down"
	OutcomeEscalatedFunctionalDown RunOutcome = "escalated_functional_down"
)

// Escalated reports whether the run ended in an unresolved failure.
func (o RunOutcome) Escalated() bool {
	switch o {
	case OutcomeEscalatedProcessDown, OutcomeEscalatedHealthDown, OutcomeEscalatedFunctionalDown:
		return true
	}
	return false
}

// ExitCode maps the outcome onto the process exit code, the sole
// machine-readable signal of a run: 0 healthy-or-recovered, 1 escalated.
func (o RunOutcome) ExitCode() int {
	if o.Escalated() {
		return 1
	}
	return 0
}

// runState tracks the supervisor's position in the checking sequence.
// States exist for logging; the flow itself is linear.
type runState string

const (
	stateCheckingProcess    runState = "checking_process"
	stateCheckingHealth     runState = "checking_health"
	stateCheckingFunctional runState = "checking_functional"
	stateRecovering         runState = "recovering"
	stateHealthy            runState = "healthy"
	stateEscalated          runState = "escalated"
)
