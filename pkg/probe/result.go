package probe

// Status classifies the outcome of a single probe.
type Status string

const (
	// StatusAlive means the probe round trip fully succeeded.
	StatusAlive Status = "alive"

	// StatusUnreachable means the service could not be reached at the
	// transport level (timeout, refused connection).
	StatusUnreachable Status = "unreachable"

	// StatusFunctionalFailure means the service answered but the
	// response was semantically wrong.
	StatusFunctionalFailure Status = "functional_failure"
)

// Result is the immutable outcome of one probe call. Detail carries a
// diagnostic string (typically the raw response body) for logging.
type Result struct {
	Status Status
	Detail string
}

func Alive() Result {
	return Result{Status: StatusAlive}
}

func Unreachable(detail string) Result {
	return Result{Status: StatusUnreachable, Detail: detail}
}

func FunctionalFailure(detail string) Result {
	return Result{Status: StatusFunctionalFailure, Detail: detail}
}

// IsAlive reports whether the probe succeeded.
func (r Result) IsAlive() bool {
	return r.Status == StatusAlive
}

// Artifact is the ephemeral record a functional probe stores in the
// monitored service. It exists only within one probe call: created,
// verified, then deleted best-effort before the probe returns.
type Artifact struct {
	ContentHash string
}
