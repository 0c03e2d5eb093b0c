package decide

import (
	"fmt"
	"strings"
)

// ContextError means the caller asked for a decision on a terminal or
// inconsistent position. Rejected before any sampling happens.
type ContextError struct {
	Reason string
}

func (e *ContextError) Error() string {
	return "decision context: " + e.Reason
}

// TransportError classifies a completion-transport failure:
// connectivity, auth, rate limit, provider fault, timeout. It is
// unrecoverable by the decision core and aborts all pending rounds.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "completion transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ExhaustedError means every retry round was consumed without a valid
// majority. It carries the full per-round trail so the caller never
// sees a bare "failed".
type ExhaustedError struct {
	Rounds []RoundRecord
}

func (e *ExhaustedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no valid move after %d round(s)", len(e.Rounds))
	for _, r := range e.Rounds {
		fmt.Fprintf(&b, "; round %d: %s", r.Round, strings.Join(r.Result.Reasons, " / "))
	}
	return b.String()
}
