package ledger

import "fmt"

// ValidationError rejects malformed or out-of-range input: non-positive
// quantity, quantity exceeding the remaining balance, missing report number,
// or a process-order violation. Always recoverable by the caller.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NotFoundError reports a referenced assembly part that does not exist.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// ConcurrencyError reports that the balance (or report-number uniqueness)
// re-check at commit time failed because a concurrent writer got there
// first. The submission was not committed and may be retried.
type ConcurrencyError struct {
	PartID  uint
	Process ProcessType
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("balance for part %d changed during %s commit, retry the submission", e.PartID, e.Process)
}

// IntegrityFault reports stored log data whose processed sum already exceeds
// the declared quantity. This indicates corruption from outside this ledger
// and is surfaced loudly, never auto-corrected or clamped.
type IntegrityFault struct {
	PartID    uint
	Process   ProcessType
	Processed int
	Declared  int
}

func (e *IntegrityFault) Error() string {
	return fmt.Sprintf("integrity fault on part %d: %d processed for %s exceeds declared quantity %d",
		e.PartID, e.Processed, e.Process, e.Declared)
}
