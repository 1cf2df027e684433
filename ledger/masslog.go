package ledger

import (
	"context"
	"errors"
	"fmt"
)

// MassLogResult reports the outcome of a batch submission. Partial success
// is the designed behavior: entries that fail validation are skipped and
// recorded, never rolled together with the entries that passed.
type MassLogResult struct {
	SuccessCount int      `json:"successCount"`
	FailedCount  int      `json:"failedCount"`
	Errors       []string `json:"errors"`
}

// MassLog processes an ordered batch of log entries as a strict sequential
// fold: each entry's balance check runs after the previous entry committed,
// so two entries against the same part and process within one batch see
// each other's effect. Per-entry validation, not-found and concurrency
// rejections degrade to partial success; only a systemic store failure
// aborts the batch, returning the results accumulated so far alongside the
// error.
func (s *Service) MassLog(ctx context.Context, batch []LogRequest, actor ActingUser) (MassLogResult, error) {
	result := MassLogResult{Errors: []string{}}

	for _, req := range batch {
		_, err := s.LogProduction(ctx, req, actor)
		if err == nil {
			result.SuccessCount++
			continue
		}

		var (
			validation *ValidationError
			notFound   *NotFoundError
			conflict   *ConcurrencyError
			fault      *IntegrityFault
		)
		switch {
		case errors.As(err, &validation):
			result.Errors = append(result.Errors, validation.Reason)
		case errors.As(err, &notFound):
			result.Errors = append(result.Errors, fmt.Sprintf("part %d not found", notFound.ID))
		case errors.As(err, &conflict):
			result.Errors = append(result.Errors, conflict.Error())
		case errors.As(err, &fault):
			result.Errors = append(result.Errors, fault.Error())
		default:
			// Store unavailable or other systemic failure: stop here. The
			// entries already committed stay committed.
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("part %d: %v", req.AssemblyPartID, err))
			return result, err
		}
		result.FailedCount++
	}

	return result, nil
}
