package ledger

import "fabtrack/models"

// Balance is the derived processed/remaining pair for one (part, process)
// pair. It is computed fresh from the log history on every query and never
// persisted.
type Balance struct {
	PartID       uint        `json:"part_id"`
	Process      ProcessType `json:"process_type"`
	TotalQty     int         `json:"total_qty"`
	ProcessedQty int         `json:"processed"`
	RemainingQty int         `json:"remaining"`
}

// ComputeBalance folds the part's log history for one process type.
// No logs means processed 0 and the full declared quantity remaining.
// A negative remaining quantity is returned as an IntegrityFault together
// with the computed balance so callers can report the numbers; it is never
// silently clamped.
func ComputeBalance(part *models.AssemblyPart, logs []models.ProductionLog, process ProcessType) (Balance, error) {
	b := Balance{
		PartID:   part.ID,
		Process:  process,
		TotalQty: part.Quantity,
	}
	for _, entry := range logs {
		if entry.AssemblyPartID != part.ID || ProcessType(entry.ProcessType) != process {
			continue
		}
		b.ProcessedQty += entry.ProcessedQty
	}
	b.RemainingQty = b.TotalQty - b.ProcessedQty

	if b.RemainingQty < 0 {
		return b, &IntegrityFault{
			PartID:    part.ID,
			Process:   process,
			Processed: b.ProcessedQty,
			Declared:  part.Quantity,
		}
	}
	return b, nil
}

// ProcessedTotals sums processed quantity per process type across the
// part's full history.
func ProcessedTotals(logs []models.ProductionLog) map[ProcessType]int {
	totals := make(map[ProcessType]int)
	for _, entry := range logs {
		totals[ProcessType(entry.ProcessType)] += entry.ProcessedQty
	}
	return totals
}

// TerminalProcess is the stage that completes a part: Erection when the
// project has erection scope, otherwise Dispatched to Customer.
func TerminalProcess(project *models.Project) ProcessType {
	if project != nil && project.Erectable {
		return ProcessErection
	}
	return ProcessDispatchedToCustomer
}

// DeriveStatus computes the part's lifecycle status purely from its log
// history: Pending with no logs, Completed when the terminal process shows
// zero remaining, In Progress otherwise. The second return value is the
// most recently logged process, used for the current_process cache.
func DeriveStatus(part *models.AssemblyPart, logs []models.ProductionLog) (string, ProcessType) {
	var current ProcessType
	var anyLog bool
	for _, entry := range logs {
		if entry.AssemblyPartID != part.ID {
			continue
		}
		anyLog = true
		current = ProcessType(entry.ProcessType)
	}
	if !anyLog {
		return models.PartStatusPending, ""
	}

	terminal := TerminalProcess(part.Project)
	totals := ProcessedTotals(logs)
	if totals[terminal] >= part.Quantity {
		return models.PartStatusCompleted, current
	}
	return models.PartStatusInProgress, current
}
