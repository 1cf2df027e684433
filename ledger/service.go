// Package ledger implements the production quantity ledger: declared
// quantities per assembly part, append-only production logs per process
// stage, derived balances, sequential dispatch report numbers and the
// partial-success mass-log operation. All I/O goes through the Store
// interface; the package itself holds no database handles and no ambient
// request state.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fabtrack/models"
)

// ActingUser identifies who performs a ledger operation. It is passed
// explicitly into every operation instead of being read from ambient
// session state, so the ledger stays testable in isolation.
type ActingUser struct {
	ID   int
	Name string
	Host string
	IP   string
}

// Store is the persistence contract the ledger depends on. GetPart must
// preload the part's project (galvanized/erectable flags) and building.
// AppendLog must re-validate the balance and report-number uniqueness
// inside its own transaction under a row lock on the part, returning
// *ConcurrencyError when the re-check fails and *IntegrityFault when the
// stored sums already exceed the declared quantity.
type Store interface {
	GetPart(ctx context.Context, id uint) (*models.AssemblyPart, error)
	ListLogs(ctx context.Context, partID uint, process ProcessType) ([]models.ProductionLog, error)
	AppendLog(ctx context.Context, entry *models.ProductionLog) error
	UpdatePartStatus(ctx context.Context, partID uint, status string, currentProcess ProcessType) error
}

// Service wires the ledger calculations to a Store.
type Service struct {
	store Store
}

// NewService returns a ledger service backed by the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// LogRequest is one validated production log submission.
type LogRequest struct {
	AssemblyPartID     uint
	Process            ProcessType
	DateProcessed      time.Time
	ProcessedQty       int
	ProcessingTeam     string
	ProcessingLocation string
	Remarks            string
	ReportNumber       string
}

// Balance computes the current processed/remaining pair for one part and
// process type. A negative remaining is surfaced as *IntegrityFault.
func (s *Service) Balance(ctx context.Context, partID uint, process ProcessType) (Balance, error) {
	part, err := s.store.GetPart(ctx, partID)
	if err != nil {
		return Balance{}, err
	}
	logs, err := s.store.ListLogs(ctx, partID, process)
	if err != nil {
		return Balance{}, err
	}
	return ComputeBalance(part, logs, process)
}

// GenerateReportNumber computes the next report number for the part and
// dispatch code without reserving it. Calling it twice without committing a
// log returns the same number both times.
func (s *Service) GenerateReportNumber(ctx context.Context, partID uint, dispatchCode string) (string, error) {
	dispatchType, ok := DispatchTypeByCode(dispatchCode)
	if !ok {
		return "", &ValidationError{Reason: fmt.Sprintf("unknown dispatch type code %q", dispatchCode)}
	}

	part, err := s.store.GetPart(ctx, partID)
	if err != nil {
		return "", err
	}
	logs, err := s.store.ListLogs(ctx, partID, dispatchType)
	if err != nil {
		return "", err
	}
	return NextReportNumber(part, logs, dispatchType)
}

// SelectableProcessTypes applies the project-level galvanization gate over
// a batch part selection.
func (s *Service) SelectableProcessTypes(ctx context.Context, partIDs []uint) ([]ProcessType, error) {
	parts := make([]models.AssemblyPart, 0, len(partIDs))
	for _, id := range partIDs {
		part, err := s.store.GetPart(ctx, id)
		if err != nil {
			return nil, err
		}
		parts = append(parts, *part)
	}
	return SelectableProcessTypes(parts), nil
}

// LogProduction validates and commits a single production log, then
// refreshes the part's derived status. On a commit-time race it retries the
// validate-and-append cycle once before surfacing *ConcurrencyError.
func (s *Service) LogProduction(ctx context.Context, req LogRequest, actor ActingUser) (*models.ProductionLog, error) {
	entry, err := s.commitLog(ctx, req, actor)
	if err != nil {
		var conflict *ConcurrencyError
		if !errors.As(err, &conflict) {
			return nil, err
		}
		// One internal retry: re-read, re-validate, regenerate the report
		// number if it was auto-assigned, and try the append again.
		entry, err = s.commitLog(ctx, req, actor)
		if err != nil {
			return nil, err
		}
	}

	if err := s.refreshPartStatus(ctx, req.AssemblyPartID); err != nil {
		return nil, fmt.Errorf("log committed but status refresh failed: %w", err)
	}
	return entry, nil
}

// commitLog runs one validate-and-append cycle against the current store
// state. The balance check here uses a plain read; the store's AppendLog
// repeats it under the row lock, so a stale read surfaces as
// *ConcurrencyError rather than an overcommit.
func (s *Service) commitLog(ctx context.Context, req LogRequest, actor ActingUser) (*models.ProductionLog, error) {
	if req.ProcessedQty <= 0 {
		return nil, &ValidationError{Reason: fmt.Sprintf("processed quantity must be positive, got %d", req.ProcessedQty)}
	}
	rule := req.Process.Rule()

	part, err := s.store.GetPart(ctx, req.AssemblyPartID)
	if err != nil {
		return nil, err
	}

	if rule.GalvanizationScoped && (part.Project == nil || !part.Project.Galvanized) {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("%s: %s is not available, the project is not galvanized",
				part.PartDesignation, req.Process),
		}
	}

	logs, err := s.store.ListLogs(ctx, req.AssemblyPartID, "")
	if err != nil {
		return nil, err
	}

	// Fabrication chain gate: the previous stage must be fully processed
	// before the next one accepts logs.
	if prev := previousChainProcess(req.Process); prev != "" {
		prevBalance, err := ComputeBalance(part, logs, prev)
		if err != nil {
			return nil, err
		}
		if prevBalance.ProcessedQty < part.Quantity {
			return nil, &ValidationError{
				Reason: fmt.Sprintf("%s: cannot log %s before completing %s (%d/%d done)",
					part.PartDesignation, req.Process, prev, prevBalance.ProcessedQty, part.Quantity),
			}
		}
	}

	balance, err := ComputeBalance(part, logs, req.Process)
	if err != nil {
		return nil, err
	}
	if req.ProcessedQty > balance.RemainingQty {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("%s: quantity %d exceeds remaining %d for %s",
				part.PartDesignation, req.ProcessedQty, balance.RemainingQty, req.Process),
		}
	}

	reportNumber := req.ReportNumber
	if rule.AutoReportNumber && reportNumber == "" {
		reportNumber, err = NextReportNumber(part, logs, req.Process)
		if err != nil {
			return nil, err
		}
	}

	entry := &models.ProductionLog{
		AssemblyPartID:     part.ID,
		ProcessType:        string(req.Process),
		DateProcessed:      req.DateProcessed,
		ProcessedQty:       req.ProcessedQty,
		ProcessingTeam:     req.ProcessingTeam,
		ProcessingLocation: req.ProcessingLocation,
		Remarks:            req.Remarks,
		ReportNumber:       reportNumber,
		CreatedBy:          actor.Name,
		CreatedAt:          time.Now(),
	}
	if err := s.store.AppendLog(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// refreshPartStatus recomputes the denormalized status cache from the log
// state. It is the last step of every commit and purely derived, so a
// skipped or repeated refresh converges on the next write.
func (s *Service) refreshPartStatus(ctx context.Context, partID uint) error {
	part, err := s.store.GetPart(ctx, partID)
	if err != nil {
		return err
	}
	logs, err := s.store.ListLogs(ctx, partID, "")
	if err != nil {
		return err
	}
	status, current := DeriveStatus(part, logs)
	return s.store.UpdatePartStatus(ctx, partID, status, current)
}
