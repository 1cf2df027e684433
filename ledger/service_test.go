package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"fabtrack/models"
)

var testActor = ActingUser{ID: 7, Name: "Jane Welder", Host: "jane@example.com", IP: "10.0.0.5"}

func logReq(partID uint, process ProcessType, qty int) LogRequest {
	return LogRequest{
		AssemblyPartID: partID,
		Process:        process,
		DateProcessed:  time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		ProcessedQty:   qty,
		ProcessingTeam: "Team A",
	}
}

func TestLogProductionHappyPath(t *testing.T) {
	store := newFakeStore(testPart(1, 10, false, true))
	svc := NewService(store)

	entry, err := svc.LogProduction(context.Background(), logReq(1, ProcessPreparation, 4), testActor)
	if err != nil {
		t.Fatalf("LogProduction() error = %v", err)
	}
	if entry.ProcessedQty != 4 || entry.ProcessType != string(ProcessPreparation) {
		t.Errorf("entry = %d x %s, want 4 x %s", entry.ProcessedQty, entry.ProcessType, ProcessPreparation)
	}
	if entry.CreatedBy != testActor.Name {
		t.Errorf("CreatedBy = %q, want %q", entry.CreatedBy, testActor.Name)
	}

	balance, err := svc.Balance(context.Background(), 1, ProcessPreparation)
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	if balance.ProcessedQty != 4 || balance.RemainingQty != 6 {
		t.Errorf("balance = %d/%d remaining, want 4/6", balance.ProcessedQty, balance.RemainingQty)
	}

	if store.parts[1].Status != models.PartStatusInProgress {
		t.Errorf("status = %q, want %q", store.parts[1].Status, models.PartStatusInProgress)
	}
	if store.parts[1].CurrentProcess != string(ProcessPreparation) {
		t.Errorf("current process = %q, want %q", store.parts[1].CurrentProcess, ProcessPreparation)
	}
}

func TestLogProductionValidation(t *testing.T) {
	tests := []struct {
		name string
		req  LogRequest
	}{
		{"zero quantity", logReq(1, ProcessPreparation, 0)},
		{"negative quantity", logReq(1, ProcessPreparation, -3)},
		{"quantity exceeds remaining", logReq(1, ProcessPreparation, 11)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore(testPart(1, 10, false, true))
			svc := NewService(store)

			_, err := svc.LogProduction(context.Background(), tt.req, testActor)
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if len(store.logs) != 0 {
				t.Errorf("rejected submission left %d logs behind", len(store.logs))
			}
		})
	}
}

func TestLogProductionExactRemaining(t *testing.T) {
	store := newFakeStore(testPart(1, 10, false, true))
	store.seedLog(1, ProcessPreparation, 7, "")
	svc := NewService(store)

	if _, err := svc.LogProduction(context.Background(), logReq(1, ProcessPreparation, 3), testActor); err != nil {
		t.Fatalf("logging the exact remaining quantity failed: %v", err)
	}

	_, err := svc.LogProduction(context.Background(), logReq(1, ProcessPreparation, 1), testActor)
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("logging past zero remaining: error = %v, want *ValidationError", err)
	}
}

func TestLogProductionUnknownPart(t *testing.T) {
	svc := NewService(newFakeStore())

	_, err := svc.LogProduction(context.Background(), logReq(99, ProcessPreparation, 1), testActor)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *NotFoundError", err)
	}
	if notFound.ID != 99 {
		t.Errorf("ID = %d, want 99", notFound.ID)
	}
}

func TestLogProductionChainGate(t *testing.T) {
	store := newFakeStore(testPart(1, 10, false, true))
	svc := NewService(store)
	ctx := context.Background()

	// Welding before Fit-up is complete is rejected.
	_, err := svc.LogProduction(ctx, logReq(1, ProcessWelding, 2), testActor)
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("welding before fit-up: error = %v, want *ValidationError", err)
	}

	// Partially fitted is still not enough.
	store.seedLog(1, ProcessFitUp, 6, "")
	if _, err := svc.LogProduction(ctx, logReq(1, ProcessWelding, 2), testActor); err == nil {
		t.Fatal("welding accepted with fit-up at 6/10")
	}

	// Fully fitted opens welding.
	store.seedLog(1, ProcessFitUp, 4, "")
	if _, err := svc.LogProduction(ctx, logReq(1, ProcessWelding, 2), testActor); err != nil {
		t.Fatalf("welding after full fit-up failed: %v", err)
	}

	// Visualization still waits on welding.
	if _, err := svc.LogProduction(ctx, logReq(1, ProcessVisualization, 1), testActor); err == nil {
		t.Fatal("visualization accepted with welding at 2/10")
	}

	// Stages outside the chain are never gated.
	if _, err := svc.LogProduction(ctx, logReq(1, ProcessSandblasting, 5), testActor); err != nil {
		t.Fatalf("sandblasting should not be chain-gated: %v", err)
	}
}

func TestLogProductionGalvanizationGate(t *testing.T) {
	store := newFakeStore(testPart(1, 10, false, true), testPart(2, 10, true, true))
	svc := NewService(store)
	ctx := context.Background()

	for _, process := range []ProcessType{ProcessGalvanization, ProcessDispatchedToGalvanization} {
		_, err := svc.LogProduction(ctx, logReq(1, process, 1), testActor)
		var validation *ValidationError
		if !errors.As(err, &validation) {
			t.Errorf("%s on non-galvanized project: error = %v, want *ValidationError", process, err)
		}
	}

	if _, err := svc.LogProduction(ctx, logReq(2, ProcessGalvanization, 3), testActor); err != nil {
		t.Errorf("galvanization on galvanized project failed: %v", err)
	}
}

func TestLogProductionAutoReportNumber(t *testing.T) {
	store := newFakeStore(testPart(1, 10, false, true))
	svc := NewService(store)
	ctx := context.Background()

	first, err := svc.LogProduction(ctx, logReq(1, ProcessDispatchedToSandblasting, 3), testActor)
	if err != nil {
		t.Fatalf("LogProduction() error = %v", err)
	}
	if first.ReportNumber != "P-100-B1-DSB-001" {
		t.Errorf("first report number = %q, want P-100-B1-DSB-001", first.ReportNumber)
	}

	second, err := svc.LogProduction(ctx, logReq(1, ProcessDispatchedToSandblasting, 2), testActor)
	if err != nil {
		t.Fatalf("second LogProduction() error = %v", err)
	}
	if second.ReportNumber != "P-100-B1-DSB-002" {
		t.Errorf("second report number = %q, want P-100-B1-DSB-002", second.ReportNumber)
	}
}

func TestLogProductionKeepsCallerReportNumber(t *testing.T) {
	store := newFakeStore(testPart(1, 10, false, true))
	svc := NewService(store)

	req := logReq(1, ProcessDispatchedToCustomer, 3)
	req.ReportNumber = "CUSTOMER-REF-17"

	entry, err := svc.LogProduction(context.Background(), req, testActor)
	if err != nil {
		t.Fatalf("LogProduction() error = %v", err)
	}
	if entry.ReportNumber != "CUSTOMER-REF-17" {
		t.Errorf("report number = %q, want the caller's value", entry.ReportNumber)
	}
}

func TestLogProductionCompletesPart(t *testing.T) {
	part := testPart(1, 10, false, false) // not erectable: customer dispatch is terminal
	store := newFakeStore(part)
	svc := NewService(store)

	req := logReq(1, ProcessDispatchedToCustomer, 10)
	req.ReportNumber = "DCU-MANUAL-1"
	if _, err := svc.LogProduction(context.Background(), req, testActor); err != nil {
		t.Fatalf("LogProduction() error = %v", err)
	}

	if store.parts[1].Status != models.PartStatusCompleted {
		t.Errorf("status = %q, want %q", store.parts[1].Status, models.PartStatusCompleted)
	}
}

func TestLogProductionStaleReadConflict(t *testing.T) {
	part := testPart(1, 10, false, true)
	store := newFakeStore(part)
	svc := NewService(store)
	ctx := context.Background()

	// First writer commits 6 of 10.
	if _, err := svc.LogProduction(ctx, logReq(1, ProcessPreparation, 6), testActor); err != nil {
		t.Fatalf("first commit failed: %v", err)
	}

	// Second writer read before the first commit: its pre-check sees an
	// empty history, but the append re-check sees the truth. Both the
	// first attempt and the internal retry fail, so the conflict surfaces.
	store.staleLogs = []models.ProductionLog{}
	_, err := svc.LogProduction(ctx, logReq(1, ProcessPreparation, 6), testActor)
	var conflict *ConcurrencyError
	if !errors.As(err, &conflict) {
		t.Fatalf("error = %v, want *ConcurrencyError", err)
	}
	store.staleLogs = nil

	// Exactly one of the two submissions committed.
	balance, err := svc.Balance(ctx, 1, ProcessPreparation)
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	if balance.ProcessedQty != 6 {
		t.Errorf("processed = %d, want 6 (one commit only)", balance.ProcessedQty)
	}
}

func TestLogProductionRetriesOnceAfterConflict(t *testing.T) {
	part := testPart(1, 10, false, true)
	store := newFakeStore(part)
	// A concurrent writer already committed DSB-001 but the second
	// writer's first read misses it, so the auto-generated number
	// collides. The internal retry regenerates from fresh state.
	store.seedLog(1, ProcessDispatchedToSandblasting, 2, "P-100-B1-DSB-001")
	firstRead := true
	svc := NewService(&flakyStore{fakeStore: store, onList: func() {
		if firstRead {
			store.staleLogs = []models.ProductionLog{}
			firstRead = false
		} else {
			store.staleLogs = nil
		}
	}})

	entry, err := svc.LogProduction(context.Background(), logReq(1, ProcessDispatchedToSandblasting, 3), testActor)
	if err != nil {
		t.Fatalf("LogProduction() should succeed on retry, got %v", err)
	}
	if entry.ReportNumber != "P-100-B1-DSB-002" {
		t.Errorf("ReportNumber = %q, want P-100-B1-DSB-002", entry.ReportNumber)
	}
	if store.appendCalls != 2 {
		t.Errorf("appendCalls = %d, want 2 (initial attempt + one retry)", store.appendCalls)
	}
}

// flakyStore lets tests flip the underlying snapshot per ListLogs call.
type flakyStore struct {
	*fakeStore
	onList func()
}

func (s *flakyStore) ListLogs(ctx context.Context, partID uint, process ProcessType) ([]models.ProductionLog, error) {
	s.onList()
	return s.fakeStore.ListLogs(ctx, partID, process)
}
