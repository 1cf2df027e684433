package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fabtrack/models"
)

func TestMassLogPartialSuccess(t *testing.T) {
	store := newFakeStore(testPart(1, 10, false, true))
	svc := NewService(store)

	// 4 + 4 commit, the third 4 exceeds the remaining 2.
	batch := []LogRequest{
		logReq(1, ProcessPreparation, 4),
		logReq(1, ProcessPreparation, 4),
		logReq(1, ProcessPreparation, 4),
	}

	result, err := svc.MassLog(context.Background(), batch, testActor)
	if err != nil {
		t.Fatalf("MassLog() error = %v", err)
	}
	if result.SuccessCount != 2 || result.FailedCount != 1 {
		t.Fatalf("result = %d/%d, want 2 success 1 failed", result.SuccessCount, result.FailedCount)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %v, want exactly one entry", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "exceeds remaining") {
		t.Errorf("error text = %q, want a remaining-balance rejection", result.Errors[0])
	}

	balance, err := svc.Balance(context.Background(), 1, ProcessPreparation)
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	if balance.ProcessedQty != 8 {
		t.Errorf("processed = %d, want 8 (committed entries stay committed)", balance.ProcessedQty)
	}
}

func TestMassLogSequentialWithinBatch(t *testing.T) {
	store := newFakeStore(testPart(1, 10, false, true))
	svc := NewService(store)

	// Each entry sees the previous entry's commit: 6 + 4 exactly fills the
	// declared quantity, a further 1 is rejected.
	batch := []LogRequest{
		logReq(1, ProcessPreparation, 6),
		logReq(1, ProcessPreparation, 4),
		logReq(1, ProcessPreparation, 1),
	}

	result, err := svc.MassLog(context.Background(), batch, testActor)
	if err != nil {
		t.Fatalf("MassLog() error = %v", err)
	}
	if result.SuccessCount != 2 || result.FailedCount != 1 {
		t.Errorf("result = %d/%d, want 2 success 1 failed", result.SuccessCount, result.FailedCount)
	}
}

func TestMassLogMixedParts(t *testing.T) {
	store := newFakeStore(testPart(1, 10, false, true), testPart(2, 5, false, true))
	svc := NewService(store)

	batch := []LogRequest{
		logReq(1, ProcessPreparation, 10),
		logReq(99, ProcessPreparation, 1), // unknown part
		logReq(2, ProcessPreparation, 5),
	}

	result, err := svc.MassLog(context.Background(), batch, testActor)
	if err != nil {
		t.Fatalf("MassLog() error = %v", err)
	}
	if result.SuccessCount != 2 || result.FailedCount != 1 {
		t.Fatalf("result = %d/%d, want 2 success 1 failed", result.SuccessCount, result.FailedCount)
	}
	if !strings.Contains(result.Errors[0], "99") {
		t.Errorf("error text = %q, want the unknown part ID", result.Errors[0])
	}
}

func TestMassLogSharedMetadata(t *testing.T) {
	store := newFakeStore(testPart(1, 10, false, true))
	svc := NewService(store)

	req := logReq(1, ProcessPreparation, 2)
	req.ProcessingTeam = "Night shift"
	req.ProcessingLocation = "Bay 3"
	req.Remarks = "rework batch"

	result, err := svc.MassLog(context.Background(), []LogRequest{req}, testActor)
	if err != nil {
		t.Fatalf("MassLog() error = %v", err)
	}
	if result.SuccessCount != 1 {
		t.Fatalf("SuccessCount = %d, want 1", result.SuccessCount)
	}

	entry := store.logs[0]
	if entry.ProcessingTeam != "Night shift" || entry.ProcessingLocation != "Bay 3" || entry.Remarks != "rework batch" {
		t.Errorf("metadata not propagated: %+v", entry)
	}
	if entry.CreatedBy != testActor.Name {
		t.Errorf("CreatedBy = %q, want %q", entry.CreatedBy, testActor.Name)
	}
}

func TestMassLogEmptyBatch(t *testing.T) {
	svc := NewService(newFakeStore(testPart(1, 10, false, true)))

	result, err := svc.MassLog(context.Background(), nil, testActor)
	if err != nil {
		t.Fatalf("MassLog() error = %v", err)
	}
	if result.SuccessCount != 0 || result.FailedCount != 0 || len(result.Errors) != 0 {
		t.Errorf("empty batch result = %+v, want all zero", result)
	}
}

// brokenStore fails every append with a non-taxonomy error.
type brokenStore struct {
	*fakeStore
	failFrom int
	calls    int
}

func (s *brokenStore) AppendLog(ctx context.Context, entry *models.ProductionLog) error {
	s.calls++
	if s.calls >= s.failFrom {
		return errors.New("connection reset by peer")
	}
	return s.fakeStore.AppendLog(ctx, entry)
}

func TestMassLogAbortsOnSystemicFailure(t *testing.T) {
	store := newFakeStore(testPart(1, 10, false, true))
	svc := NewService(&brokenStore{fakeStore: store, failFrom: 2})

	batch := []LogRequest{
		logReq(1, ProcessPreparation, 2),
		logReq(1, ProcessPreparation, 2),
		logReq(1, ProcessPreparation, 2),
	}

	result, err := svc.MassLog(context.Background(), batch, testActor)
	if err == nil {
		t.Fatal("MassLog() should surface a systemic store failure")
	}
	if result.SuccessCount != 1 {
		t.Errorf("SuccessCount = %d, want 1 (entry before the failure)", result.SuccessCount)
	}
	if result.FailedCount != 1 {
		t.Errorf("FailedCount = %d, want 1 (the aborting entry)", result.FailedCount)
	}
	// The batch stopped at the failure: the third entry was never attempted.
	if len(store.logs) != 1 {
		t.Errorf("committed logs = %d, want 1", len(store.logs))
	}
}
