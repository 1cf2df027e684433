package ledger

import (
	"context"
	"fmt"

	"fabtrack/models"
)

// fakeStore is an in-memory Store mirroring the repository's commit-time
// semantics: AppendLog re-validates the balance and report-number
// uniqueness against the authoritative log state before appending.
type fakeStore struct {
	parts map[uint]*models.AssemblyPart
	logs  []models.ProductionLog
	// staleLogs, when non-nil, is the snapshot served by ListLogs while
	// AppendLog keeps validating against the real logs. It simulates a
	// concurrent writer having committed between read and append.
	staleLogs []models.ProductionLog

	appendCalls int
	statusCalls int
}

func newFakeStore(parts ...*models.AssemblyPart) *fakeStore {
	s := &fakeStore{parts: make(map[uint]*models.AssemblyPart)}
	for _, p := range parts {
		s.parts[p.ID] = p
	}
	return s
}

func (s *fakeStore) GetPart(ctx context.Context, id uint) (*models.AssemblyPart, error) {
	part, ok := s.parts[id]
	if !ok {
		return nil, &NotFoundError{Resource: "assembly part", ID: id}
	}
	cp := *part
	return &cp, nil
}

func (s *fakeStore) ListLogs(ctx context.Context, partID uint, process ProcessType) ([]models.ProductionLog, error) {
	source := s.logs
	if s.staleLogs != nil {
		source = s.staleLogs
	}
	var out []models.ProductionLog
	for _, entry := range source {
		if entry.AssemblyPartID != partID {
			continue
		}
		if process != "" && ProcessType(entry.ProcessType) != process {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *fakeStore) AppendLog(ctx context.Context, entry *models.ProductionLog) error {
	s.appendCalls++

	part, ok := s.parts[entry.AssemblyPartID]
	if !ok {
		return &NotFoundError{Resource: "assembly part", ID: entry.AssemblyPartID}
	}

	processed := 0
	for _, existing := range s.logs {
		if existing.AssemblyPartID != entry.AssemblyPartID || existing.ProcessType != entry.ProcessType {
			continue
		}
		processed += existing.ProcessedQty
		if entry.ReportNumber != "" && existing.ReportNumber == entry.ReportNumber {
			return &ConcurrencyError{PartID: entry.AssemblyPartID, Process: ProcessType(entry.ProcessType)}
		}
	}
	if processed > part.Quantity {
		return &IntegrityFault{
			PartID:    part.ID,
			Process:   ProcessType(entry.ProcessType),
			Processed: processed,
			Declared:  part.Quantity,
		}
	}
	if processed+entry.ProcessedQty > part.Quantity {
		return &ConcurrencyError{PartID: entry.AssemblyPartID, Process: ProcessType(entry.ProcessType)}
	}

	entry.ID = uint(len(s.logs) + 1)
	s.logs = append(s.logs, *entry)
	return nil
}

func (s *fakeStore) UpdatePartStatus(ctx context.Context, partID uint, status string, currentProcess ProcessType) error {
	s.statusCalls++
	part, ok := s.parts[partID]
	if !ok {
		return &NotFoundError{Resource: "assembly part", ID: partID}
	}
	part.Status = status
	part.CurrentProcess = string(currentProcess)
	return nil
}

// seedLog inserts a log directly, bypassing validation. Used to set up
// histories, including corrupted ones.
func (s *fakeStore) seedLog(partID uint, process ProcessType, qty int, reportNumber string) {
	s.logs = append(s.logs, models.ProductionLog{
		ID:             uint(len(s.logs) + 1),
		AssemblyPartID: partID,
		ProcessType:    string(process),
		ProcessedQty:   qty,
		ReportNumber:   reportNumber,
	})
}

func testPart(id uint, quantity int, galvanized, erectable bool) *models.AssemblyPart {
	project := &models.Project{
		ID:            1,
		ProjectNumber: "P-100",
		Galvanized:    galvanized,
		Erectable:     erectable,
	}
	building := &models.Building{ID: 1, ProjectID: 1, Designation: "B1"}
	return &models.AssemblyPart{
		ID:              id,
		ProjectID:       1,
		BuildingID:      &building.ID,
		PartDesignation: fmt.Sprintf("P-100-B1-PM%d", id),
		PartMark:        fmt.Sprintf("PM%d", id),
		Name:            "Test part",
		Quantity:        quantity,
		Status:          models.PartStatusPending,
		Project:         project,
		Building:        building,
	}
}
