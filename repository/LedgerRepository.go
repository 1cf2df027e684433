package repository

import (
	"context"
	"errors"
	"fmt"

	"fabtrack/ledger"
	"fabtrack/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository is the GORM-backed ledger.Store. Appends run inside a
// transaction that locks the part row and re-validates the balance, closing
// the read-then-write race between concurrent submissions.
type LedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository returns a ledger store backed by the given GORM handle.
func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// GetPart loads a part with its project and building preloaded.
func (r *LedgerRepository) GetPart(ctx context.Context, id uint) (*models.AssemblyPart, error) {
	var part models.AssemblyPart
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Building").
		First(&part, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ledger.NotFoundError{Resource: "assembly part", ID: id}
		}
		return nil, fmt.Errorf("failed to fetch assembly part %d: %w", id, err)
	}
	return &part, nil
}

// ListLogs returns the part's logs, oldest first. An empty process type
// returns the full history.
func (r *LedgerRepository) ListLogs(ctx context.Context, partID uint, process ledger.ProcessType) ([]models.ProductionLog, error) {
	q := r.db.WithContext(ctx).
		Where("assembly_part_id = ?", partID).
		Order("created_at ASC, id ASC")
	if process != "" {
		q = q.Where("process_type = ?", string(process))
	}

	var logs []models.ProductionLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to list production logs for part %d: %w", partID, err)
	}
	return logs, nil
}

// AppendLog inserts one production log after re-validating the balance under
// a FOR UPDATE lock on the part row. The caller's pre-check ran without the
// lock, so a failed re-check here means a concurrent writer committed in
// between: that surfaces as *ledger.ConcurrencyError, never as a silent
// overcommit. A processed sum already above the declared quantity surfaces
// as *ledger.IntegrityFault.
func (r *LedgerRepository) AppendLog(ctx context.Context, entry *models.ProductionLog) error {
	process := ledger.ProcessType(entry.ProcessType)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var part models.AssemblyPart
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&part, entry.AssemblyPartID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ledger.NotFoundError{Resource: "assembly part", ID: entry.AssemblyPartID}
			}
			return fmt.Errorf("failed to lock assembly part %d: %w", entry.AssemblyPartID, err)
		}

		var processed int64
		err = tx.Model(&models.ProductionLog{}).
			Where("assembly_part_id = ? AND process_type = ?", entry.AssemblyPartID, entry.ProcessType).
			Select("COALESCE(SUM(processed_qty), 0)").
			Scan(&processed).Error
		if err != nil {
			return fmt.Errorf("failed to sum processed quantity: %w", err)
		}

		if int(processed) > part.Quantity {
			return &ledger.IntegrityFault{
				PartID:    part.ID,
				Process:   process,
				Processed: int(processed),
				Declared:  part.Quantity,
			}
		}
		if int(processed)+entry.ProcessedQty > part.Quantity {
			return &ledger.ConcurrencyError{PartID: part.ID, Process: process}
		}

		if entry.ReportNumber != "" {
			var count int64
			err = tx.Model(&models.ProductionLog{}).
				Where("assembly_part_id = ? AND process_type = ? AND report_number = ?",
					entry.AssemblyPartID, entry.ProcessType, entry.ReportNumber).
				Count(&count).Error
			if err != nil {
				return fmt.Errorf("failed to check report number uniqueness: %w", err)
			}
			if count > 0 {
				return &ledger.ConcurrencyError{PartID: part.ID, Process: process}
			}
		}

		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to insert production log: %w", err)
		}
		return nil
	})
}

// UpdatePartStatus writes the derived status cache back to the part row.
func (r *LedgerRepository) UpdatePartStatus(ctx context.Context, partID uint, status string, currentProcess ledger.ProcessType) error {
	err := r.db.WithContext(ctx).Model(&models.AssemblyPart{}).
		Where("id = ?", partID).
		Updates(map[string]interface{}{
			"status":          status,
			"current_process": string(currentProcess),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update status for part %d: %w", partID, err)
	}
	return nil
}
