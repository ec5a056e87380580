package service

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Lavodnos/stafflink/internal/model"
	"github.com/Lavodnos/stafflink/internal/storage"
)

// newBatchCode builds codes like BATCH-1A2B3C4D.
func newBatchCode() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return "BATCH-" + strings.ToUpper(hex.EncodeToString(buf))
}

// ExportRow is one line of the payroll CSV.
type ExportRow struct {
	DocumentNumber string
	FullName       string
	CampaignName   string
}

// BuildExportRows loads the payroll rows for the given applicants. The link
// and campaign are joined to resolve the campaign name.
func BuildExportRows(db *gorm.DB, applicants []model.Applicant) ([]ExportRow, error) {
	rows := make([]ExportRow, 0, len(applicants))
	for i := range applicants {
		a := &applicants[i]
		var campaignName string
		err := db.Model(&model.Campaign{}).
			Joins("JOIN recruitment_links ON recruitment_links.campaign_id = campaigns.id").
			Where("recruitment_links.id = ?", a.LinkID).
			Pluck("campaigns.name", &campaignName).Error
		if err != nil {
			return nil, err
		}
		rows = append(rows, ExportRow{
			DocumentNumber: a.DocumentNumber,
			FullName:       a.FullName(),
			CampaignName:   campaignName,
		})
	}
	return rows, nil
}

// WriteExportCSV renders the payroll CSV with a header line.
func WriteExportCSV(rows []ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"document_number", "full_name", "campaign"}); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write([]string{row.DocumentNumber, row.FullName, row.CampaignName}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CreateExportBatch exports verified applicants to the payroll system in one
// transaction. Every applicant must be in verified_ok; if any is not, nothing
// is exported and the offenders are reported back.
func CreateExportBatch(db *gorm.DB, backend storage.Backend, applicantIDs []uuid.UUID, notes string, actor model.AuthContext) (*model.SmartExportBatch, error) {
	if len(applicantIDs) == 0 {
		return nil, &ValidationError{Field: "applicant_ids", Message: "at least one applicant is required"}
	}

	var applicants []model.Applicant
	if err := db.Where("id IN ?", applicantIDs).Find(&applicants).Error; err != nil {
		return nil, err
	}

	found := make(map[uuid.UUID]*model.Applicant, len(applicants))
	for i := range applicants {
		found[applicants[i].ID] = &applicants[i]
	}
	var notEligible []string
	for _, id := range applicantIDs {
		a, ok := found[id]
		if !ok || a.Status != model.ApplicantStatusVerifiedOK {
			notEligible = append(notEligible, id.String())
		}
	}
	if len(notEligible) > 0 {
		return nil, &NotEligibleError{ApplicantIDs: notEligible}
	}

	rows, err := BuildExportRows(db, applicants)
	if err != nil {
		return nil, err
	}
	content, err := WriteExportCSV(rows)
	if err != nil {
		return nil, err
	}

	// the batch and its queued items are persisted before touching storage,
	// so a failed generation leaves a visible failed batch behind
	batch := model.SmartExportBatch{
		BatchCode:       newBatchCode(),
		Status:          model.ExportBatchStatusPending,
		GeneratedBy:     actor.UserUUID(),
		GeneratedByName: actor.UserName,
		GeneratedAt:     time.Now(),
		Notes:           notes,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&batch).Error; err != nil {
			return err
		}
		for i := range applicants {
			item := model.SmartExportBatchItem{
				BatchID:     batch.ID,
				ApplicantID: applicants[i].ID,
				Status:      model.ExportItemStatusQueued,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	destination := fmt.Sprintf("exports/%s.csv", batch.BatchCode)
	stored, err := backend.Save(bytes.NewReader(content), destination, "text/csv")
	if err != nil {
		markBatchFailed(db, &batch)
		return nil, fmt.Errorf("failed to store export file: %w", err)
	}
	batch.FilePath = stored
	sum := sha256.Sum256(content)
	batch.FileChecksum = hex.EncodeToString(sum[:])
	batch.Status = model.ExportBatchStatusGenerated

	now := time.Now()
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&batch).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.SmartExportBatchItem{}).
			Where("batch_id = ?", batch.ID).
			Updates(map[string]interface{}{
				"status":      model.ExportItemStatusExported,
				"exported_at": now,
			}).Error; err != nil {
			return err
		}
		for i := range applicants {
			applicants[i].Status = model.ApplicantStatusExported
			if err := tx.Save(&applicants[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = backend.Delete(stored)
		markBatchFailed(db, &batch)
		return nil, err
	}
	return &batch, nil
}

// markBatchFailed is best effort; the generation error takes precedence.
func markBatchFailed(db *gorm.DB, batch *model.SmartExportBatch) {
	_ = db.Model(batch).Update("status", model.ExportBatchStatusFailed).Error
	_ = db.Model(&model.SmartExportBatchItem{}).
		Where("batch_id = ?", batch.ID).
		Update("status", model.ExportItemStatusFailed).Error
}

// MarkBatchDelivered flags a generated batch as handed over to payroll.
// Delivering twice is a no-op.
func MarkBatchDelivered(db *gorm.DB, batch *model.SmartExportBatch) error {
	if batch.Status == model.ExportBatchStatusDelivered {
		return nil
	}
	if batch.Status != model.ExportBatchStatusGenerated {
		return &ValidationError{Field: "status", Message: "only generated batches can be delivered"}
	}
	batch.Status = model.ExportBatchStatusDelivered
	return db.Save(batch).Error
}
