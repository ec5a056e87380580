package model

import (
	"time"

	"github.com/google/uuid"
)

// Export batch status values
var (
	ExportBatchStatusPending   = "pending"
	ExportBatchStatusGenerated = "generated"
	ExportBatchStatusDelivered = "delivered"
	ExportBatchStatusFailed    = "failed"
)

// Export batch item status values
var (
	ExportItemStatusQueued   = "queued"
	ExportItemStatusExported = "exported"
	ExportItemStatusFailed   = "failed"
)

// SmartExportBatch groups verified applicants exported to Smart Boleta
type SmartExportBatch struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	BatchCode string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"batch_code"`
	Status    string    `gorm:"type:varchar(20);default:'pending'" json:"status"`

	GeneratedBy     *uuid.UUID `gorm:"type:uuid" json:"generated_by,omitempty"`
	GeneratedByName string     `gorm:"type:varchar(255);default:''" json:"generated_by_name"`
	GeneratedAt     time.Time  `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP" json:"generated_at"`
	FilePath        string     `gorm:"type:varchar(512);default:''" json:"file_path"`
	FileChecksum    string     `gorm:"type:varchar(64);default:''" json:"file_checksum"`
	Notes           string     `gorm:"type:text;default:''" json:"notes"`

	CreatedAt time.Time `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP;->" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`

	Items []SmartExportBatchItem `gorm:"foreignKey:BatchID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// SmartExportBatchItem links one applicant to one export batch
type SmartExportBatchItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	BatchID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_batch_applicant" json:"batch_id"`
	ApplicantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_batch_applicant" json:"applicant_id"`
	Applicant   Applicant `gorm:"foreignKey:ApplicantID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	Status       string     `gorm:"type:varchar(20);default:'queued'" json:"status"`
	ExportedAt   *time.Time `gorm:"type:timestamptz" json:"exported_at,omitempty"`
	ErrorMessage string     `gorm:"type:text;default:''" json:"error_message"`

	CreatedAt time.Time `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP;->" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}
