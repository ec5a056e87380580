package model

import (
	"time"

	"github.com/google/uuid"
)

// ApplicantProcess tracks back-office milestones for one applicant.
// Created lazily on first access.
type ApplicantProcess struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ApplicantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"applicant_id"`

	InterviewAt      *time.Time `gorm:"type:timestamptz" json:"interview_at,omitempty"`
	InductionAt      *time.Time `gorm:"type:timestamptz" json:"induction_at,omitempty"`
	ContractSignedAt *time.Time `gorm:"type:timestamptz" json:"contract_signed_at,omitempty"`
	StartDate        *time.Time `gorm:"type:date" json:"start_date,omitempty"`
	Notes            string     `gorm:"type:text;default:''" json:"notes"`
	UpdatedBy        *uuid.UUID `gorm:"type:uuid" json:"updated_by,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP;->" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

// ApplicantChecklist records which physical documents the back office has
// collected from one applicant. Created lazily on first write.
type ApplicantChecklist struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ApplicantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"applicant_id"`

	CVReceived             *bool      `gorm:"default:false" json:"cv_received"`
	CriminalRecordReceived *bool      `gorm:"default:false" json:"criminal_record_received"`
	AddressProofReceived   *bool      `gorm:"default:false" json:"address_proof_received"`
	PhotosReceived         *bool      `gorm:"default:false" json:"photos_received"`
	BankAccountProvided    *bool      `gorm:"default:false" json:"bank_account_provided"`
	Notes                  string     `gorm:"type:text;default:''" json:"notes"`
	UpdatedBy              *uuid.UUID `gorm:"type:uuid" json:"updated_by,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP;->" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

// ApplicantAssignment holds the contractual terms offered to one applicant.
// Defaults are copied from the parent link when the applicant is created.
type ApplicantAssignment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ApplicantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"applicant_id"`

	EmploymentCondition string `gorm:"type:varchar(20);default:''" json:"employment_condition"`
	CompanyName         string `gorm:"type:varchar(255);default:''" json:"company_name"`
	Compensation        string `gorm:"type:varchar(255);default:''" json:"compensation"`
	ContractRole        string `gorm:"type:varchar(255);default:''" json:"contract_role"`
	Notes               string `gorm:"type:text;default:''" json:"notes"`

	CreatedAt time.Time `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP;->" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}
