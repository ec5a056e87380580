package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Verification status values
var (
	VerificationStatusPending  = "pending"
	VerificationStatusApproved = "approved"
	VerificationStatusObserved = "observed"
	VerificationStatusRejected = "rejected"
)

// Verification is the back-office decision record for an applicant (1:1)
type Verification struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ApplicantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"applicant_id"`

	Status                string         `gorm:"type:varchar(20);default:'pending'" json:"status"`
	ReviewedBy            *uuid.UUID     `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedByName        string         `gorm:"type:varchar(255);default:''" json:"reviewed_by_name"`
	DecidedAt             *time.Time     `gorm:"type:timestamptz" json:"decided_at,omitempty"`
	DecisionReason        string         `gorm:"type:text;default:''" json:"decision_reason"`
	RequestedCorrectionBy *uuid.UUID     `gorm:"type:uuid" json:"requested_correction_by,omitempty"`
	RequestedCorrectionAt *time.Time     `gorm:"type:timestamptz" json:"requested_correction_at,omitempty"`
	RiskFlags             pq.StringArray `gorm:"type:text[]" json:"risk_flags"`
	Notes                 string         `gorm:"type:text;default:''" json:"notes"`

	CreatedAt time.Time `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP;->" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

// ApplicantStatusForDecision maps a verification decision onto the applicant workflow.
// Any status outside the known set falls through to rejected.
func ApplicantStatusForDecision(status string) string {
	switch status {
	case VerificationStatusApproved:
		return ApplicantStatusVerifiedOK
	case VerificationStatusObserved:
		return ApplicantStatusObserved
	default:
		return ApplicantStatusRejected
	}
}
