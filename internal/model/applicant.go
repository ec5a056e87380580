package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Document type values
var (
	DocumentTypeDNI = "dni"
	DocumentTypeCE  = "ce"
)

// Applicant status workflow values
var (
	ApplicantStatusDraft       = "draft"
	ApplicantStatusSubmitted   = "submitted"
	ApplicantStatusUnderReview = "under_review"
	ApplicantStatusVerifiedOK  = "verified_ok"
	ApplicantStatusObserved    = "observed"
	ApplicantStatusRejected    = "rejected"
	ApplicantStatusExported    = "exported"
)

// EditableApplicantInfo is the part of an applicant the public form can write
type EditableApplicantInfo struct {
	FirstName      string     `gorm:"type:varchar(150);not null" json:"first_name"`
	LastName       string     `gorm:"type:varchar(150);not null" json:"last_name"`
	SecondLastName string     `gorm:"type:varchar(150);default:''" json:"second_last_name"`
	DocumentType   string     `gorm:"type:varchar(10);not null;uniqueIndex:uniq_document_per_link" json:"document_type"`
	DocumentNumber string     `gorm:"type:varchar(16);not null;uniqueIndex:uniq_document_per_link" json:"document_number"`
	BirthDate      *time.Time `gorm:"type:date" json:"birth_date,omitempty"`
	Email          string     `gorm:"type:varchar(254);not null" json:"email"`
	Phone          string     `gorm:"type:varchar(32);not null" json:"phone"`
	AlternatePhone string     `gorm:"type:varchar(32);default:''" json:"alternate_phone"`
	Modality       string     `gorm:"type:varchar(20);default:''" json:"modality"`
	Condition      string     `gorm:"type:varchar(20);default:''" json:"condition"`
	RestDay        string     `gorm:"type:varchar(12);default:''" json:"rest_day"`
}

// Applicant is a person's submission against a recruitment link
type Applicant struct {
	ID     uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	LinkID uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:uniq_document_per_link" json:"link_id"`
	Link   RecruitmentLink `gorm:"foreignKey:LinkID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	EditableApplicantInfo

	Status         string            `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	SubmittedAt    *time.Time        `gorm:"type:timestamptz;index" json:"submitted_at,omitempty"`
	LastReviewedAt *time.Time        `gorm:"type:timestamptz" json:"last_reviewed_at,omitempty"`
	ConsentGiven   bool              `gorm:"default:false" json:"consent_given"`
	ConsentAt      *time.Time        `gorm:"type:timestamptz" json:"consent_at,omitempty"`
	OriginIP       string            `gorm:"type:varchar(45);default:''" json:"-"`
	UserAgent      string            `gorm:"type:varchar(512);default:''" json:"-"`
	Metadata       datatypes.JSONMap `json:"metadata"`

	CreatedAt time.Time `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP;->" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`

	Documents    []ApplicantDocument  `gorm:"foreignKey:ApplicantID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
	Verification *Verification        `gorm:"foreignKey:ApplicantID;constraint:OnDelete:CASCADE" json:"verification,omitempty"`
	Process      *ApplicantProcess    `gorm:"foreignKey:ApplicantID;constraint:OnDelete:CASCADE" json:"process,omitempty"`
	Checklist    *ApplicantChecklist  `gorm:"foreignKey:ApplicantID;constraint:OnDelete:CASCADE" json:"checklist,omitempty"`
	Assignment   *ApplicantAssignment `gorm:"foreignKey:ApplicantID;constraint:OnDelete:CASCADE" json:"assignment,omitempty"`
}

// BeforeSave normalizes names and document number to upper case
func (a *Applicant) BeforeSave(_ *gorm.DB) error {
	a.FirstName = strings.ToUpper(strings.TrimSpace(a.FirstName))
	a.LastName = strings.ToUpper(strings.TrimSpace(a.LastName))
	a.SecondLastName = strings.ToUpper(strings.TrimSpace(a.SecondLastName))
	a.DocumentNumber = strings.ToUpper(strings.TrimSpace(a.DocumentNumber))
	return nil
}

// FullName joins the applicant name parts for export rows.
func (a *Applicant) FullName() string {
	parts := []string{a.LastName}
	if a.SecondLastName != "" {
		parts = append(parts, a.SecondLastName)
	}
	parts = append(parts, a.FirstName)
	return strings.Join(parts, " ")
}

// IsEditable reports whether the public form may still modify the applicant.
func (a *Applicant) IsEditable() bool {
	return a.Status == ApplicantStatusDraft || a.Status == ApplicantStatusSubmitted
}
