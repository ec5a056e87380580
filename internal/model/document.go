package model

import (
	"time"

	"github.com/google/uuid"
)

// Document kind values
var (
	DocumentKindDNIFront = "dni_front"
	DocumentKindDNIBack  = "dni_back"
	DocumentKindCEFront  = "ce_front"
	DocumentKindCEBack   = "ce_back"
	DocumentKindOther    = "other"
)

// DocumentKinds is the closed set of accepted upload kinds
var DocumentKinds = []string{
	DocumentKindDNIFront,
	DocumentKindDNIBack,
	DocumentKindCEFront,
	DocumentKindCEBack,
	DocumentKindOther,
}

// RequiredDocumentKinds maps a document type to the kinds needed before submit
var RequiredDocumentKinds = map[string][]string{
	DocumentTypeDNI: {DocumentKindDNIFront, DocumentKindDNIBack},
	DocumentTypeCE:  {DocumentKindCEFront, DocumentKindCEBack},
}

// ApplicantDocument is a file attached to an applicant
type ApplicantDocument struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ApplicantID uuid.UUID `gorm:"type:uuid;not null;index" json:"applicant_id"`
	Applicant   Applicant `gorm:"foreignKey:ApplicantID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	Kind         string     `gorm:"type:varchar(20);not null" json:"kind"`
	FilePath     string     `gorm:"type:varchar(512);not null" json:"file_path"`
	OriginalName string     `gorm:"type:varchar(255);not null" json:"original_name"`
	ContentType  string     `gorm:"type:varchar(120);not null" json:"content_type"`
	SizeBytes    int64      `gorm:"not null" json:"size_bytes"`
	Checksum     string     `gorm:"type:varchar(64);default:''" json:"checksum"`
	UploadedBy   *uuid.UUID `gorm:"type:uuid" json:"uploaded_by,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP;->" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}
