package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Lavodnos/stafflink/internal/model"
	"github.com/Lavodnos/stafflink/internal/storage"
	"github.com/Lavodnos/stafflink/internal/utilities"
)

// uniqueViolation is the PostgreSQL error code for duplicate keys.
const uniqueViolation = "23505"

// CreateApplicantInput carries the public form payload plus request metadata.
type CreateApplicantInput struct {
	model.EditableApplicantInfo

	ConsentGiven bool
	Metadata     map[string]interface{}
	OriginIP     string
	UserAgent    string
}

// CreateApplicant registers a draft application against an open link.
// Terms left empty by the applicant default to the link's values, and an
// assignment sub-record is created with the contractual terms of the link.
func CreateApplicant(db *gorm.DB, link *model.RecruitmentLink, input CreateApplicantInput) (*model.Applicant, error) {
	if !link.IsOpen(time.Now()) {
		return nil, ErrLinkClosed
	}
	if err := ValidateDocument(input.DocumentType, input.DocumentNumber); err != nil {
		return nil, err
	}
	blocked, err := IsBlacklisted(db, input.DocumentType, input.DocumentNumber)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrBlacklisted
	}

	applicant := model.Applicant{
		LinkID:                link.ID,
		EditableApplicantInfo: input.EditableApplicantInfo,
		Status:                model.ApplicantStatusDraft,
		OriginIP:              input.OriginIP,
		UserAgent:             input.UserAgent,
	}
	if applicant.Modality == "" {
		applicant.Modality = link.Modality
	}
	if applicant.Condition == "" {
		applicant.Condition = link.EmploymentCondition
	}
	if applicant.RestDay == "" {
		applicant.RestDay = link.RestDay
	}
	if input.ConsentGiven {
		now := time.Now()
		applicant.ConsentGiven = true
		applicant.ConsentAt = &now
	}
	if input.Metadata != nil {
		applicant.Metadata = datatypes.JSONMap(input.Metadata)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&applicant).Error; err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return ErrDuplicateApplicant
			}
			return err
		}
		assignment := model.ApplicantAssignment{
			ApplicantID:         applicant.ID,
			EmploymentCondition: link.EmploymentCondition,
			CompanyName:         link.CompanyName,
			Compensation:        link.Compensation,
			ContractRole:        link.ContractRole,
		}
		return tx.Create(&assignment).Error
	})
	if err != nil {
		return nil, err
	}
	return &applicant, nil
}

// UpdateApplicant applies a public-form patch to a still-editable applicant.
// Changing the identity document re-runs validation and the blacklist check.
func UpdateApplicant(db *gorm.DB, applicant *model.Applicant, patch model.EditableApplicantInfo) error {
	if !applicant.IsEditable() {
		return ErrNotEditable
	}

	docType := applicant.DocumentType
	docNumber := applicant.DocumentNumber
	if patch.DocumentType != "" {
		docType = patch.DocumentType
	}
	if patch.DocumentNumber != "" {
		docNumber = strings.ToUpper(strings.TrimSpace(patch.DocumentNumber))
	}
	if docType != applicant.DocumentType || docNumber != applicant.DocumentNumber {
		if err := ValidateDocument(docType, docNumber); err != nil {
			return err
		}
		blocked, err := IsBlacklisted(db, docType, docNumber)
		if err != nil {
			return err
		}
		if blocked {
			return ErrBlacklisted
		}
	}

	utilities.MergeNonEmpty(&applicant.EditableApplicantInfo, &patch)

	if err := db.Save(applicant).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateApplicant
		}
		return err
	}
	return nil
}

// AttachDocument stores an uploaded blob and records it on the applicant,
// replacing a previous upload of the same kind. The checksum is computed
// while streaming to the backend.
func AttachDocument(db *gorm.DB, backend storage.Backend, applicant *model.Applicant, kind, originalName, contentType string, size int64, reader io.Reader) (*model.ApplicantDocument, error) {
	if !applicant.IsEditable() {
		return nil, ErrNotEditable
	}
	if err := ValidateDocumentKind(kind); err != nil {
		return nil, err
	}

	hasher := sha256.New()
	destination := fmt.Sprintf("applicants/%s/%s-%s", applicant.ID, kind, uuid.NewString())
	stored, err := backend.Save(io.TeeReader(reader, hasher), destination, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := model.ApplicantDocument{
		ApplicantID:  applicant.ID,
		Kind:         kind,
		FilePath:     stored,
		OriginalName: originalName,
		ContentType:  contentType,
		SizeBytes:    size,
		Checksum:     hex.EncodeToString(hasher.Sum(nil)),
	}

	var previous model.ApplicantDocument
	replace := db.Where("applicant_id = ? AND kind = ?", applicant.ID, kind).First(&previous).Error == nil

	err = db.Transaction(func(tx *gorm.DB) error {
		if replace {
			if err := tx.Delete(&previous).Error; err != nil {
				return err
			}
		}
		return tx.Create(&doc).Error
	})
	if err != nil {
		_ = backend.Delete(stored)
		return nil, err
	}
	if replace {
		_ = backend.Delete(previous.FilePath)
	}
	return &doc, nil
}

// SubmitApplicant moves a draft into the verification queue. Consent and the
// required documents for the applicant's identity type are enforced here.
// Origin ip and user agent are stamped at submission time.
func SubmitApplicant(db *gorm.DB, applicant *model.Applicant, originIP, userAgent string) error {
	if applicant.Status != model.ApplicantStatusDraft {
		return ErrNotEditable
	}
	if !applicant.ConsentGiven {
		return ErrConsentRequired
	}

	var kinds []string
	if err := db.Model(&model.ApplicantDocument{}).
		Where("applicant_id = ?", applicant.ID).
		Pluck("kind", &kinds).Error; err != nil {
		return err
	}
	uploaded := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		uploaded[k] = true
	}
	var missing []string
	for _, required := range model.RequiredDocumentKinds[applicant.DocumentType] {
		if !uploaded[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return &MissingDocumentsError{Kinds: missing}
	}

	now := time.Now()
	return db.Transaction(func(tx *gorm.DB) error {
		applicant.Status = model.ApplicantStatusSubmitted
		applicant.SubmittedAt = &now
		if originIP != "" {
			applicant.OriginIP = originIP
		}
		if userAgent != "" {
			applicant.UserAgent = userAgent
		}
		if err := tx.Save(applicant).Error; err != nil {
			return err
		}

		var verification model.Verification
		err := tx.Where("applicant_id = ?", applicant.ID).First(&verification).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			verification = model.Verification{
				ApplicantID: applicant.ID,
				Status:      model.VerificationStatusPending,
			}
			return tx.Create(&verification).Error
		}
		return err
	})
}

// IsBlacklisted reports whether the document is denied. Only national IDs
// (DNI) are matched against the denylist.
func IsBlacklisted(db *gorm.DB, docType, number string) (bool, error) {
	if docType != model.DocumentTypeDNI {
		return false, nil
	}
	var count int64
	err := db.Model(&model.Blacklist{}).
		Where("document_number = ? AND status = ?", strings.ToUpper(strings.TrimSpace(number)), model.BlacklistStatusActive).
		Count(&count).Error
	return count > 0, err
}
