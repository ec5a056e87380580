package service

import (
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Lavodnos/stafflink/internal/model"
)

// controlledUpdateFields is the allow-list of applicant fields a reviewer may
// correct on behalf of the applicant.
var controlledUpdateFields = map[string]bool{
	"first_name":       true,
	"last_name":        true,
	"second_last_name": true,
	"email":            true,
	"phone":            true,
	"alternate_phone":  true,
}

// VerificationQueue returns applicants waiting for a decision, oldest
// submission first. An empty ownerID returns the whole queue; otherwise only
// applicants on links owned by that user.
func VerificationQueue(db *gorm.DB, ownerID string) ([]model.Applicant, error) {
	query := db.Model(&model.Applicant{}).
		Preload("Documents").
		Preload("Verification").
		Where("applicants.status IN ?", []string{model.ApplicantStatusSubmitted, model.ApplicantStatusUnderReview}).
		Order("applicants.submitted_at asc")
	if ownerID != "" {
		query = query.
			Joins("JOIN recruitment_links ON recruitment_links.id = applicants.link_id").
			Where("recruitment_links.owner_id = ?", ownerID)
	}

	var applicants []model.Applicant
	err := query.Find(&applicants).Error
	return applicants, err
}

// StartReview marks a submitted applicant as being reviewed. Calling it on an
// applicant already under review is a no-op.
func StartReview(db *gorm.DB, applicant *model.Applicant) error {
	if applicant.Status == model.ApplicantStatusUnderReview {
		return nil
	}
	if applicant.Status != model.ApplicantStatusSubmitted {
		return &ValidationError{Field: "status", Message: "only submitted applications can enter review"}
	}
	applicant.Status = model.ApplicantStatusUnderReview
	return db.Save(applicant).Error
}

// DecisionInput is a reviewer's verdict on one applicant.
type DecisionInput struct {
	Status    string   `json:"status" binding:"required"`
	Reason    string   `json:"reason"`
	RiskFlags []string `json:"risk_flags"`
	Notes     string   `json:"notes"`
}

// Decide records the verdict and moves the applicant to the matching
// workflow status. Any known status other than approved or observed lands
// the applicant in rejected.
func Decide(db *gorm.DB, applicant *model.Applicant, input DecisionInput, reviewer model.AuthContext) error {
	switch input.Status {
	case model.VerificationStatusPending, model.VerificationStatusApproved,
		model.VerificationStatusObserved, model.VerificationStatusRejected:
	default:
		return &ValidationError{Field: "status", Message: "unknown verification status"}
	}
	if applicant.Status != model.ApplicantStatusSubmitted && applicant.Status != model.ApplicantStatusUnderReview {
		return &ValidationError{Field: "status", Message: "the application is not awaiting a decision"}
	}

	now := time.Now()
	return db.Transaction(func(tx *gorm.DB) error {
		verification, err := verificationFor(tx, applicant)
		if err != nil {
			return err
		}

		reviewerID := reviewer.UserUUID()
		verification.Status = input.Status
		verification.ReviewedBy = reviewerID
		verification.ReviewedByName = reviewer.UserName
		verification.DecidedAt = &now
		verification.DecisionReason = input.Reason
		verification.Notes = input.Notes
		if input.RiskFlags != nil {
			verification.RiskFlags = pq.StringArray(input.RiskFlags)
		}
		if err := tx.Save(verification).Error; err != nil {
			return err
		}

		applicant.Status = model.ApplicantStatusForDecision(input.Status)
		applicant.LastReviewedAt = &now
		return tx.Save(applicant).Error
	})
}

// RequestCorrection sends the application back to the applicant: both the
// verification record and the applicant are forced to observed so the public
// form reopens.
func RequestCorrection(db *gorm.DB, applicant *model.Applicant, reason string, reviewer model.AuthContext) error {
	now := time.Now()
	return db.Transaction(func(tx *gorm.DB) error {
		verification, err := verificationFor(tx, applicant)
		if err != nil {
			return err
		}

		verification.Status = model.VerificationStatusObserved
		verification.RequestedCorrectionBy = reviewer.UserUUID()
		verification.RequestedCorrectionAt = &now
		if reason != "" {
			verification.DecisionReason = reason
		}
		if err := tx.Save(verification).Error; err != nil {
			return err
		}

		applicant.Status = model.ApplicantStatusObserved
		applicant.LastReviewedAt = &now
		return tx.Save(applicant).Error
	})
}

// ApplyControlledUpdate patches contact fields on behalf of the applicant.
// Only allow-listed fields are written; anything else is rejected.
func ApplyControlledUpdate(db *gorm.DB, applicant *model.Applicant, fields map[string]string) error {
	if len(fields) == 0 {
		return &ValidationError{Field: "fields", Message: "no fields to update"}
	}
	updates := make(map[string]interface{}, len(fields))
	for name, value := range fields {
		if !controlledUpdateFields[name] {
			return &ValidationError{Field: name, Message: "field cannot be updated by a reviewer"}
		}
		updates[name] = value
	}
	return db.Model(applicant).Updates(updates).Error
}

// verificationFor loads the decision record, creating a pending one for
// applicants submitted before the record existed.
func verificationFor(tx *gorm.DB, applicant *model.Applicant) (*model.Verification, error) {
	var verification model.Verification
	err := tx.Where("applicant_id = ?", applicant.ID).First(&verification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		verification = model.Verification{
			ApplicantID: applicant.ID,
			Status:      model.VerificationStatusPending,
		}
		if err := tx.Create(&verification).Error; err != nil {
			return nil, err
		}
		return &verification, nil
	}
	if err != nil {
		return nil, err
	}
	return &verification, nil
}
