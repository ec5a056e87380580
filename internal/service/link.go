package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Lavodnos/stafflink/internal/model"
)

// CreateLinkInput describes a new recruitment link for a campaign.
type CreateLinkInput struct {
	model.EditableLinkInfo

	Slug      string
	OwnerID   uuid.UUID
	OwnerName string
}

// CreateLink creates an active link under the campaign. When no slug is
// provided one is derived from the campaign and title, with a random suffix
// appended on collision.
func CreateLink(db *gorm.DB, campaign *model.Campaign, input CreateLinkInput) (*model.RecruitmentLink, error) {
	if input.Title == "" {
		return nil, &ValidationError{Field: "title", Message: "title is required"}
	}
	if input.ExpiresAt.IsZero() {
		return nil, &ValidationError{Field: "expires_at", Message: "expires_at is required"}
	}

	linkSlug := input.Slug
	if linkSlug == "" {
		linkSlug = slug.Make(campaign.SiteName + " " + input.Title)
	} else {
		linkSlug = slug.Make(linkSlug)
	}
	if linkSlug == "" {
		return nil, &ValidationError{Field: "slug", Message: "slug cannot be derived from the given values"}
	}

	link := model.RecruitmentLink{
		CampaignID:       campaign.ID,
		Slug:             linkSlug,
		OwnerID:          input.OwnerID,
		OwnerName:        input.OwnerName,
		Status:           model.LinkStatusActive,
		EditableLinkInfo: input.EditableLinkInfo,
	}

	err := db.Create(&link).Error
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		link.ID = uuid.Nil
		link.Slug = fmt.Sprintf("%s-%s", linkSlug, uuid.NewString()[:8])
		err = db.Create(&link).Error
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// SetLinkStatus transitions a link. Setting the current status again is a
// no-op so revoke and expire stay idempotent.
func SetLinkStatus(db *gorm.DB, link *model.RecruitmentLink, status string) error {
	switch status {
	case model.LinkStatusActive, model.LinkStatusExpired, model.LinkStatusRevoked:
	default:
		return &ValidationError{Field: "status", Message: "unknown link status: " + status}
	}
	if link.Status == status {
		return nil
	}
	link.Status = status
	return db.Save(link).Error
}

// ExpireDueLinks flips active links past their deadline to expired. Links
// with automatic expiry disabled are left alone. Returns the number of links
// updated.
func ExpireDueLinks(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Model(&model.RecruitmentLink{}).
		Where("status = ? AND expires_at <= ? AND expires_automatically", model.LinkStatusActive, now).
		Update("status", model.LinkStatusExpired)
	return result.RowsAffected, result.Error
}
