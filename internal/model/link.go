package model

import (
	"time"

	"github.com/google/uuid"
)

// Link status values
var (
	// LinkStatusActive indicates that the link accepts public submissions
	LinkStatusActive = "active"
	// LinkStatusExpired indicates that the link passed its deadline
	LinkStatusExpired = "expired"
	// LinkStatusRevoked indicates that the link was manually cancelled
	LinkStatusRevoked = "revoked"
)

// Work modality values
var (
	ModalityOnsite = "onsite"
	ModalityHybrid = "hybrid"
	ModalityRemote = "remote"
)

// Employment condition values
var (
	ConditionPayroll    = "payroll"
	ConditionContractor = "contractor"
)

// EditableLinkInfo is part of a recruitment link that can be edited
type EditableLinkInfo struct {
	Title               string     `gorm:"type:varchar(255);not null" json:"title"`
	Modality             string     `gorm:"type:varchar(20);default:'onsite'" json:"modality"`
	EmploymentCondition  string     `gorm:"type:varchar(20);default:'payroll'" json:"employment_condition"`
	PeriodLabel          string     `gorm:"type:varchar(120);default:''" json:"period_label"`
	PeriodStart          *time.Time `gorm:"type:date" json:"period_start,omitempty"`
	PeriodEnd            *time.Time `gorm:"type:date" json:"period_end,omitempty"`
	RestDay              string     `gorm:"type:varchar(12);default:''" json:"rest_day"`
	WorkWeek             *int       `json:"work_week,omitempty"`
	Quota                *int       `json:"quota,omitempty"`
	ExpiresAt            time.Time  `gorm:"type:timestamptz;not null;index:idx_links_status_expiry" json:"expires_at"`
	ExpiresAutomatically *bool      `gorm:"default:true" json:"expires_automatically"`
	QRReference          string     `gorm:"type:varchar(255);default:''" json:"qr_reference"`
	Notes                string     `gorm:"type:text;default:''" json:"notes"`
	CompanyName          string     `gorm:"type:varchar(255);default:''" json:"company_name"`
	Compensation         string     `gorm:"type:varchar(255);default:''" json:"compensation"`
	ContractRole         string     `gorm:"type:varchar(255);default:''" json:"contract_role"`
}

// RecruitmentLink is the shareable, expiring application endpoint for one campaign
type RecruitmentLink struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	CampaignID uuid.UUID `gorm:"type:uuid;not null;index" json:"campaign_id"`
	Campaign   Campaign  `gorm:"foreignKey:CampaignID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`

	Slug      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"slug"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	OwnerName string    `gorm:"type:varchar(255);default:''" json:"owner_name"`
	Status    string    `gorm:"type:varchar(20);default:'active';index:idx_links_status_expiry" json:"status"`
	EditableLinkInfo

	CreatedAt time.Time `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP;->" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`

	Applicants []Applicant `gorm:"foreignKey:LinkID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsOpen reports whether the link still accepts public submissions.
func (l *RecruitmentLink) IsOpen(now time.Time) bool {
	return l.Status == LinkStatusActive && now.Before(l.ExpiresAt)
}

// PublicLinkResponse is the read shape for the unauthenticated link endpoint
type PublicLinkResponse struct {
	Slug                string     `json:"slug"`
	Title               string     `json:"title"`
	CampaignName        string     `json:"campaign_name"`
	SiteName            string     `json:"site_name"`
	Modality            string     `json:"modality"`
	EmploymentCondition string     `json:"employment_condition"`
	PeriodLabel         string     `json:"period_label"`
	PeriodStart         *time.Time `json:"period_start,omitempty"`
	PeriodEnd           *time.Time `json:"period_end,omitempty"`
	RestDay             string     `json:"rest_day"`
	ExpiresAt           time.Time  `json:"expires_at"`
}

// ToPublicResponse builds the concealed public view of a link.
// Campaign must be preloaded by the caller.
func (l *RecruitmentLink) ToPublicResponse() PublicLinkResponse {
	return PublicLinkResponse{
		Slug:                l.Slug,
		Title:               l.Title,
		CampaignName:        l.Campaign.Name,
		SiteName:            l.Campaign.SiteName,
		Modality:            l.Modality,
		EmploymentCondition: l.EmploymentCondition,
		PeriodLabel:         l.PeriodLabel,
		PeriodStart:         l.PeriodStart,
		PeriodEnd:           l.PeriodEnd,
		RestDay:             l.RestDay,
		ExpiresAt:           l.ExpiresAt,
	}
}
