// Package model contain gorm model for recording data to database
package model

import (
	"time"

	"github.com/google/uuid"
)

// EditableCampaignInfo is part of campaign that can be edited
type EditableCampaignInfo struct {
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	SiteName    string `gorm:"type:varchar(255);default:''" json:"site_name"`
	Description string `gorm:"type:text;default:''" json:"description"`
	IsActive    *bool  `gorm:"default:true" json:"is_active"`
}

// Campaign is a hiring campaign/site that groups recruitment links
type Campaign struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Code string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	EditableCampaignInfo
	CreatedAt time.Time `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP;->" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`

	Links []RecruitmentLink `gorm:"foreignKey:CampaignID" json:"-"`
}
