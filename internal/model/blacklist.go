package model

import (
	"time"

	"github.com/google/uuid"
)

// Blacklist entry status values
var (
	BlacklistStatusActive   = "active"
	BlacklistStatusInactive = "inactive"
)

// Blacklist is a denylist entry keyed by national ID (DNI)
type Blacklist struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	DocumentNumber string    `gorm:"type:varchar(16);not null;uniqueIndex" json:"document_number"`
	Status         string    `gorm:"type:varchar(20);default:'active';index" json:"status"`
	Reason         string    `gorm:"type:text;default:''" json:"reason"`
	AddedBy        *uuid.UUID `gorm:"type:uuid" json:"added_by,omitempty"`
	AddedByName    string    `gorm:"type:varchar(255);default:''" json:"added_by_name"`

	CreatedAt time.Time `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP;->" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}
