package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Audit entity type values
var (
	AuditEntityCampaign     = "campaign"
	AuditEntityLink         = "link"
	AuditEntityApplicant    = "applicant"
	AuditEntityVerification = "verification"
	AuditEntityExport       = "export"
	AuditEntityBlacklist    = "blacklist"
)

// AuditLog is an append-only record of state-changing actions
type AuditLog struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	EntityType string            `gorm:"type:varchar(32);not null;index:idx_audit_entity" json:"entity_type"`
	EntityID   uuid.UUID         `gorm:"type:uuid;not null;index:idx_audit_entity" json:"entity_id"`
	Action     string            `gorm:"type:varchar(64);not null" json:"action"`
	ActorID    *uuid.UUID        `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	ActorName  string            `gorm:"type:varchar(255);default:''" json:"actor_name"`
	IPAddress  string            `gorm:"type:varchar(45);default:''" json:"ip_address"`
	UserAgent  string            `gorm:"type:varchar(512);default:''" json:"user_agent"`
	Payload    datatypes.JSONMap `json:"payload"`

	CreatedAt time.Time `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP;->" json:"created_at"`
}
