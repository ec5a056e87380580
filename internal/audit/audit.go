// Package audit appends immutable trail entries for state-changing operations.
package audit

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Lavodnos/stafflink/internal/model"
)

// Entry describes one auditable action. Actor fields are empty for public
// (unauthenticated) operations.
type Entry struct {
	EntityType string
	EntityID   uuid.UUID
	Action     string
	ActorID    *uuid.UUID
	ActorName  string
	IPAddress  string
	UserAgent  string
	Payload    map[string]interface{}
}

// Record inserts an audit row. Failures are logged and swallowed so the
// audited operation itself never rolls back over trail bookkeeping.
func Record(db *gorm.DB, entry Entry) {
	row := model.AuditLog{
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Action:     entry.Action,
		ActorID:    entry.ActorID,
		ActorName:  entry.ActorName,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
	}
	if entry.Payload != nil {
		row.Payload = datatypes.JSONMap(entry.Payload)
	}
	if err := db.Create(&row).Error; err != nil {
		log.Printf("audit: failed to record %s on %s %s: %v", entry.Action, entry.EntityType, entry.EntityID, err)
	}
}

// MustRecord inserts an audit row inside a transaction, propagating the error
// so all-or-nothing operations roll back when the trail cannot be written.
func MustRecord(tx *gorm.DB, entry Entry) error {
	row := model.AuditLog{
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Action:     entry.Action,
		ActorID:    entry.ActorID,
		ActorName:  entry.ActorName,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
	}
	if entry.Payload != nil {
		row.Payload = datatypes.JSONMap(entry.Payload)
	}
	return tx.Create(&row).Error
}
