package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditLog struct {
	ID            int64          `gorm:"primaryKey"`
	OrgID         string         `gorm:"type:char(36);index;not null"`
	UserID        string         `gorm:"type:char(36);index"` // empty for system actions
	Action        string         `gorm:"size:200;not null"`   // e.g. "members.remove", "invitations.create"
	ResourceType  string         `gorm:"size:100"`            // e.g. "org_member", "org_invitation"
	ResourceID    string         `gorm:"size:64;index"`
	Metadata      datatypes.JSON `gorm:"type:json"`
	IP            string         `gorm:"size:64"`
	InitiatorName string         `gorm:"size:255" json:"initiator_name"`
	UserAgent     string         `gorm:"size:255"`
	CreatedAt     time.Time
}
