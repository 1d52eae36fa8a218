package models

import "time"

// Invitation status machine: pending -> accepted | revoked | expired.
// Transitions out of pending are one-way. Rows are kept for audit and are
// never deleted outside an org cascade.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationRevoked  = "revoked"
	InvitationExpired  = "expired"
)

type OrgInvitation struct {
	ID               int64      `gorm:"primaryKey;autoIncrement"`
	Token            string     `gorm:"size:64;uniqueIndex;not null"`
	OrgID            string     `gorm:"type:char(36);index;not null"`
	Email            string     `gorm:"size:255;index;not null"`
	RoleID           int64      `gorm:"not null"`
	InviterID        string     `gorm:"type:char(36);not null"`
	Status           string     `gorm:"size:20;not null;default:pending"`
	CreatedAt        time.Time
	ExpiresAt        time.Time  `gorm:"not null"`
	AcceptedAt       *time.Time
	AcceptedByUserID *string    `gorm:"type:char(36)"`

	Org  *Organization `gorm:"foreignKey:OrgID"`
	Role *Role         `gorm:"foreignKey:RoleID"`
}
