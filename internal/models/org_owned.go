package models

import (
	"time"

	"gorm.io/datatypes"
)

// Org-owned rows cleaned up when an organization is deleted. Deletion order
// matters: these go before memberships and the org row itself.

type Conversation struct {
	ID        string         `gorm:"type:char(36);primaryKey"`
	OrgID     string         `gorm:"type:char(36);index;not null"`
	UserID    string         `gorm:"type:char(36);index"`
	Title     string         `gorm:"size:255"`
	Metadata  datatypes.JSON `gorm:"type:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type BillingSession struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	OrgID     string `gorm:"type:char(36);index;not null"`
	Status    string `gorm:"size:32"`
	CreatedAt time.Time
}

type CustomSecret struct {
	ID        int64  `gorm:"primaryKey"`
	OrgID     string `gorm:"type:char(36);index;not null"`
	Name      string `gorm:"size:200;not null"`
	Value     string `gorm:"size:2000"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type APIKey struct {
	ID        int64  `gorm:"primaryKey"`
	OrgID     string `gorm:"type:char(36);index;not null"`
	UserID    string `gorm:"type:char(36);index"`
	KeyHash   string `gorm:"size:128;uniqueIndex;not null"`
	Name      string `gorm:"size:200"`
	CreatedAt time.Time
}
