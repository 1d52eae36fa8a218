package models

import (
	"time"

	"gorm.io/datatypes"
)

type Organization struct {
	ID              string `gorm:"type:char(36);primaryKey"`
	Name            string `gorm:"size:200;uniqueIndex;not null"`
	ContactName     string `gorm:"size:200"`
	ContactEmail    string `gorm:"size:255"`
	OrgVersion      int    `gorm:"not null;default:1"`
	DefaultLLMModel string `gorm:"size:200"`
	Settings        datatypes.JSON `gorm:"type:json"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Relations
	Members     []OrgMember     `gorm:"foreignKey:OrgID"`
	Invitations []OrgInvitation `gorm:"foreignKey:OrgID"`
}
