package models

import "time"

type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserSuspended UserStatus = "suspended"
)

type User struct {
	ID           string     `gorm:"type:char(36);primaryKey"`
	Email        string     `gorm:"size:255;index"`
	Name         string     `gorm:"size:200"`
	PasswordHash string     `gorm:"size:255"`
	Status       UserStatus `gorm:"size:16;default:active"`
	CurrentOrgID string     `gorm:"type:char(36);index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
