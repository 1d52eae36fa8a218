package models

import "time"

// Role is immutable reference data seeded once at startup. Rank orders
// privilege: a lower value means a more privileged role.
type Role struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"size:50;uniqueIndex;not null"`
	Rank      int    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
