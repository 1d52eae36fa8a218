package models

import "time"

type OrgMemberStatus string

const (
	MemberActive OrgMemberStatus = "active"
)

// OrgMember joins a user to an organization with a role. Unique per
// (org_id, user_id). The LLM override fields shadow the org defaults for
// this member only.
type OrgMember struct {
	ID         int64           `gorm:"primaryKey"`
	OrgID      string          `gorm:"type:char(36);uniqueIndex:idx_org_user;not null"`
	UserID     string          `gorm:"type:char(36);uniqueIndex:idx_org_user;not null"`
	RoleID     int64           `gorm:"index;not null"`
	Status     OrgMemberStatus `gorm:"size:16;default:active"`
	LLMModel   string          `gorm:"size:200"`
	LLMBaseURL string          `gorm:"size:255"`
	LLMAPIKey  string          `gorm:"size:255"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	User *User `gorm:"foreignKey:UserID"`
	Role *Role `gorm:"foreignKey:RoleID"`
}
