package store

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orghub/internal/models"
)

// MemberStore manages org_member rows.
type MemberStore struct{ DB *gorm.DB }

// Get returns the membership for (orgID, userID), or nil if none exists.
// When tx is non-nil the read runs inside that transaction.
func (s MemberStore) Get(tx *gorm.DB, orgID, userID string) (*models.OrgMember, error) {
	if tx == nil {
		tx = s.DB
	}
	var member models.OrgMember
	err := tx.Where("org_id = ? AND user_id = ?", orgID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// ListLocked reads all memberships of an org under a row-level write lock.
// Must be called inside a transaction; the lock pins the owner count for a
// check-then-act decision (remove, demote).
func (s MemberStore) ListLocked(tx *gorm.DB, orgID string) ([]models.OrgMember, error) {
	// sqlite has no row locks; its writers serialize anyway.
	if tx.Dialector.Name() != "sqlite" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var members []models.OrgMember
	err := tx.Where("org_id = ?", orgID).Find(&members).Error
	return members, err
}

// ListPaginated returns one offset page of members with user and role
// preloaded, plus whether more rows follow.
func (s MemberStore) ListPaginated(orgID string, offset, limit int) ([]models.OrgMember, bool, error) {
	var members []models.OrgMember
	err := s.DB.Preload("User").Preload("Role").
		Where("org_id = ?", orgID).
		Order("created_at").
		Offset(offset).
		Limit(limit + 1).
		Find(&members).Error
	if err != nil {
		return nil, false, err
	}
	hasMore := len(members) > limit
	if hasMore {
		members = members[:limit]
	}
	return members, hasMore, nil
}

// Add creates a membership row.
func (s MemberStore) Add(tx *gorm.DB, member *models.OrgMember) error {
	if tx == nil {
		tx = s.DB
	}
	return tx.Create(member).Error
}

// Remove deletes the membership for (orgID, userID) inside tx. Returns
// false when no row was deleted.
func (s MemberStore) Remove(tx *gorm.DB, orgID, userID string) (bool, error) {
	res := tx.Where("org_id = ? AND user_id = ?", orgID, userID).
		Delete(&models.OrgMember{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateRole changes the role of the membership for (orgID, userID) inside tx.
func (s MemberStore) UpdateRole(tx *gorm.DB, orgID, userID string, roleID int64) (bool, error) {
	res := tx.Model(&models.OrgMember{}).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		Update("role_id", roleID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
