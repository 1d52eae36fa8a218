package store

import (
	"errors"

	"gorm.io/gorm"

	"orghub/internal/models"
)

// OrgStore manages organization rows.
type OrgStore struct{ DB *gorm.DB }

func (s OrgStore) ByID(id string) (*models.Organization, error) {
	var org models.Organization
	if err := s.DB.Where("id = ?", id).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

func (s OrgStore) ByName(name string) (*models.Organization, error) {
	var org models.Organization
	if err := s.DB.Where("name = ?", name).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

// PersistOrgWithOwner creates the org row and the creator's owner membership
// in a single transaction.
func (s OrgStore) PersistOrgWithOwner(org *models.Organization, owner *models.OrgMember) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return err
		}
		owner.OrgID = org.ID
		return tx.Create(owner).Error
	})
}

// UserOrgsPaginated returns one offset page of the orgs a user belongs to,
// ordered by name, plus whether more rows follow.
func (s OrgStore) UserOrgsPaginated(userID string, offset, limit int) ([]models.Organization, bool, error) {
	var orgs []models.Organization
	err := s.DB.
		Joins("JOIN org_members ON org_members.org_id = organizations.id").
		Where("org_members.user_id = ?", userID).
		Order("organizations.name").
		Offset(offset).
		Limit(limit + 1).
		Find(&orgs).Error
	if err != nil {
		return nil, false, err
	}
	hasMore := len(orgs) > limit
	if hasMore {
		orgs = orgs[:limit]
	}
	return orgs, hasMore, nil
}

// Update applies field changes to an org.
func (s OrgStore) Update(org *models.Organization) error {
	return s.DB.Save(org).Error
}
