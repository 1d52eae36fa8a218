package store

import (
	"errors"

	"gorm.io/gorm"

	"orghub/internal/models"
)

// RoleStore reads the seeded role reference data.
type RoleStore struct{ DB *gorm.DB }

func (s RoleStore) ByID(tx *gorm.DB, id int64) (*models.Role, error) {
	if tx == nil {
		tx = s.DB
	}
	var role models.Role
	if err := tx.First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (s RoleStore) ByName(name string) (*models.Role, error) {
	var role models.Role
	if err := s.DB.Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}
