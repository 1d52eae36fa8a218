package seed

import (
	"log"

	"gorm.io/gorm"

	"orghub/internal/authz"
	"orghub/internal/models"
)

// Roles ensures the three built-in roles exist with their fixed ranks. The
// role table is reference data; this runs once at startup and never mutates
// existing rows.
func Roles(db *gorm.DB) error {
	roles := []models.Role{
		{Name: authz.RoleOwner, Rank: authz.OwnerRank},
		{Name: authz.RoleAdmin, Rank: authz.AdminRank},
		{Name: authz.RoleMember, Rank: authz.MemberRank},
	}

	for _, r := range roles {
		tmp := r
		if err := db.Where("name = ?", tmp.Name).FirstOrCreate(&tmp).Error; err != nil {
			return err
		}
	}

	log.Printf("seed OK | roles=[owner,admin,member]")
	return nil
}
