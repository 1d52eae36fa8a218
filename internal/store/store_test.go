package store

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"orghub/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Organization{},
		&models.OrgMember{},
		&models.OrgInvitation{},
	))
	return gdb
}

func seedRole(t *testing.T, gdb *gorm.DB, name string, rank int) models.Role {
	t.Helper()
	role := models.Role{Name: name, Rank: rank}
	require.NoError(t, gdb.Create(&role).Error)
	return role
}

func seedOrg(t *testing.T, gdb *gorm.DB, id, name string) models.Organization {
	t.Helper()
	org := models.Organization{ID: id, Name: name}
	require.NoError(t, gdb.Create(&org).Error)
	return org
}
