package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"orghub/internal/models"
)

func TestGetMissingMemberIsNil(t *testing.T) {
	gdb := newTestDB(t)
	members := MemberStore{DB: gdb}

	m, err := members.Get(nil, "org-1", "user-1")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestListPaginatedReportsMore(t *testing.T) {
	gdb := newTestDB(t)
	role := seedRole(t, gdb, "member", 1000)
	seedOrg(t, gdb, "org-1", "Acme")
	members := MemberStore{DB: gdb}

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		userID := fmt.Sprintf("user-%d", i)
		require.NoError(t, gdb.Create(&models.User{ID: userID, Email: userID + "@example.com"}).Error)
		require.NoError(t, gdb.Create(&models.OrgMember{
			OrgID:     "org-1",
			UserID:    userID,
			RoleID:    role.ID,
			Status:    models.MemberActive,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	page, hasMore, err := members.ListPaginated("org-1", 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.True(t, hasMore)
	assert.Equal(t, "user-0", page[0].UserID)
	require.NotNil(t, page[0].User)
	assert.Equal(t, "user-0@example.com", page[0].User.Email)
	require.NotNil(t, page[0].Role)
	assert.Equal(t, "member", page[0].Role.Name)

	page, hasMore, err = members.ListPaginated("org-1", 4, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.False(t, hasMore)
	assert.Equal(t, "user-4", page[0].UserID)

	page, hasMore, err = members.ListPaginated("org-1", 10, 2)
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.False(t, hasMore)
}

func TestRemoveReportsMissingRow(t *testing.T) {
	gdb := newTestDB(t)
	role := seedRole(t, gdb, "member", 1000)
	seedOrg(t, gdb, "org-1", "Acme")
	members := MemberStore{DB: gdb}

	require.NoError(t, members.Add(nil, &models.OrgMember{
		OrgID: "org-1", UserID: "user-1", RoleID: role.ID, Status: models.MemberActive,
	}))

	err := gdb.Transaction(func(tx *gorm.DB) error {
		removed, err := members.Remove(tx, "org-1", "user-1")
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = members.Remove(tx, "org-1", "user-1")
		require.NoError(t, err)
		assert.False(t, removed)
		return nil
	})
	require.NoError(t, err)
}

func TestUpdateRoleChangesRow(t *testing.T) {
	gdb := newTestDB(t)
	member := seedRole(t, gdb, "member", 1000)
	admin := seedRole(t, gdb, "admin", 20)
	seedOrg(t, gdb, "org-1", "Acme")
	members := MemberStore{DB: gdb}

	require.NoError(t, members.Add(nil, &models.OrgMember{
		OrgID: "org-1", UserID: "user-1", RoleID: member.ID, Status: models.MemberActive,
	}))

	err := gdb.Transaction(func(tx *gorm.DB) error {
		updated, err := members.UpdateRole(tx, "org-1", "user-1", admin.ID)
		require.NoError(t, err)
		assert.True(t, updated)

		updated, err = members.UpdateRole(tx, "org-1", "nobody", admin.ID)
		require.NoError(t, err)
		assert.False(t, updated)
		return nil
	})
	require.NoError(t, err)

	m, err := members.Get(nil, "org-1", "user-1")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, admin.ID, m.RoleID)
}
