package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"orghub/internal/authz"
	"orghub/internal/models"
	"orghub/internal/seed"
	"orghub/internal/store"
)

// env wires real stores against an in-memory database with the built-in
// roles seeded, plus fake external collaborators.
type env struct {
	db          *gorm.DB
	members     *MemberService
	invitations *InvitationService
	orgs        *OrgService
	mailer      *fakeMailer
	provisioner *fakeProvisioner
	identity    *fakeIdentity
}

func newEnv(t *testing.T) *env {
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
		&models.AuditLog{},
		&models.Conversation{},
		&models.BillingSession{},
		&models.CustomSecret{},
		&models.APIKey{},
	))
	require.NoError(t, seed.Roles(gdb))

	perms := authz.NewConfig()
	orgStore := store.OrgStore{DB: gdb}
	memberStore := store.MemberStore{DB: gdb}
	roleStore := store.RoleStore{DB: gdb}
	userStore := store.UserStore{DB: gdb}
	invitationStore := store.InvitationStore{DB: gdb}

	mailer := &fakeMailer{}
	provisioner := &fakeProvisioner{key: "sk-budget-1234abcd"}
	identityFake := &fakeIdentity{emails: map[string]string{}}

	return &env{
		db: gdb,
		members: &MemberService{
			DB: gdb, Perms: perms,
			Members: memberStore, Roles: roleStore, Users: userStore,
		},
		invitations: &InvitationService{
			DB: gdb, Perms: perms,
			Orgs: orgStore, Members: memberStore, Roles: roleStore,
			Users: userStore, Invitations: invitationStore,
			Mailer: mailer, Provisioner: provisioner, Identity: identityFake,
		},
		orgs: &OrgService{
			DB: gdb, Perms: perms,
			Orgs: orgStore, Members: memberStore, Roles: roleStore,
			Users: userStore, Provisioner: provisioner,
		},
		mailer:      mailer,
		provisioner: provisioner,
		identity:    identityFake,
	}
}

func (e *env) addUser(t *testing.T, id, email string) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.User{
		ID: id, Email: email, Status: models.UserActive,
	}).Error)
}

func (e *env) addOrg(t *testing.T, id, name string) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.Organization{ID: id, Name: name}).Error)
}

func (e *env) addMember(t *testing.T, orgID, userID, roleName string) {
	t.Helper()
	var role models.Role
	require.NoError(t, e.db.Where("name = ?", roleName).First(&role).Error)
	require.NoError(t, e.db.Create(&models.OrgMember{
		OrgID:     orgID,
		UserID:    userID,
		RoleID:    role.ID,
		Status:    models.MemberActive,
		CreatedAt: time.Now().UTC(),
	}).Error)
}

func (e *env) memberRoleName(t *testing.T, orgID, userID string) string {
	t.Helper()
	var member models.OrgMember
	err := e.db.Where("org_id = ? AND user_id = ?", orgID, userID).First(&member).Error
	require.NoError(t, err)
	var role models.Role
	require.NoError(t, e.db.First(&role, member.RoleID).Error)
	return role.Name
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *fakeMailer) SendInvitation(_ context.Context, toEmail, _, _, _, _ string, _ int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, toEmail)
	return nil
}

func (m *fakeMailer) sentTo() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

type fakeProvisioner struct {
	mu           sync.Mutex
	key          string
	provisionErr error
	deleteErr    error
	provisioned  []string
	deletedTeams []string
}

func (p *fakeProvisioner) ProvisionMember(_ context.Context, orgID, userID string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.provisionErr != nil {
		return "", p.provisionErr
	}
	p.provisioned = append(p.provisioned, orgID+"/"+userID)
	return p.key, nil
}

func (p *fakeProvisioner) DeleteTeam(_ context.Context, orgID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.deleteErr != nil {
		return p.deleteErr
	}
	p.deletedTeams = append(p.deletedTeams, orgID)
	return nil
}

type fakeIdentity struct {
	emails map[string]string
}

func (f *fakeIdentity) EmailForUser(_ context.Context, userID string) (string, error) {
	return f.emails[userID], nil
}
