package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orghub/internal/authz"
	"orghub/internal/models"
	"orghub/internal/store"
)

func TestCreateInvitation(t *testing.T) {
	ctx := context.Background()

	t.Run("admin invites a fresh email", func(t *testing.T) {
		e := newEnv(t)
		setupOrgTrio(t, e)

		inv, err := e.invitations.CreateInvitation(ctx, "org-1", "  New@Example.COM ", "member", "admin-1")
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", inv.Email)
		assert.Equal(t, models.InvitationPending, inv.Status)
		assert.True(t, strings.HasPrefix(inv.Token, store.InvitationTokenPrefix))
		assert.WithinDuration(t, time.Now().UTC().Add(7*24*time.Hour), inv.ExpiresAt, time.Minute)
		assert.Equal(t, []string{"new@example.com"}, e.mailer.sentTo())
	})

	t.Run("plain member cannot invite", func(t *testing.T) {
		e := newEnv(t)
		setupOrgTrio(t, e)

		_, err := e.invitations.CreateInvitation(ctx, "org-1", "new@example.com", "member", "member-1")
		assert.ErrorIs(t, err, ErrInsufficientPermission)
	})

	t.Run("non-member cannot invite", func(t *testing.T) {
		e := newEnv(t)
		setupOrgTrio(t, e)
		e.addUser(t, "stranger", "stranger@example.com")

		_, err := e.invitations.CreateInvitation(ctx, "org-1", "new@example.com", "member", "stranger")
		assert.ErrorIs(t, err, ErrInsufficientPermission)
	})

	t.Run("only owners grant the owner role", func(t *testing.T) {
		e := newEnv(t)
		setupOrgTrio(t, e)

		_, err := e.invitations.CreateInvitation(ctx, "org-1", "new@example.com", "owner", "admin-1")
		assert.ErrorIs(t, err, ErrInsufficientPermission)

		inv, err := e.invitations.CreateInvitation(ctx, "org-1", "new@example.com", "owner", "owner-1")
		require.NoError(t, err)
		require.NotNil(t, inv.Role)
		assert.Equal(t, authz.RoleOwner, inv.Role.Name)
	})

	t.Run("unknown role name", func(t *testing.T) {
		e := newEnv(t)
		setupOrgTrio(t, e)

		_, err := e.invitations.CreateInvitation(ctx, "org-1", "new@example.com", "superuser", "owner-1")
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("existing member email is rejected", func(t *testing.T) {
		e := newEnv(t)
		setupOrgTrio(t, e)

		_, err := e.invitations.CreateInvitation(ctx, "org-1", "Member@Acme.TEST", "member", "owner-1")
		assert.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("personal workspace refuses invitations", func(t *testing.T) {
		e := newEnv(t)
		e.addUser(t, "solo-1", "solo@example.com")
		e.addOrg(t, "solo-1", "solo workspace")
		e.addMember(t, "solo-1", "solo-1", authz.RoleOwner)

		_, err := e.invitations.CreateInvitation(ctx, "solo-1", "new@example.com", "member", "solo-1")
		assert.ErrorIs(t, err, ErrInsufficientPermission)
	})

	t.Run("unknown org", func(t *testing.T) {
		e := newEnv(t)
		setupOrgTrio(t, e)

		_, err := e.invitations.CreateInvitation(ctx, "org-missing", "new@example.com", "member", "owner-1")
		assert.ErrorIs(t, err, ErrOrgNotFound)
	})

	t.Run("mailer failure does not fail creation", func(t *testing.T) {
		e := newEnv(t)
		setupOrgTrio(t, e)
		e.mailer.err = errors.New("smtp down")

		inv, err := e.invitations.CreateInvitation(ctx, "org-1", "new@example.com", "member", "owner-1")
		require.NoError(t, err)
		assert.Equal(t, models.InvitationPending, inv.Status)
	})
}

func TestCreateInvitationsBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("per-email outcomes are independent", func(t *testing.T) {
		e := newEnv(t)
		setupOrgTrio(t, e)

		successful, failed, err := e.invitations.CreateInvitationsBatch(ctx, "org-1",
			[]string{"one@example.com", "member@acme.test", "two@example.com"},
			"member", "owner-1")
		require.NoError(t, err)

		require.Len(t, successful, 2)
		emails := []string{successful[0].Email, successful[1].Email}
		assert.ElementsMatch(t, []string{"one@example.com", "two@example.com"}, emails)

		require.Len(t, failed, 1)
		assert.Equal(t, "member@acme.test", failed[0].Email)
		assert.Contains(t, failed[0].Error, "already a member")
	})

	t.Run("shared precondition failure aborts the batch", func(t *testing.T) {
		e := newEnv(t)
		setupOrgTrio(t, e)

		_, _, err := e.invitations.CreateInvitationsBatch(ctx, "org-1",
			[]string{"one@example.com"}, "member", "member-1")
		assert.ErrorIs(t, err, ErrInsufficientPermission)

		var count int64
		require.NoError(t, e.db.Model(&models.OrgInvitation{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func acceptFixture(t *testing.T, e *env, inviteEmail string) *models.OrgInvitation {
	t.Helper()
	setupOrgTrio(t, e)
	inv, err := e.invitations.CreateInvitation(context.Background(), "org-1", inviteEmail, "admin", "owner-1")
	require.NoError(t, err)
	return inv
}

func TestAcceptInvitation(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path creates the membership with the invited role", func(t *testing.T) {
		e := newEnv(t)
		inv := acceptFixture(t, e, "invitee@example.com")
		e.addUser(t, "invitee-1", " Invitee@Example.COM ")

		accepted, err := e.invitations.AcceptInvitation(ctx, inv.Token, "invitee-1")
		require.NoError(t, err)
		assert.Equal(t, models.InvitationAccepted, accepted.Status)
		require.NotNil(t, accepted.AcceptedByUserID)
		assert.Equal(t, "invitee-1", *accepted.AcceptedByUserID)

		var member models.OrgMember
		require.NoError(t, e.db.Where("org_id = ? AND user_id = ?", "org-1", "invitee-1").
			First(&member).Error)
		assert.Equal(t, inv.RoleID, member.RoleID)
		assert.Equal(t, "sk-budget-1234abcd", member.LLMAPIKey)
		assert.Equal(t, authz.RoleAdmin, e.memberRoleName(t, "org-1", "invitee-1"))
	})

	t.Run("token can only be redeemed once", func(t *testing.T) {
		e := newEnv(t)
		inv := acceptFixture(t, e, "invitee@example.com")
		e.addUser(t, "invitee-1", "invitee@example.com")

		_, err := e.invitations.AcceptInvitation(ctx, inv.Token, "invitee-1")
		require.NoError(t, err)

		_, err = e.invitations.AcceptInvitation(ctx, inv.Token, "invitee-1")
		assert.ErrorIs(t, err, ErrInvitationInvalid)
	})

	t.Run("unknown token", func(t *testing.T) {
		e := newEnv(t)
		setupOrgTrio(t, e)
		e.addUser(t, "invitee-1", "invitee@example.com")

		_, err := e.invitations.AcceptInvitation(ctx, "inv-bogus", "invitee-1")
		assert.ErrorIs(t, err, ErrInvitationInvalid)
	})

	t.Run("revoked invitation", func(t *testing.T) {
		e := newEnv(t)
		inv := acceptFixture(t, e, "invitee@example.com")
		e.addUser(t, "invitee-1", "invitee@example.com")
		require.NoError(t, e.db.Model(&models.OrgInvitation{}).
			Where("id = ?", inv.ID).Update("status", models.InvitationRevoked).Error)

		_, err := e.invitations.AcceptInvitation(ctx, inv.Token, "invitee-1")
		assert.ErrorIs(t, err, ErrInvitationInvalid)
	})

	t.Run("expired invitation is marked expired", func(t *testing.T) {
		e := newEnv(t)
		inv := acceptFixture(t, e, "invitee@example.com")
		e.addUser(t, "invitee-1", "invitee@example.com")
		require.NoError(t, e.db.Model(&models.OrgInvitation{}).
			Where("id = ?", inv.ID).
			Update("expires_at", time.Now().UTC().Add(-time.Hour)).Error)

		_, err := e.invitations.AcceptInvitation(ctx, inv.Token, "invitee-1")
		assert.ErrorIs(t, err, ErrInvitationExpired)

		var row models.OrgInvitation
		require.NoError(t, e.db.First(&row, inv.ID).Error)
		assert.Equal(t, models.InvitationExpired, row.Status)

		// A second attempt hits the terminal status, not the expiry path.
		_, err = e.invitations.AcceptInvitation(ctx, inv.Token, "invitee-1")
		assert.ErrorIs(t, err, ErrInvitationInvalid)
	})

	t.Run("email mismatch leaves the invitation pending", func(t *testing.T) {
		e := newEnv(t)
		inv := acceptFixture(t, e, "invitee@example.com")
		e.addUser(t, "other-1", "other@example.com")

		_, err := e.invitations.AcceptInvitation(ctx, inv.Token, "other-1")
		assert.ErrorIs(t, err, ErrEmailMismatch)

		var row models.OrgInvitation
		require.NoError(t, e.db.First(&row, inv.ID).Error)
		assert.Equal(t, models.InvitationPending, row.Status)
	})

	t.Run("identity provider backfills a missing email", func(t *testing.T) {
		e := newEnv(t)
		inv := acceptFixture(t, e, "invitee@example.com")
		e.addUser(t, "invitee-1", "")
		e.identity.emails["invitee-1"] = "Invitee@Example.com"

		_, err := e.invitations.AcceptInvitation(ctx, inv.Token, "invitee-1")
		require.NoError(t, err)
	})

	t.Run("no email anywhere reads as a mismatch", func(t *testing.T) {
		e := newEnv(t)
		inv := acceptFixture(t, e, "invitee@example.com")
		e.addUser(t, "invitee-1", "")

		_, err := e.invitations.AcceptInvitation(ctx, inv.Token, "invitee-1")
		assert.ErrorIs(t, err, ErrEmailMismatch)
	})

	t.Run("existing member cannot accept again", func(t *testing.T) {
		e := newEnv(t)
		inv := acceptFixture(t, e, "invitee@example.com")
		e.addUser(t, "invitee-1", "invitee@example.com")
		// Joined through some other path after the invitation went out.
		e.addMember(t, "org-1", "invitee-1", authz.RoleMember)

		_, err := e.invitations.AcceptInvitation(ctx, inv.Token, "invitee-1")
		assert.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("provisioning failure keeps the invitation pending", func(t *testing.T) {
		e := newEnv(t)
		inv := acceptFixture(t, e, "invitee@example.com")
		e.addUser(t, "invitee-1", "invitee@example.com")
		e.provisioner.provisionErr = errors.New("proxy down")

		_, err := e.invitations.AcceptInvitation(ctx, inv.Token, "invitee-1")
		assert.ErrorIs(t, err, ErrIntegrationFailure)

		var row models.OrgInvitation
		require.NoError(t, e.db.First(&row, inv.ID).Error)
		assert.Equal(t, models.InvitationPending, row.Status)

		var count int64
		require.NoError(t, e.db.Model(&models.OrgMember{}).
			Where("org_id = ? AND user_id = ?", "org-1", "invitee-1").
			Count(&count).Error)
		assert.Zero(t, count)
	})
}
