package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"gorm.io/gorm"

	"orghub/internal/authz"
	"orghub/internal/models"
	"orghub/internal/store"
)

// InvitationMailer dispatches the invitation notification email. Failures
// are the mailer's own problem: invitation creation never fails because the
// notification channel is down.
type InvitationMailer interface {
	SendInvitation(ctx context.Context, toEmail, orgName, inviterName, roleName, token string, invitationID int64) error
}

// TeamProvisioner manages the external LLM-proxy team state that a
// membership requires.
type TeamProvisioner interface {
	// ProvisionMember creates the member's budget key in the org's team and
	// returns it. Called before the membership row is written; failure aborts
	// the acceptance.
	ProvisionMember(ctx context.Context, orgID, userID string) (llmAPIKey string, err error)
	// DeleteTeam tears the org's team down. Called inside the org-deletion
	// transaction, before commit.
	DeleteTeam(ctx context.Context, orgID string) error
}

// IdentityProvider resolves a verified email for a user when the stored
// profile has none.
type IdentityProvider interface {
	EmailForUser(ctx context.Context, userID string) (string, error)
}

// InvitationService runs the invitation lifecycle: issuance, expiration,
// token acceptance and email-identity verification.
type InvitationService struct {
	DB          *gorm.DB
	Perms       *authz.Config
	Orgs        store.OrgStore
	Members     store.MemberStore
	Roles       store.RoleStore
	Users       store.UserStore
	Invitations store.InvitationStore
	Mailer      InvitationMailer
	Provisioner TeamProvisioner
	Identity    IdentityProvider
}

// InvitationView is the outward shape of an invitation.
type InvitationView struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	ExpiresAt string `json:"expires_at"`
}

// InvitationFailure pairs an email with the reason its invitation failed.
type InvitationFailure struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// NewInvitationView converts an invitation row to its response shape.
func NewInvitationView(inv *models.OrgInvitation) InvitationView {
	roleName := ""
	if inv.Role != nil {
		roleName = inv.Role.Name
	}
	return InvitationView{
		ID:        inv.ID,
		Email:     inv.Email,
		Role:      roleName,
		Status:    inv.Status,
		CreatedAt: inv.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		ExpiresAt: inv.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// validateInviter runs the shared preconditions for invitation creation and
// returns the resolved target role. The checks, in order: the org exists,
// the org is not the inviter's personal workspace, the inviter is a member,
// the inviter holds the invite permission, owner-role invitations come from
// an owner, and the requested role name resolves.
func (s *InvitationService) validateInviter(orgID, roleName, inviterID string) (*models.Organization, *models.Role, error) {
	org, err := s.Orgs.ByID(orgID)
	if err != nil {
		return nil, nil, err
	}
	if org == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrOrgNotFound, orgID)
	}

	// A personal workspace has an org id equal to its sole user's id.
	if orgID == inviterID {
		return nil, nil, fmt.Errorf("%w: cannot invite users to a personal workspace", ErrInsufficientPermission)
	}

	inviterMember, err := s.Members.Get(nil, orgID, inviterID)
	if err != nil {
		return nil, nil, err
	}
	if inviterMember == nil {
		return nil, nil, fmt.Errorf("%w: you are not a member of this organization", ErrInsufficientPermission)
	}

	inviterRole, err := s.Roles.ByID(nil, inviterMember.RoleID)
	if err != nil {
		return nil, nil, err
	}
	if inviterRole == nil || !s.Perms.HasPermission(inviterRole.Name, authz.InviteUserToOrganization) {
		return nil, nil, fmt.Errorf("%w: only owners and admins can invite users", ErrInsufficientPermission)
	}

	roleName = strings.ToLower(roleName)
	if roleName == authz.RoleOwner && inviterRole.Name != authz.RoleOwner {
		return nil, nil, fmt.Errorf("%w: only owners can invite with owner role", ErrInsufficientPermission)
	}

	targetRole, err := s.Roles.ByName(roleName)
	if err != nil {
		return nil, nil, err
	}
	if targetRole == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidRole, roleName)
	}
	return org, targetRole, nil
}

// CreateInvitation validates, persists and dispatches one invitation.
func (s *InvitationService) CreateInvitation(ctx context.Context, orgID, email, roleName, inviterID string) (*models.OrgInvitation, error) {
	email = store.NormalizeEmail(email)

	org, targetRole, err := s.validateInviter(orgID, roleName, inviterID)
	if err != nil {
		return nil, err
	}

	if err := s.checkNotAlreadyMember(orgID, email); err != nil {
		return nil, err
	}

	inv, err := s.Invitations.Create(orgID, email, targetRole.ID, inviterID)
	if err != nil {
		return nil, err
	}

	s.sendInvitationEmail(ctx, inv, org, targetRole, inviterID)
	return inv, nil
}

// checkNotAlreadyMember rejects an email that already belongs to a member of
// the org.
func (s *InvitationService) checkNotAlreadyMember(orgID, email string) error {
	user, err := s.Users.ByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	member, err := s.Members.Get(nil, orgID, user.ID)
	if err != nil {
		return err
	}
	if member != nil {
		return ErrAlreadyMember
	}
	return nil
}

// sendInvitationEmail dispatches the notification. Errors are logged and
// swallowed; the invitee can still use the direct link.
func (s *InvitationService) sendInvitationEmail(ctx context.Context, inv *models.OrgInvitation, org *models.Organization, role *models.Role, inviterID string) {
	if s.Mailer == nil {
		return
	}
	inviterName := "A team member"
	if inviter, err := s.Users.ByID(inviterID); err == nil && inviter != nil && inviter.Email != "" {
		inviterName = strings.SplitN(inviter.Email, "@", 2)[0]
	}
	if err := s.Mailer.SendInvitation(ctx, inv.Email, org.Name, inviterName, role.Name, inv.Token, inv.ID); err != nil {
		log.Printf("error: failed to send invitation email invitation_id=%d email=%s: %v", inv.ID, inv.Email, err)
	}
}

// CreateInvitationsBatch validates the shared preconditions exactly once,
// then fans out one concurrent unit of work per email. A permission or role
// failure aborts the whole batch before any invitation is attempted;
// per-email failures are independent and reported alongside the successes.
func (s *InvitationService) CreateInvitationsBatch(ctx context.Context, orgID string, emails []string, roleName, inviterID string) ([]*models.OrgInvitation, []InvitationFailure, error) {
	org, targetRole, err := s.validateInviter(orgID, roleName, inviterID)
	if err != nil {
		return nil, nil, err
	}

	type outcome struct {
		email string
		inv   *models.OrgInvitation
		err   error
	}

	// One result slot per email; no shared mutable accumulator.
	results := make([]outcome, len(emails))
	var wg sync.WaitGroup
	for i, email := range emails {
		wg.Add(1)
		go func(i int, email string) {
			defer wg.Done()
			email = store.NormalizeEmail(email)
			if err := s.checkNotAlreadyMember(orgID, email); err != nil {
				results[i] = outcome{email: email, err: err}
				return
			}
			inv, err := s.Invitations.Create(orgID, email, targetRole.ID, inviterID)
			if err != nil {
				results[i] = outcome{email: email, err: err}
				return
			}
			s.sendInvitationEmail(ctx, inv, org, targetRole, inviterID)
			results[i] = outcome{email: email, inv: inv}
		}(i, email)
	}
	wg.Wait()

	var successful []*models.OrgInvitation
	var failed []InvitationFailure
	for _, r := range results {
		if r.err != nil {
			failed = append(failed, InvitationFailure{Email: r.email, Error: r.err.Error()})
			continue
		}
		successful = append(successful, r.inv)
	}
	log.Printf("batch invitation creation completed org_id=%s successful=%d failed=%d",
		orgID, len(successful), len(failed))
	return successful, failed, nil
}

// AcceptInvitation redeems a token on behalf of the accepting user.
//
// The accepting user's verified email must match the invitation's email
// case-insensitively after trimming; this is the boundary that stops a token
// being redeemed by an unintended identity. An expired invitation is marked
// expired even though the acceptance fails, so a second attempt
// short-circuits. External provisioning runs before any row is written;
// membership creation and the status transition commit together.
func (s *InvitationService) AcceptInvitation(ctx context.Context, token, userID string) (*models.OrgInvitation, error) {
	inv, err := s.Invitations.ByToken(token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: invalid invitation token", ErrInvitationInvalid)
	}

	if inv.Status != models.InvitationPending {
		switch inv.Status {
		case models.InvitationAccepted:
			return nil, fmt.Errorf("%w: invitation has already been accepted", ErrInvitationInvalid)
		case models.InvitationRevoked:
			return nil, fmt.Errorf("%w: invitation has been revoked", ErrInvitationInvalid)
		default:
			return nil, ErrInvitationInvalid
		}
	}

	if store.IsExpired(inv) {
		if _, err := s.Invitations.UpdateStatus(nil, inv.ID, models.InvitationExpired, ""); err != nil {
			return nil, err
		}
		return nil, ErrInvitationExpired
	}

	user, err := s.Users.ByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user not found", ErrInvitationInvalid)
	}

	userEmail := user.Email
	if userEmail == "" && s.Identity != nil {
		// Existing accounts created before email sync may only have an email
		// at the identity provider.
		userEmail, err = s.Identity.EmailForUser(ctx, userID)
		if err != nil {
			log.Printf("error: identity email lookup failed user_id=%s: %v", userID, err)
		}
	}
	if userEmail == "" {
		return nil, fmt.Errorf("%w: your account does not have an email address", ErrEmailMismatch)
	}
	if store.NormalizeEmail(userEmail) != store.NormalizeEmail(inv.Email) {
		log.Printf("warning: email mismatch during invitation acceptance invitation_id=%d user_id=%s", inv.ID, userID)
		return nil, ErrEmailMismatch
	}

	existing, err := s.Members.Get(nil, inv.OrgID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: you are already a member of this organization", ErrAlreadyMember)
	}

	var llmAPIKey string
	if s.Provisioner != nil {
		llmAPIKey, err = s.Provisioner.ProvisionMember(ctx, inv.OrgID, userID)
		if err != nil {
			log.Printf("error: member provisioning failed invitation_id=%d user_id=%s org_id=%s: %v",
				inv.ID, userID, inv.OrgID, err)
			return nil, fmt.Errorf("%w: failed to set up organization access", ErrIntegrationFailure)
		}
	}

	var accepted *models.OrgInvitation
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		member := models.OrgMember{
			OrgID:     inv.OrgID,
			UserID:    userID,
			RoleID:    inv.RoleID, // the role the invitation carries, not re-derived
			Status:    models.MemberActive,
			LLMAPIKey: llmAPIKey,
		}
		if err := s.Members.Add(tx, &member); err != nil {
			return err
		}
		accepted, err = s.Invitations.UpdateStatus(tx, inv.ID, models.InvitationAccepted, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("organization invitation accepted invitation_id=%d user_id=%s org_id=%s", inv.ID, userID, inv.OrgID)
	return accepted, nil
}
