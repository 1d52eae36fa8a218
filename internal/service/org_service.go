package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"orghub/internal/authz"
	"orghub/internal/models"
	"orghub/internal/store"
)

// OrgService owns the organization lifecycle: creation with owner
// bootstrap, settings updates, current-org switching and cascading deletion.
type OrgService struct {
	DB          *gorm.DB
	Perms       *authz.Config
	Orgs        store.OrgStore
	Members     store.MemberStore
	Roles       store.RoleStore
	Users       store.UserStore
	Provisioner TeamProvisioner
}

// OrgView is the outward shape of an organization.
type OrgView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContactName  string `json:"contact_name,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// OrgPage is one offset page of a user's organizations.
type OrgPage struct {
	Items        []OrgView `json:"items"`
	NextPageID   string    `json:"next_page_id,omitempty"`
	CurrentOrgID string    `json:"current_org_id,omitempty"`
}

// NewOrgView converts an org row to its response shape.
func NewOrgView(org *models.Organization) OrgView {
	return OrgView{
		ID:           org.ID,
		Name:         org.Name,
		ContactName:  org.ContactName,
		ContactEmail: org.ContactEmail,
		CreatedAt:    org.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ListUserOrgs returns one offset page of the orgs the caller belongs to,
// plus the caller's current org pointer.
func (s *OrgService) ListUserOrgs(userID, pageID string, limit int) (*OrgPage, error) {
	offset := 0
	if pageID != "" {
		var err error
		offset, err = strconv.Atoi(pageID)
		if err != nil || offset < 0 {
			return nil, ErrInvalidPageCursor
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	orgs, hasMore, err := s.Orgs.UserOrgsPaginated(userID, offset, limit)
	if err != nil {
		return nil, err
	}

	page := &OrgPage{Items: make([]OrgView, 0, len(orgs))}
	for i := range orgs {
		page.Items = append(page.Items, NewOrgView(&orgs[i]))
	}
	if hasMore {
		page.NextPageID = strconv.Itoa(offset + limit)
	}
	if user, err := s.Users.ByID(userID); err == nil && user != nil {
		page.CurrentOrgID = user.CurrentOrgID
	}
	return page, nil
}

// CreateOrgWithOwner creates an org and makes the creator its owner, both in
// one transaction.
func (s *OrgService) CreateOrgWithOwner(name, contactName, contactEmail, userID string) (*models.Organization, error) {
	name = strings.TrimSpace(name)
	existing, err := s.Orgs.ByName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrOrgNameExists
	}

	ownerRole, err := s.Roles.ByName(authz.RoleOwner)
	if err != nil {
		return nil, err
	}
	if ownerRole == nil {
		return nil, ErrRoleConfiguration
	}

	org := models.Organization{
		ID:           uuid.NewString(),
		Name:         name,
		ContactName:  contactName,
		ContactEmail: contactEmail,
	}
	owner := models.OrgMember{
		UserID: userID,
		RoleID: ownerRole.ID,
		Status: models.MemberActive,
	}
	if err := s.Orgs.PersistOrgWithOwner(&org, &owner); err != nil {
		return nil, err
	}
	log.Printf("organization created org_id=%s name=%q owner=%s", org.ID, org.Name, userID)
	return &org, nil
}

// GetOrg returns an org the caller can view.
func (s *OrgService) GetOrg(orgID string) (*models.Organization, error) {
	org, err := s.Orgs.ByID(orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, fmt.Errorf("%w: %s", ErrOrgNotFound, orgID)
	}
	return org, nil
}

// OrgUpdate carries the mutable org fields. Nil pointers are left unchanged.
type OrgUpdate struct {
	Name         *string `json:"name"`
	ContactName  *string `json:"contact_name"`
	ContactEmail *string `json:"contact_email"`
}

// UpdateOrg applies settings changes. Renaming additionally requires the
// owner-only change-organization-name permission, checked by role name.
func (s *OrgService) UpdateOrg(orgID string, update OrgUpdate, callerRoleName string) (*models.Organization, error) {
	org, err := s.Orgs.ByID(orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, fmt.Errorf("%w: %s", ErrOrgNotFound, orgID)
	}

	if update.Name != nil && *update.Name != org.Name {
		if !s.Perms.HasPermission(callerRoleName, authz.ChangeOrganizationName) {
			return nil, fmt.Errorf("%w: requires %s", ErrInsufficientPermission, authz.ChangeOrganizationName)
		}
		name := strings.TrimSpace(*update.Name)
		existing, err := s.Orgs.ByName(name)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != org.ID {
			return nil, ErrOrgNameExists
		}
		org.Name = name
	}
	if update.ContactName != nil {
		org.ContactName = *update.ContactName
	}
	if update.ContactEmail != nil {
		org.ContactEmail = *update.ContactEmail
	}

	if err := s.Orgs.Update(org); err != nil {
		return nil, err
	}
	return org, nil
}

// SwitchOrg points the caller's current organization at orgID, provided the
// caller is a member there.
func (s *OrgService) SwitchOrg(orgID, userID string) (*models.Organization, error) {
	org, err := s.Orgs.ByID(orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, fmt.Errorf("%w: %s", ErrOrgNotFound, orgID)
	}
	member, err := s.Members.Get(nil, orgID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotAMember
	}
	err = s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("current_org_id", orgID).Error
	if err != nil {
		return nil, err
	}
	return org, nil
}

// DeleteOrgWithCleanup deletes an org and everything it owns as one atomic
// unit: conversation, billing, secret and API-key rows scoped to the org,
// then memberships, then the org row. Users whose current org is this org
// are re-pointed at an alternative membership first; if any such user has no
// alternative the whole deletion aborts with OrphanedUsersError before
// anything destructive runs. The external team teardown is issued inside the
// transaction, so its failure rolls every staged deletion back.
func (s *OrgService) DeleteOrgWithCleanup(ctx context.Context, orgID string) (*models.Organization, error) {
	org, err := s.Orgs.ByID(orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, fmt.Errorf("%w: %s", ErrOrgNotFound, orgID)
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// The orphan check comes before any destructive statement.
		var orphaned []string
		err := tx.Model(&models.User{}).
			Where("current_org_id = ?", orgID).
			Where("NOT EXISTS (SELECT 1 FROM org_members om WHERE om.user_id = users.id AND om.org_id <> ?)", orgID).
			Pluck("id", &orphaned).Error
		if err != nil {
			return err
		}
		if len(orphaned) > 0 {
			return &OrphanedUsersError{UserIDs: orphaned}
		}

		// Org-owned rows first.
		for _, model := range []interface{}{
			&models.Conversation{},
			&models.BillingSession{},
			&models.CustomSecret{},
			&models.APIKey{},
			&models.OrgInvitation{},
			&models.AuditLog{},
		} {
			if err := tx.Where("org_id = ?", orgID).Delete(model).Error; err != nil {
				return err
			}
		}

		// Re-point affected users at an alternative org.
		err = tx.Exec(`UPDATE users SET current_org_id = (
				SELECT om.org_id FROM org_members om
				WHERE om.user_id = users.id AND om.org_id <> ? LIMIT 1
			) WHERE current_org_id = ?`, orgID, orgID).Error
		if err != nil {
			return err
		}

		if err := tx.Where("org_id = ?", orgID).Delete(&models.OrgMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", orgID).Delete(&models.Organization{}).Error; err != nil {
			return err
		}

		// External teardown before commit: a failure here rolls back every
		// staged deletion above.
		if s.Provisioner != nil {
			log.Printf("deleting LLM-proxy team within delete transaction org_id=%s", orgID)
			if err := s.Provisioner.DeleteTeam(ctx, orgID); err != nil {
				return fmt.Errorf("%w: team teardown failed: %v", ErrIntegrationFailure, err)
			}
		}
		return nil
	})
	if err != nil {
		var orphanErr *OrphanedUsersError
		if !errors.As(err, &orphanErr) && !errors.Is(err, ErrIntegrationFailure) {
			log.Printf("error: organization deletion rolled back org_id=%s: %v", orgID, err)
		}
		return nil, err
	}

	log.Printf("organization deleted org_id=%s name=%q", orgID, org.Name)
	return org, nil
}
