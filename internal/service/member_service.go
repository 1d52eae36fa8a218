package service

import (
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"orghub/internal/authz"
	"orghub/internal/models"
	"orghub/internal/store"
)

// MemberService enforces who may view, remove or re-role whom within an
// organization. Authorization is resolved fresh on every call; decisions are
// never cached across requests.
type MemberService struct {
	DB      *gorm.DB
	Perms   *authz.Config
	Members store.MemberStore
	Roles   store.RoleStore
	Users   store.UserStore
}

// MemberView is the outward shape of one membership row.
type MemberView struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	RoleID   int64  `json:"role_id"`
	RoleName string `json:"role_name"`
	RoleRank int    `json:"role_rank"`
	Status   string `json:"status"`
}

// MemberPage is one offset page of members. NextPageID is empty on the last
// page.
type MemberPage struct {
	Items      []MemberView `json:"items"`
	NextPageID string       `json:"next_page_id,omitempty"`
}

// MeView is the caller's own membership with the LLM API key masked.
type MeView struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	RoleName   string `json:"role_name"`
	RoleRank   int    `json:"role_rank"`
	Status     string `json:"status"`
	LLMModel   string `json:"llm_model,omitempty"`
	LLMBaseURL string `json:"llm_base_url,omitempty"`
	LLMAPIKey  string `json:"llm_api_key,omitempty"`
}

// RequirePermission resolves the caller's membership and role in the org and
// checks the static permission map. On success it returns the caller's role
// name for downstream use.
func (s *MemberService) RequirePermission(orgID, userID string, p authz.Permission) (string, error) {
	if userID == "" {
		return "", ErrUnauthenticated
	}
	member, err := s.Members.Get(nil, orgID, userID)
	if err != nil {
		return "", err
	}
	if member == nil {
		return "", ErrNotAMember
	}
	role, err := s.Roles.ByID(nil, member.RoleID)
	if err != nil {
		return "", err
	}
	if role == nil {
		return "", fmt.Errorf("%w: role %d for member %s", ErrRoleConfiguration, member.RoleID, userID)
	}
	if !s.Perms.HasPermission(role.Name, p) {
		return "", fmt.Errorf("%w: requires %s", ErrInsufficientPermission, p)
	}
	return role.Name, nil
}

// GetMe returns the caller's own membership view.
func (s *MemberService) GetMe(orgID, userID string) (*MeView, error) {
	member, err := s.Members.Get(nil, orgID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	role, err := s.Roles.ByID(nil, member.RoleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("%w: role %d for member %s", ErrRoleConfiguration, member.RoleID, userID)
	}
	email := ""
	if user, err := s.Users.ByID(userID); err != nil {
		return nil, err
	} else if user != nil {
		email = user.Email
	}
	return &MeView{
		UserID:     userID,
		Email:      email,
		RoleName:   role.Name,
		RoleRank:   role.Rank,
		Status:     string(member.Status),
		LLMModel:   member.LLMModel,
		LLMBaseURL: member.LLMBaseURL,
		LLMAPIKey:  maskSecret(member.LLMAPIKey),
	}, nil
}

// ListMembers returns one page of an org's members. Any member may list;
// the cursor is a non-negative integer offset encoded as a string. An offset
// past the end yields an empty page; a malformed cursor is a client error.
func (s *MemberService) ListMembers(orgID, callerID, pageID string, limit int) (*MemberPage, error) {
	caller, err := s.Members.Get(nil, orgID, callerID)
	if err != nil {
		return nil, err
	}
	if caller == nil {
		return nil, ErrNotAMember
	}

	offset := 0
	if pageID != "" {
		offset, err = strconv.Atoi(pageID)
		if err != nil || offset < 0 {
			return nil, ErrInvalidPageCursor
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	members, hasMore, err := s.Members.ListPaginated(orgID, offset, limit)
	if err != nil {
		return nil, err
	}

	page := &MemberPage{Items: make([]MemberView, 0, len(members))}
	for _, m := range members {
		view := MemberView{
			UserID: m.UserID,
			RoleID: m.RoleID,
			Status: string(m.Status),
		}
		if m.User != nil {
			view.Email = m.User.Email
		}
		if m.Role != nil {
			view.RoleName = m.Role.Name
			view.RoleRank = m.Role.Rank
		}
		page.Items = append(page.Items, view)
	}
	if hasMore {
		page.NextPageID = strconv.Itoa(offset + limit)
	}
	return page, nil
}

// RemoveMember removes target from the org on behalf of caller.
//
// Owners may remove anyone; admins may remove only plain members. Self
// removal is always rejected, and the org's sole owner can never be removed.
// The membership reads, the last-owner count and the delete all run in one
// transaction under row locks so two concurrent removals cannot both observe
// a stale owner count.
func (s *MemberService) RemoveMember(orgID, targetID, callerID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		members, err := s.Members.ListLocked(tx, orgID)
		if err != nil {
			return err
		}

		requester := findMember(members, callerID)
		if requester == nil {
			return ErrNotAMember
		}
		if callerID == targetID {
			return ErrCannotRemoveSelf
		}
		target := findMember(members, targetID)
		if target == nil {
			return ErrMemberNotFound
		}

		requesterRole, err := s.Roles.ByID(tx, requester.RoleID)
		if err != nil {
			return err
		}
		targetRole, err := s.Roles.ByID(tx, target.RoleID)
		if err != nil {
			return err
		}
		if requesterRole == nil || targetRole == nil {
			return ErrRoleConfiguration
		}

		// The last-owner guard wins over the rank check: removing a sole
		// owner reports the integrity violation no matter who asks.
		if targetRole.Rank == authz.OwnerRank {
			last, err := s.isLastOwner(tx, members, targetID)
			if err != nil {
				return err
			}
			if last {
				return ErrLastOwner
			}
		}

		if !canRemoveMember(requesterRole.Rank, targetRole.Rank) {
			return ErrInsufficientPermission
		}

		removed, err := s.Members.Remove(tx, orgID, targetID)
		if err != nil {
			return err
		}
		if !removed {
			return ErrRemovalFailed
		}
		return nil
	})
}

// UpdateMemberRole changes target's role on behalf of caller.
//
// Admins may move a plain member to admin or member; owners may move admins
// and members to any role. Nobody modifies a peer or superior, nobody
// modifies themselves, and the sole owner cannot be demoted. Runs under the
// same locking discipline as RemoveMember.
func (s *MemberService) UpdateMemberRole(orgID, targetID, newRoleName, callerID string) (*MemberView, error) {
	if callerID == targetID {
		return nil, ErrCannotModifySelf
	}

	var view *MemberView
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		members, err := s.Members.ListLocked(tx, orgID)
		if err != nil {
			return err
		}

		requester := findMember(members, callerID)
		if requester == nil {
			return ErrNotAMember
		}
		target := findMember(members, targetID)
		if target == nil {
			return ErrMemberNotFound
		}

		requesterRole, err := s.Roles.ByID(tx, requester.RoleID)
		if err != nil {
			return err
		}
		targetRole, err := s.Roles.ByID(tx, target.RoleID)
		if err != nil {
			return err
		}
		if requesterRole == nil || targetRole == nil {
			return ErrRoleConfiguration
		}

		newRole, err := s.Roles.ByName(newRoleName)
		if err != nil {
			return err
		}
		if newRole == nil {
			return ErrInvalidRole
		}

		// Target must be strictly less privileged than the requester.
		if targetRole.Rank <= requesterRole.Rank {
			return ErrInsufficientPermission
		}
		// Assigning a role requires the matching change_user_role permission,
		// which is how "admins cannot grant owner" falls out of the map.
		required := authz.Permission("change_user_role:" + newRole.Name)
		if !s.Perms.HasPermission(requesterRole.Name, required) {
			return ErrInsufficientPermission
		}

		if targetRole.Rank == authz.OwnerRank && newRole.Rank != authz.OwnerRank {
			last, err := s.isLastOwner(tx, members, targetID)
			if err != nil {
				return err
			}
			if last {
				return ErrLastOwner
			}
		}

		updated, err := s.Members.UpdateRole(tx, orgID, targetID, newRole.ID)
		if err != nil {
			return err
		}
		if !updated {
			return ErrMemberUpdate
		}

		view = &MemberView{
			UserID:   targetID,
			RoleID:   newRole.ID,
			RoleName: newRole.Name,
			RoleRank: newRole.Rank,
			Status:   string(target.Status),
		}
		if user, err := s.Users.ByID(targetID); err == nil && user != nil {
			view.Email = user.Email
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// isLastOwner reports whether target holds the only owner-rank membership in
// the already-locked member set.
func (s *MemberService) isLastOwner(tx *gorm.DB, members []models.OrgMember, targetID string) (bool, error) {
	var owners []string
	for _, m := range members {
		role, err := s.Roles.ByID(tx, m.RoleID)
		if err != nil {
			return false, err
		}
		if role != nil && role.Rank == authz.OwnerRank {
			owners = append(owners, m.UserID)
		}
	}
	return len(owners) == 1 && owners[0] == targetID, nil
}

func canRemoveMember(requesterRank, targetRank int) bool {
	switch requesterRank {
	case authz.OwnerRank:
		return true
	case authz.AdminRank:
		return targetRank > authz.AdminRank
	default:
		return false
	}
}

func findMember(members []models.OrgMember, userID string) *models.OrgMember {
	for i := range members {
		if members[i].UserID == userID {
			return &members[i]
		}
	}
	return nil
}

func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
