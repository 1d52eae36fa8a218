package service

import (
	"errors"
	"fmt"
	"strings"
)

// Every enumerable failure mode gets its own sentinel so callers can match
// with errors.Is and the HTTP layer can map each to a specific status code.
var (
	// Authentication / authorization
	ErrUnauthenticated        = errors.New("user not authenticated")
	ErrNotAMember             = errors.New("you are not a member of this organization")
	ErrInsufficientPermission = errors.New("insufficient permission")

	// Membership operations
	ErrCannotRemoveSelf = errors.New("cannot remove yourself from an organization")
	ErrCannotModifySelf = errors.New("cannot modify your own role")
	ErrMemberNotFound   = errors.New("member not found in this organization")
	ErrLastOwner        = errors.New("cannot remove the last owner of an organization")
	ErrRemovalFailed    = errors.New("failed to remove member")
	ErrMemberUpdate     = errors.New("failed to update member")

	// Reference data
	ErrInvalidRole = errors.New("invalid role specified")
	// ErrRoleConfiguration means a membership references a role id that no
	// longer resolves. This is a server-side consistency fault, not a client
	// error.
	ErrRoleConfiguration = errors.New("role configuration error")

	// Pagination
	ErrInvalidPageCursor = errors.New("invalid page_id format")

	// Organizations
	ErrOrgNotFound   = errors.New("organization not found")
	ErrOrgNameExists = errors.New("an organization with this name already exists")

	// Invitations
	ErrInvitationInvalid = errors.New("invitation is no longer valid")
	ErrInvitationExpired = errors.New("invitation has expired")
	ErrAlreadyMember     = errors.New("user is already a member of this organization")
	ErrEmailMismatch     = errors.New("your email does not match the invitation")

	// External collaborators
	ErrIntegrationFailure = errors.New("external integration failure")
)

// OrphanedUsersError aborts an org deletion that would leave users with no
// organization at all. It names the affected users.
type OrphanedUsersError struct {
	UserIDs []string
}

func (e *OrphanedUsersError) Error() string {
	return fmt.Sprintf("cannot delete organization: users would be left without an organization: %s",
		strings.Join(e.UserIDs, ", "))
}
