package authz

// Permission is a capability tag granted through the role -> permission map.
// Permissions are never persisted per user.
type Permission string

const (
	// Settings
	ManageSecrets             Permission = "manage_secrets"
	ManageIntegrations        Permission = "manage_integrations"
	ManageApplicationSettings Permission = "manage_application_settings"
	ManageAPIKeys             Permission = "manage_api_keys"
	ViewLLMSettings           Permission = "view_llm_settings"
	EditLLMSettings           Permission = "edit_llm_settings"

	// Billing
	ViewBilling Permission = "view_billing"
	AddCredits  Permission = "add_credits"

	// Organization members
	InviteUserToOrganization Permission = "invite_user_to_organization"
	ChangeUserRoleMember     Permission = "change_user_role:member"
	ChangeUserRoleAdmin      Permission = "change_user_role:admin"
	ChangeUserRoleOwner      Permission = "change_user_role:owner"

	// Organization management
	ViewOrgSettings        Permission = "view_org_settings"
	EditOrgSettings        Permission = "edit_org_settings"
	ChangeOrganizationName Permission = "change_organization_name"
	DeleteOrganization     Permission = "delete_organization"
)

// Built-in role names.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Role ranks. Lower rank means more privilege.
const (
	OwnerRank  = 10
	AdminRank  = 20
	MemberRank = 1000
)

// PermissionSet is a frozen set of permissions.
type PermissionSet map[Permission]struct{}

func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

func newSet(perms ...Permission) PermissionSet {
	s := make(PermissionSet, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// Config holds the role -> permission mapping. It is built once at process
// start and shared read-only across all requests.
type Config struct {
	rolePermissions map[string]PermissionSet
}

// NewConfig returns the static permission configuration for the three
// built-in roles. Owner covers admin, admin covers member; the owner-only
// subset is change-owner-role, rename-org and delete-org.
func NewConfig() *Config {
	return &Config{
		rolePermissions: map[string]PermissionSet{
			RoleOwner: newSet(
				ManageSecrets,
				ManageIntegrations,
				ManageApplicationSettings,
				ManageAPIKeys,
				ViewLLMSettings,
				EditLLMSettings,
				ViewBilling,
				AddCredits,
				InviteUserToOrganization,
				ChangeUserRoleMember,
				ChangeUserRoleAdmin,
				ChangeUserRoleOwner,
				ViewOrgSettings,
				EditOrgSettings,
				ChangeOrganizationName,
				DeleteOrganization,
			),
			RoleAdmin: newSet(
				ManageSecrets,
				ManageIntegrations,
				ManageApplicationSettings,
				ManageAPIKeys,
				ViewLLMSettings,
				EditLLMSettings,
				ViewBilling,
				AddCredits,
				InviteUserToOrganization,
				ChangeUserRoleMember,
				ChangeUserRoleAdmin,
				ViewOrgSettings,
				EditOrgSettings,
			),
			RoleMember: newSet(
				ManageSecrets,
				ManageIntegrations,
				ManageApplicationSettings,
				ManageAPIKeys,
				ViewOrgSettings,
				ViewLLMSettings,
			),
		},
	}
}

// RolePermissions returns the permission set for a role name. Unknown role
// names yield an empty set, never an error.
func (c *Config) RolePermissions(roleName string) PermissionSet {
	if s, ok := c.rolePermissions[roleName]; ok {
		return s
	}
	return PermissionSet{}
}

// HasPermission reports whether a role carries a permission.
func (c *Config) HasPermission(roleName string, p Permission) bool {
	return c.RolePermissions(roleName).Has(p)
}
