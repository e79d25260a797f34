package authz

import (
	"github.com/google/uuid"
)

// Actor is the authenticated identity a permission decision is made for.
// It is a tagged variant: either a platform admin (not bound to any single
// organization) or an organization user with a role. Constructing it through
// PlatformAdmin or OrgUser keeps the bypass and tenant-scoping rules in one
// place instead of re-deriving them from a raw flag at every call site.
type Actor struct {
	id            uuid.UUID
	displayName   string
	platformAdmin bool
	orgID         uuid.UUID
	roleID        uuid.UUID
}

// PlatformAdmin creates an actor with unconditional bypass of all feature checks
func PlatformAdmin(id uuid.UUID, displayName string) Actor {
	return Actor{
		id:            id,
		displayName:   displayName,
		platformAdmin: true,
	}
}

// OrgUser creates an actor bound to one organization with a tenant role
func OrgUser(id uuid.UUID, displayName string, orgID, roleID uuid.UUID) Actor {
	return Actor{
		id:          id,
		displayName: displayName,
		orgID:       orgID,
		roleID:      roleID,
	}
}

// ID returns the actor's user ID
func (a Actor) ID() uuid.UUID {
	return a.id
}

// DisplayName returns the actor's display name for audit snapshots
func (a Actor) DisplayName() string {
	return a.displayName
}

// IsPlatformAdmin reports whether the actor bypasses all feature checks
func (a Actor) IsPlatformAdmin() bool {
	return a.platformAdmin
}

// OrganizationID returns the actor's organization; ok is false for platform admins
func (a Actor) OrganizationID() (uuid.UUID, bool) {
	if a.platformAdmin {
		return uuid.Nil, false
	}
	return a.orgID, true
}

// RoleID returns the actor's tenant role; ok is false for platform admins
func (a Actor) RoleID() (uuid.UUID, bool) {
	if a.platformAdmin {
		return uuid.Nil, false
	}
	return a.roleID, true
}

// CanAccessOrganization reports whether the actor may read data scoped to the
// given organization. Platform admins have cross-tenant access.
func (a Actor) CanAccessOrganization(orgID uuid.UUID) bool {
	if a.platformAdmin {
		return true
	}
	return a.orgID == orgID
}

// Profile is the persisted identity record an actor is resolved from
type Profile struct {
	ID              uuid.UUID  `json:"id"`
	OrganizationID  *uuid.UUID `json:"organization_id,omitempty"`
	RoleID          *uuid.UUID `json:"role_id,omitempty"`
	IsPlatformAdmin bool       `json:"is_platform_admin"`
	FullName        string     `json:"full_name,omitempty"`
	Email           string     `json:"email"`
}

// Override is a per-user exception to the role default for one feature.
// The presence of an override decides; Granted says which way.
type Override struct {
	FeatureName string `json:"feature_name"`
	Granted     bool   `json:"granted"`
}
