package iam

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user profile in the system
type User struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	FullName        string     `json:"full_name,omitempty"`
	OrganizationID  *uuid.UUID `json:"organization_id,omitempty"`
	RoleID          *uuid.UUID `json:"role_id,omitempty"`
	IsPlatformAdmin bool       `json:"is_platform_admin"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Role represents a role in the system. The reserved platform role is
// distinguished by IsPlatformAdmin.
type Role struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	IsPlatformAdmin bool      `json:"is_platform_admin"`
}

// Feature represents a named capability that can be granted or denied.
// Names are dot-namespaced, e.g. "users.edit".
type Feature struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category,omitempty"`
}

// UserWithRole represents a user with the resolved role name, for listings
type UserWithRole struct {
	User
	RoleName string `json:"role_name,omitempty"`
}

// CreateUserParams contains parameters for creating a new user profile
type CreateUserParams struct {
	Email          string     `json:"email"`
	FullName       string     `json:"full_name,omitempty"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	RoleID         *uuid.UUID `json:"role_id,omitempty"`
}

// OverrideParams contains one per-user override change
type OverrideParams struct {
	FeatureName string `json:"feature_name"`
	Granted     bool   `json:"granted"`
}
