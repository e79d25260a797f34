package org

import (
	"time"

	"github.com/google/uuid"
)

// Onboarding status values persisted on organizations
const (
	OnboardingStatusPending   = "PENDING"
	OnboardingStatusCompleted = "COMPLETED"
)

// RoleOrgSuperAdmin is the tenant role assigned to the user who creates an
// organization; only this role may complete onboarding
const RoleOrgSuperAdmin = "Client Super Admin"

// Organization is one tenant, the unit of data isolation
type Organization struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	OnboardingStatus string    `json:"onboarding_status"`
	CreatedAt        time.Time `json:"created_at"`
}

// Profile holds the business details collected during onboarding
type Profile struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	Sector         string    `json:"sector"`
	BusinessType   string    `json:"business_type,omitempty"`
	CompanyName    string    `json:"company_name,omitempty"`
	GSTIN          string    `json:"gstin,omitempty"`
	ContactNumber  string    `json:"contact_number,omitempty"`
	AddressLine1   string    `json:"address_line_1,omitempty"`
	AddressLine2   string    `json:"address_line_2,omitempty"`
	City           string    `json:"city,omitempty"`
	State          string    `json:"state,omitempty"`
	Country        string    `json:"country"`
	Pincode        string    `json:"pincode,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SaveProfileParams contains the onboarding form fields
type SaveProfileParams struct {
	Sector        string `json:"sector,omitempty"`
	BusinessType  string `json:"business_type,omitempty"`
	CompanyName   string `json:"company_name,omitempty"`
	GSTIN         string `json:"gstin,omitempty"`
	ContactNumber string `json:"contact_number,omitempty"`
	AddressLine1  string `json:"address_line_1,omitempty"`
	AddressLine2  string `json:"address_line_2,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
	Country       string `json:"country,omitempty"`
	Pincode       string `json:"pincode,omitempty"`
	IsComplete    bool   `json:"is_complete"`
}

// OnboardResult is returned by Onboard
type OnboardResult struct {
	Organization     Organization `json:"organization,omitempty"`
	AlreadyOnboarded bool         `json:"already_onboarded"`
	OnboardingStatus string       `json:"onboarding_status,omitempty"`
}

// OrganizationWithProfile pairs an organization with its onboarding profile
type OrganizationWithProfile struct {
	Organization
	Profile *Profile `json:"profile,omitempty"`
}
