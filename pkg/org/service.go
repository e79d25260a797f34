package org

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tendant/simple-authz/pkg/audit"
	"github.com/tendant/simple-authz/pkg/authz"
	"github.com/tendant/simple-authz/pkg/errors"
	"github.com/tendant/simple-authz/pkg/iam"
)

// OrgService handles organization onboarding and platform-level organization
// views
type OrgService struct {
	repo    OrgRepository
	iamRepo iam.IamRepository
	auditor *audit.Service
}

// NewOrgService creates a new organization service
func NewOrgService(repo OrgRepository, iamRepo iam.IamRepository, auditor *audit.Service) *OrgService {
	return &OrgService{
		repo:    repo,
		iamRepo: iamRepo,
		auditor: auditor,
	}
}

// Onboard creates an organization for a freshly signed-up user and assigns
// them the organization super admin role. Calling it again for an already
// onboarded user is a no-op reporting AlreadyOnboarded.
func (s *OrgService) Onboard(ctx context.Context, userID uuid.UUID, fullName, organizationName string) (OnboardResult, error) {
	user, err := s.iamRepo.GetUser(ctx, userID)
	if err != nil {
		if err == iam.ErrUserNotFound {
			return OnboardResult{}, errors.NotFound("user", userID)
		}
		return OnboardResult{}, errors.Wrap(err, errors.ErrCodeInternal, "failed to get user")
	}
	if user.OrganizationID != nil {
		return OnboardResult{AlreadyOnboarded: true}, nil
	}

	if organizationName == "" {
		organizationName = "My Organization"
	}
	organization, err := s.repo.CreateOrganization(ctx, organizationName, OnboardingStatusPending)
	if err != nil {
		return OnboardResult{}, errors.Wrap(err, errors.ErrCodeInternal, "failed to create organization")
	}

	// Seed the onboarding profile with defaults; the wizard fills it in later
	if err := s.repo.UpsertProfile(ctx, Profile{
		OrganizationID: organization.ID,
		Sector:         "real_estate",
		Country:        "India",
	}); err != nil {
		slog.Warn("Failed to seed organization profile", "orgId", organization.ID, "error", err)
	}

	role, err := s.iamRepo.GetRoleByName(ctx, RoleOrgSuperAdmin)
	if err != nil {
		return OnboardResult{}, errors.Wrap(err, errors.ErrCodeInternal, "failed to fetch role")
	}

	if err := s.repo.AssignUserToOrganization(ctx, userID, organization.ID, role.ID, fullName); err != nil {
		return OnboardResult{}, errors.Wrap(err, errors.ErrCodeInternal, "failed to update profile")
	}

	userName := fullName
	if userName == "" {
		userName = user.Email
	}
	orgID := organization.ID
	if err := s.auditor.Record(ctx, audit.RecordParams{
		UserID:     userID,
		UserName:   userName,
		Action:     audit.ActionOrgCreated,
		EntityType: "organization",
		EntityID:   &orgID,
		Metadata: map[string]interface{}{
			"organization_name": organization.Name,
			"onboarding_status": OnboardingStatusPending,
		},
	}); err != nil {
		slog.Error("Failed to audit organization creation", "orgId", organization.ID, "error", err)
	}

	return OnboardResult{
		Organization:     organization,
		OnboardingStatus: OnboardingStatusPending,
	}, nil
}

// SaveProfile saves the onboarding profile as a draft, or completes onboarding
// when params.IsComplete is set. Only the organization super admin may call it;
// platform admins are rejected because they have no organization to onboard.
//
// The ONBOARDING_COMPLETED audit entry is part of the completion contract:
// when the audit service has it marked required, a failed write aborts the
// completion instead of being swallowed.
func (s *OrgService) SaveProfile(ctx context.Context, actor authz.Actor, params SaveProfileParams) error {
	if actor.IsPlatformAdmin() {
		return errors.Forbidden("only organization users can update profile")
	}
	orgID, ok := actor.OrganizationID()
	if !ok || orgID == uuid.Nil {
		return errors.Forbidden("only organization users can update profile")
	}

	roleID, _ := actor.RoleID()
	role, err := s.iamRepo.GetRole(ctx, roleID)
	if err != nil || role.Name != RoleOrgSuperAdmin {
		return errors.Forbidden("only organization super admin can complete onboarding")
	}

	sector := params.Sector
	if sector == "" {
		sector = "real_estate"
	}
	country := params.Country
	if country == "" {
		country = "India"
	}
	if err := s.repo.UpsertProfile(ctx, Profile{
		OrganizationID: orgID,
		Sector:         sector,
		BusinessType:   params.BusinessType,
		CompanyName:    params.CompanyName,
		GSTIN:          params.GSTIN,
		ContactNumber:  params.ContactNumber,
		AddressLine1:   params.AddressLine1,
		AddressLine2:   params.AddressLine2,
		City:           params.City,
		State:          params.State,
		Country:        country,
		Pincode:        params.Pincode,
	}); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to save organization profile")
	}

	if !params.IsComplete {
		return nil
	}

	if err := s.repo.SetOnboardingStatus(ctx, orgID, OnboardingStatusCompleted); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to complete onboarding")
	}

	return s.auditor.Record(ctx, audit.RecordParams{
		UserID:     actor.ID(),
		UserName:   actor.DisplayName(),
		Action:     audit.ActionOnboardingCompleted,
		EntityType: "organization",
		EntityID:   &orgID,
		Metadata: map[string]interface{}{
			"company_name": params.CompanyName,
		},
	})
}

// FindOrganizations lists every organization with its onboarding profile.
// Platform admin only; this is the one cross-tenant listing in the system.
func (s *OrgService) FindOrganizations(ctx context.Context, actor authz.Actor) ([]OrganizationWithProfile, error) {
	if !actor.IsPlatformAdmin() {
		return nil, errors.New(errors.ErrCodePlatformAdminRequired, "platform admin access required")
	}
	organizations, err := s.repo.FindOrganizations(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to list organizations")
	}
	return organizations, nil
}

// GetOrganization returns one organization visible to the actor
func (s *OrgService) GetOrganization(ctx context.Context, actor authz.Actor, id uuid.UUID) (Organization, error) {
	if !actor.CanAccessOrganization(id) {
		return Organization{}, errors.NotFound("organization", id)
	}
	organization, err := s.repo.GetOrganization(ctx, id)
	if err != nil {
		if err == ErrOrganizationNotFound {
			return Organization{}, errors.NotFound("organization", id)
		}
		return Organization{}, errors.Wrap(err, errors.ErrCodeInternal, "failed to get organization")
	}
	return organization, nil
}
