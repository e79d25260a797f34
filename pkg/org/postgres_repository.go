package org

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresOrgRepository implements OrgRepository against PostgreSQL
type PostgresOrgRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresOrgRepository creates a new PostgreSQL-based organization repository
func NewPostgresOrgRepository(pool *pgxpool.Pool) *PostgresOrgRepository {
	return &PostgresOrgRepository{
		pool: pool,
	}
}

// CreateOrganization creates a new organization
func (r *PostgresOrgRepository) CreateOrganization(ctx context.Context, name, onboardingStatus string) (Organization, error) {
	const query = `
		INSERT INTO organizations (id, name, onboarding_status, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING id, name, onboarding_status, created_at`

	var organization Organization
	err := r.pool.QueryRow(ctx, query, uuid.New(), name, onboardingStatus).Scan(
		&organization.ID,
		&organization.Name,
		&organization.OnboardingStatus,
		&organization.CreatedAt,
	)
	if err != nil {
		return Organization{}, fmt.Errorf("failed to create organization: %w", err)
	}
	return organization, nil
}

// GetOrganization gets an organization by ID
func (r *PostgresOrgRepository) GetOrganization(ctx context.Context, id uuid.UUID) (Organization, error) {
	const query = `SELECT id, name, onboarding_status, created_at FROM organizations WHERE id = $1`

	var organization Organization
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&organization.ID,
		&organization.Name,
		&organization.OnboardingStatus,
		&organization.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Organization{}, ErrOrganizationNotFound
		}
		return Organization{}, fmt.Errorf("failed to get organization: %w", err)
	}
	return organization, nil
}

// FindOrganizations lists every organization with its profile, newest first
func (r *PostgresOrgRepository) FindOrganizations(ctx context.Context) ([]OrganizationWithProfile, error) {
	const query = `
		SELECT o.id, o.name, o.onboarding_status, o.created_at,
		       op.organization_id, op.sector, op.business_type, op.company_name, op.gstin,
		       op.contact_number, op.address_line_1, op.address_line_2, op.city, op.state,
		       op.country, op.pincode, op.updated_at
		FROM organizations o
		LEFT JOIN organization_profiles op ON op.organization_id = o.id
		ORDER BY o.created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var result []OrganizationWithProfile
	for rows.Next() {
		var row OrganizationWithProfile
		var profileOrgID *uuid.UUID
		var sector, businessType, companyName, gstin, contactNumber *string
		var addressLine1, addressLine2, city, state, country, pincode *string
		var updatedAt *time.Time

		err := rows.Scan(
			&row.ID, &row.Name, &row.OnboardingStatus, &row.CreatedAt,
			&profileOrgID, &sector, &businessType, &companyName, &gstin,
			&contactNumber, &addressLine1, &addressLine2, &city, &state,
			&country, &pincode, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}

		if profileOrgID != nil {
			profile := Profile{
				OrganizationID: *profileOrgID,
				Sector:         deref(sector),
				BusinessType:   deref(businessType),
				CompanyName:    deref(companyName),
				GSTIN:          deref(gstin),
				ContactNumber:  deref(contactNumber),
				AddressLine1:   deref(addressLine1),
				AddressLine2:   deref(addressLine2),
				City:           deref(city),
				State:          deref(state),
				Country:        deref(country),
				Pincode:        deref(pincode),
			}
			if updatedAt != nil {
				profile.UpdatedAt = *updatedAt
			}
			row.Profile = &profile
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// SetOnboardingStatus updates an organization's onboarding status
func (r *PostgresOrgRepository) SetOnboardingStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE organizations SET onboarding_status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to set onboarding status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrganizationNotFound
	}
	return nil
}

// UpsertProfile stores or replaces an organization's onboarding profile
func (r *PostgresOrgRepository) UpsertProfile(ctx context.Context, profile Profile) error {
	const query = `
		INSERT INTO organization_profiles (organization_id, sector, business_type, company_name, gstin,
			contact_number, address_line_1, address_line_2, city, state, country, pincode, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''),
			NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), $11, NULLIF($12, ''), now())
		ON CONFLICT (organization_id) DO UPDATE SET
			sector = EXCLUDED.sector,
			business_type = EXCLUDED.business_type,
			company_name = EXCLUDED.company_name,
			gstin = EXCLUDED.gstin,
			contact_number = EXCLUDED.contact_number,
			address_line_1 = EXCLUDED.address_line_1,
			address_line_2 = EXCLUDED.address_line_2,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			country = EXCLUDED.country,
			pincode = EXCLUDED.pincode,
			updated_at = now()`

	_, err := r.pool.Exec(ctx, query,
		profile.OrganizationID, profile.Sector, profile.BusinessType, profile.CompanyName,
		profile.GSTIN, profile.ContactNumber, profile.AddressLine1, profile.AddressLine2,
		profile.City, profile.State, profile.Country, profile.Pincode,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert organization profile: %w", err)
	}
	return nil
}

// GetProfile gets an organization's onboarding profile
func (r *PostgresOrgRepository) GetProfile(ctx context.Context, orgID uuid.UUID) (Profile, error) {
	const query = `
		SELECT organization_id, COALESCE(sector, ''), COALESCE(business_type, ''), COALESCE(company_name, ''),
		       COALESCE(gstin, ''), COALESCE(contact_number, ''), COALESCE(address_line_1, ''),
		       COALESCE(address_line_2, ''), COALESCE(city, ''), COALESCE(state, ''), COALESCE(country, ''),
		       COALESCE(pincode, ''), updated_at
		FROM organization_profiles
		WHERE organization_id = $1`

	var profile Profile
	err := r.pool.QueryRow(ctx, query, orgID).Scan(
		&profile.OrganizationID, &profile.Sector, &profile.BusinessType, &profile.CompanyName,
		&profile.GSTIN, &profile.ContactNumber, &profile.AddressLine1, &profile.AddressLine2,
		&profile.City, &profile.State, &profile.Country, &profile.Pincode, &profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, fmt.Errorf("failed to get organization profile: %w", err)
	}
	return profile, nil
}

// AssignUserToOrganization sets a user's organization and tenant role
func (r *PostgresOrgRepository) AssignUserToOrganization(ctx context.Context, userID, orgID, roleID uuid.UUID, fullName string) error {
	const query = `
		UPDATE profiles
		SET organization_id = $2, role_id = $3, full_name = COALESCE(NULLIF($4, ''), full_name), is_platform_admin = false
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, userID, orgID, roleID, fullName)
	if err != nil {
		return fmt.Errorf("failed to assign user to organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile not found for user %s", userID)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
