package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPermissionRepository implements PermissionRepository against PostgreSQL
type PostgresPermissionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPermissionRepository creates a new PostgreSQL-based permission repository
func NewPostgresPermissionRepository(pool *pgxpool.Pool) *PostgresPermissionRepository {
	return &PostgresPermissionRepository{
		pool: pool,
	}
}

// GetProfile returns the profile for a user, or ErrProfileNotFound
func (r *PostgresPermissionRepository) GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error) {
	const query = `
		SELECT id, organization_id, role_id, is_platform_admin, full_name, email
		FROM profiles
		WHERE id = $1`

	var profile Profile
	var fullName *string
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.OrganizationID,
		&profile.RoleID,
		&profile.IsPlatformAdmin,
		&fullName,
		&profile.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, fmt.Errorf("failed to get profile: %w", err)
	}
	if fullName != nil {
		profile.FullName = *fullName
	}
	return profile, nil
}

// ListRolePermissionFeatureNames returns the default grant set for a role
func (r *PostgresPermissionRepository) ListRolePermissionFeatureNames(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	const query = `
		SELECT f.name
		FROM role_permissions rp
		JOIN features f ON f.id = rp.feature_id
		WHERE rp.role_id = $1`

	rows, err := r.pool.Query(ctx, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list role permissions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan feature name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ListUserOverrides returns all per-user overrides for a user
func (r *PostgresPermissionRepository) ListUserOverrides(ctx context.Context, userID uuid.UUID) ([]Override, error) {
	const query = `
		SELECT f.name, up.granted
		FROM user_permissions up
		JOIN features f ON f.id = up.feature_id
		WHERE up.user_id = $1`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user overrides: %w", err)
	}
	defer rows.Close()

	var overrides []Override
	for rows.Next() {
		var override Override
		if err := rows.Scan(&override.FeatureName, &override.Granted); err != nil {
			return nil, fmt.Errorf("failed to scan user override: %w", err)
		}
		overrides = append(overrides, override)
	}
	return overrides, rows.Err()
}

// ListAllFeatureNames returns the names of every feature that exists
func (r *PostgresPermissionRepository) ListAllFeatureNames(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM features`)
	if err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan feature name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
