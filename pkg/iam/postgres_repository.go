package iam

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresIamRepository implements IamRepository against PostgreSQL
type PostgresIamRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresIamRepository creates a new PostgreSQL-based IAM repository
func NewPostgresIamRepository(pool *pgxpool.Pool) *PostgresIamRepository {
	return &PostgresIamRepository{
		pool: pool,
	}
}

// GetUser gets a user by ID
func (r *PostgresIamRepository) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	const query = `
		SELECT id, email, COALESCE(full_name, ''), organization_id, role_id, is_platform_admin, created_at
		FROM profiles
		WHERE id = $1`

	var user User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.OrganizationID,
		&user.RoleID,
		&user.IsPlatformAdmin,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// CreateUser creates a new user profile
func (r *PostgresIamRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	const query = `
		INSERT INTO profiles (id, email, full_name, organization_id, role_id, is_platform_admin, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, false, now())
		RETURNING id, email, COALESCE(full_name, ''), organization_id, role_id, is_platform_admin, created_at`

	var user User
	err := r.pool.QueryRow(ctx, query, uuid.New(), params.Email, params.FullName, params.OrganizationID, params.RoleID).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.OrganizationID,
		&user.RoleID,
		&user.IsPlatformAdmin,
		&user.CreatedAt,
	)
	if err != nil {
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// FindUsersByOrganization finds users of one organization, newest first
func (r *PostgresIamRepository) FindUsersByOrganization(ctx context.Context, orgID uuid.UUID) ([]UserWithRole, error) {
	const query = `
		SELECT p.id, p.email, COALESCE(p.full_name, ''), p.organization_id, p.role_id, p.is_platform_admin, p.created_at,
		       COALESCE(r.name, '')
		FROM profiles p
		LEFT JOIN roles r ON r.id = p.role_id
		WHERE p.organization_id = $1
		ORDER BY p.created_at DESC`

	rows, err := r.pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer rows.Close()

	var users []UserWithRole
	for rows.Next() {
		var user UserWithRole
		err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.FullName,
			&user.OrganizationID,
			&user.RoleID,
			&user.IsPlatformAdmin,
			&user.CreatedAt,
			&user.RoleName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// FindRoles lists every role
func (r *PostgresIamRepository) FindRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, is_platform_admin FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.IsPlatformAdmin); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// GetRole gets a role by ID
func (r *PostgresIamRepository) GetRole(ctx context.Context, id uuid.UUID) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx, `SELECT id, name, is_platform_admin FROM roles WHERE id = $1`, id).
		Scan(&role.ID, &role.Name, &role.IsPlatformAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, ErrRoleNotFound
		}
		return Role{}, fmt.Errorf("failed to get role: %w", err)
	}
	return role, nil
}

// GetRoleByName gets a role by its unique name
func (r *PostgresIamRepository) GetRoleByName(ctx context.Context, name string) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx, `SELECT id, name, is_platform_admin FROM roles WHERE name = $1`, name).
		Scan(&role.ID, &role.Name, &role.IsPlatformAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, ErrRoleNotFound
		}
		return Role{}, fmt.Errorf("failed to get role by name: %w", err)
	}
	return role, nil
}

// FindFeatures lists every feature
func (r *PostgresIamRepository) FindFeatures(ctx context.Context) ([]Feature, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, COALESCE(category, '') FROM features ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}
	defer rows.Close()

	var features []Feature
	for rows.Next() {
		var feature Feature
		if err := rows.Scan(&feature.ID, &feature.Name, &feature.Category); err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		features = append(features, feature)
	}
	return features, rows.Err()
}

// GetFeatureByName gets a feature by its unique name
func (r *PostgresIamRepository) GetFeatureByName(ctx context.Context, name string) (Feature, error) {
	var feature Feature
	err := r.pool.QueryRow(ctx, `SELECT id, name, COALESCE(category, '') FROM features WHERE name = $1`, name).
		Scan(&feature.ID, &feature.Name, &feature.Category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Feature{}, ErrFeatureNotFound
		}
		return Feature{}, fmt.Errorf("failed to get feature by name: %w", err)
	}
	return feature, nil
}

// UpsertUserOverride stores a per-user override, replacing any prior row for
// the same (user, feature) pair
func (r *PostgresIamRepository) UpsertUserOverride(ctx context.Context, userID, featureID uuid.UUID, granted bool) error {
	const query = `
		INSERT INTO user_permissions (user_id, feature_id, granted)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, feature_id) DO UPDATE SET granted = EXCLUDED.granted`

	if _, err := r.pool.Exec(ctx, query, userID, featureID, granted); err != nil {
		return fmt.Errorf("failed to upsert user override: %w", err)
	}
	return nil
}
