package org

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDatabase(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	dbName := "authz_db"
	dbUser := "authz"
	dbPassword := "pwd"

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithInitScripts(filepath.Join("../../migrations", "authz_db.sql")),
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)

	connString, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	poolConfig, err := pgxpool.ParseConfig(connString)
	require.NoError(t, err)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

func TestPostgresOrgRepository(t *testing.T) {
	ctx := context.Background()

	pool, cleanup := setupTestDatabase(t)
	defer cleanup()

	repo := NewPostgresOrgRepository(pool)

	organization, err := repo.CreateOrganization(ctx, "Acme Realty", OnboardingStatusPending)
	require.NoError(t, err)
	assert.Equal(t, "Acme Realty", organization.Name)
	assert.Equal(t, OnboardingStatusPending, organization.OnboardingStatus)

	bare, err := repo.CreateOrganization(ctx, "Bare Org", OnboardingStatusPending)
	require.NoError(t, err)

	t.Run("GetOrganization", func(t *testing.T) {
		got, err := repo.GetOrganization(ctx, organization.ID)
		require.NoError(t, err)
		assert.Equal(t, organization.ID, got.ID)

		_, err = repo.GetOrganization(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrOrganizationNotFound)
	})

	t.Run("UpsertProfile", func(t *testing.T) {
		require.NoError(t, repo.UpsertProfile(ctx, Profile{
			OrganizationID: organization.ID,
			Sector:         "real_estate",
			CompanyName:    "Acme Realty Pvt Ltd",
			Country:        "India",
		}))

		// Replaces the prior row
		require.NoError(t, repo.UpsertProfile(ctx, Profile{
			OrganizationID: organization.ID,
			Sector:         "real_estate",
			CompanyName:    "Acme Realty Pvt Ltd",
			City:           "Mumbai",
			Country:        "India",
		}))

		profile, err := repo.GetProfile(ctx, organization.ID)
		require.NoError(t, err)
		assert.Equal(t, "Mumbai", profile.City)
		assert.False(t, profile.UpdatedAt.IsZero())

		_, err = repo.GetProfile(ctx, bare.ID)
		assert.ErrorIs(t, err, ErrProfileNotFound)
	})

	t.Run("FindOrganizations", func(t *testing.T) {
		organizations, err := repo.FindOrganizations(ctx)
		require.NoError(t, err)
		require.Len(t, organizations, 2)

		byID := make(map[uuid.UUID]OrganizationWithProfile, len(organizations))
		for _, row := range organizations {
			byID[row.ID] = row
		}

		withProfile := byID[organization.ID]
		require.NotNil(t, withProfile.Profile)
		assert.Equal(t, "Acme Realty Pvt Ltd", withProfile.Profile.CompanyName)
		assert.False(t, withProfile.Profile.UpdatedAt.IsZero())

		// An organization without a profile row still lists
		assert.Nil(t, byID[bare.ID].Profile)
	})

	t.Run("SetOnboardingStatus", func(t *testing.T) {
		require.NoError(t, repo.SetOnboardingStatus(ctx, organization.ID, OnboardingStatusCompleted))

		got, err := repo.GetOrganization(ctx, organization.ID)
		require.NoError(t, err)
		assert.Equal(t, OnboardingStatusCompleted, got.OnboardingStatus)

		assert.ErrorIs(t, repo.SetOnboardingStatus(ctx, uuid.New(), OnboardingStatusCompleted), ErrOrganizationNotFound)
	})

	t.Run("AssignUserToOrganization", func(t *testing.T) {
		roleID := uuid.New()
		_, err := pool.Exec(ctx, `INSERT INTO roles (id, name) VALUES ($1, $2)`, roleID, RoleOrgSuperAdmin)
		require.NoError(t, err)

		userID := uuid.New()
		_, err = pool.Exec(ctx, `INSERT INTO profiles (id, email) VALUES ($1, $2)`, userID, "founder@acme.test")
		require.NoError(t, err)

		require.NoError(t, repo.AssignUserToOrganization(ctx, userID, organization.ID, roleID, "Founder"))

		var gotOrg, gotRole uuid.UUID
		var fullName string
		err = pool.QueryRow(ctx,
			`SELECT organization_id, role_id, full_name FROM profiles WHERE id = $1`, userID).
			Scan(&gotOrg, &gotRole, &fullName)
		require.NoError(t, err)
		assert.Equal(t, organization.ID, gotOrg)
		assert.Equal(t, roleID, gotRole)
		assert.Equal(t, "Founder", fullName)

		assert.Error(t, repo.AssignUserToOrganization(ctx, uuid.New(), organization.ID, roleID, "Nobody"))
	})
}
