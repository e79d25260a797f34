package org

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-authz/pkg/audit"
	"github.com/tendant/simple-authz/pkg/authz"
	"github.com/tendant/simple-authz/pkg/client"
	"github.com/tendant/simple-authz/pkg/iam"
	"github.com/tendant/simple-authz/pkg/org"
)

type handleFixture struct {
	handle  *Handle
	orgRepo *org.InMemoryOrgRepository
	pmRepo  *authz.InMemoryPermissionRepository
}

func newHandleFixture(t *testing.T) handleFixture {
	t.Helper()
	iamRepo := iam.NewInMemoryIamRepository()
	orgRepo := org.NewInMemoryOrgRepository(iamRepo)
	auditor := audit.NewService(audit.NewInMemoryAuditRepository())
	orgService := org.NewOrgService(orgRepo, iamRepo, auditor)
	pmRepo := authz.NewInMemoryPermissionRepository()
	return handleFixture{
		handle:  NewHandle(orgService, authz.NewPermissionService(pmRepo)),
		orgRepo: orgRepo,
		pmRepo:  pmRepo,
	}
}

func (f handleFixture) seedOrgUser(t *testing.T, orgID uuid.UUID) uuid.UUID {
	t.Helper()
	userID := uuid.New()
	roleID := uuid.New()
	f.pmRepo.PutProfile(authz.Profile{
		ID:             userID,
		OrganizationID: &orgID,
		RoleID:         &roleID,
		Email:          "user@acme.test",
	})
	return userID
}

func (f handleFixture) getOrganization(t *testing.T, userID uuid.UUID, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", "/organization"+query, nil)
	authUser := &client.AuthUser{UserId: userID.String(), UserUuid: userID}
	req = req.WithContext(context.WithValue(req.Context(), client.AuthUserKey, authUser))
	rec := httptest.NewRecorder()
	f.handle.GetOrganization(rec, req)
	return rec
}

func TestGetOrganization(t *testing.T) {
	ctx := context.Background()
	f := newHandleFixture(t)

	own, err := f.orgRepo.CreateOrganization(ctx, "Acme Realty", org.OnboardingStatusPending)
	require.NoError(t, err)
	other, err := f.orgRepo.CreateOrganization(ctx, "Other Realty", org.OnboardingStatusPending)
	require.NoError(t, err)

	userID := f.seedOrgUser(t, own.ID)

	t.Run("OwnOrganizationByDefault", func(t *testing.T) {
		rec := f.getOrganization(t, userID, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Acme Realty")
	})

	t.Run("CrossTenantIdNotFound", func(t *testing.T) {
		rec := f.getOrganization(t, userID, "?id="+other.ID.String())
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("OwnIdExplicit", func(t *testing.T) {
		rec := f.getOrganization(t, userID, "?id="+own.ID.String())
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("PlatformAdminAnyId", func(t *testing.T) {
		adminID := uuid.New()
		f.pmRepo.PutProfile(authz.Profile{ID: adminID, IsPlatformAdmin: true, Email: "admin@platform.test"})

		rec := f.getOrganization(t, adminID, "?id="+other.ID.String())
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Other Realty")
	})

	t.Run("PlatformAdminWithoutId", func(t *testing.T) {
		adminID := uuid.New()
		f.pmRepo.PutProfile(authz.Profile{ID: adminID, IsPlatformAdmin: true, Email: "admin@platform.test"})

		rec := f.getOrganization(t, adminID, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("BadId", func(t *testing.T) {
		rec := f.getOrganization(t, userID, "?id=not-a-uuid")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
