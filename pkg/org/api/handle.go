package org

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/tendant/simple-authz/pkg/authz"
	authzapi "github.com/tendant/simple-authz/pkg/authz/api"
	"github.com/tendant/simple-authz/pkg/client"
	"github.com/tendant/simple-authz/pkg/errors"
	"github.com/tendant/simple-authz/pkg/org"
)

// Handle handles HTTP requests for onboarding and organization views
type Handle struct {
	orgService        *org.OrgService
	permissionService *authz.PermissionService
}

// NewHandle creates a new organization API handler
func NewHandle(orgService *org.OrgService, permissionService *authz.PermissionService) *Handle {
	return &Handle{
		orgService:        orgService,
		permissionService: permissionService,
	}
}

// RegisterRoutes registers the organization routes
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Post("/onboard", h.Onboard)
	r.Get("/organization", h.GetOrganization)
	r.Post("/organization/profile", h.SaveProfile)
	r.With(authz.RequirePlatformAdmin(h.permissionService)).
		Get("/platform/organizations", h.ListOrganizations)
}

// OnboardRequest is the request body for onboarding
type OnboardRequest struct {
	FullName         string `json:"full_name,omitempty"`
	OrganizationName string `json:"organization_name,omitempty"`
}

// Onboard handles POST /onboard
func (h *Handle) Onboard(w http.ResponseWriter, r *http.Request) {
	authUser, ok := client.AuthUserFromContext(r.Context())
	if !ok {
		authzapi.RenderError(w, r, errors.New(errors.ErrCodeUnauthorized, "unauthorized"))
		return
	}

	var reqBody OnboardRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		authzapi.RenderError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	result, err := h.orgService.Onboard(r.Context(), authUser.UserUuid, reqBody.FullName, reqBody.OrganizationName)
	if err != nil {
		slog.Error("Onboarding failed", "userId", authUser.UserId, "error", err)
		authzapi.RenderError(w, r, err)
		return
	}

	if result.AlreadyOnboarded {
		render.JSON(w, r, map[string]interface{}{
			"message":          "User already onboarded",
			"alreadyOnboarded": true,
		})
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"message":           "Onboarding successful",
		"organization":      result.Organization,
		"onboarding_status": result.OnboardingStatus,
	})
}

// SaveProfileRequest is the request body for saving the organization profile
type SaveProfileRequest struct {
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

// SaveProfile handles POST /organization/profile, as a draft save or the
// onboarding-completing call
func (h *Handle) SaveProfile(w http.ResponseWriter, r *http.Request) {
	authUser, ok := client.AuthUserFromContext(r.Context())
	if !ok {
		authzapi.RenderError(w, r, errors.New(errors.ErrCodeUnauthorized, "unauthorized"))
		return
	}

	actor, err := h.permissionService.ResolveActor(r.Context(), authUser.UserUuid)
	if err != nil {
		authzapi.RenderError(w, r, errors.New(errors.ErrCodeUnauthorized, "unauthorized"))
		return
	}

	var reqBody SaveProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		authzapi.RenderError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	params := org.SaveProfileParams{}
	if err := copier.Copy(&params, &reqBody); err != nil {
		slog.Error("Failed to copy request params", "error", err)
		authzapi.RenderError(w, r, errors.New(errors.ErrCodeInternal, "internal error"))
		return
	}

	if err := h.orgService.SaveProfile(r.Context(), actor, params); err != nil {
		slog.Error("Organization profile save failed", "userId", authUser.UserId, "error", err)
		authzapi.RenderError(w, r, err)
		return
	}

	message := "Profile saved as draft"
	if params.IsComplete {
		message = "Onboarding completed successfully"
	}
	render.JSON(w, r, map[string]interface{}{
		"message":   message,
		"completed": params.IsComplete,
	})
}

// GetOrganization handles GET /organization. Without an id parameter it
// returns the caller's own organization; with one, the requested organization
// when the caller may see it. Cross-tenant requests answer not-found.
func (h *Handle) GetOrganization(w http.ResponseWriter, r *http.Request) {
	authUser, ok := client.AuthUserFromContext(r.Context())
	if !ok {
		authzapi.RenderError(w, r, errors.New(errors.ErrCodeUnauthorized, "unauthorized"))
		return
	}

	actor, err := h.permissionService.ResolveActor(r.Context(), authUser.UserUuid)
	if err != nil {
		authzapi.RenderError(w, r, errors.New(errors.ErrCodeUnauthorized, "unauthorized"))
		return
	}

	orgID, hasOrg := actor.OrganizationID()
	if id := r.URL.Query().Get("id"); id != "" {
		orgID, err = uuid.Parse(id)
		if err != nil {
			authzapi.RenderError(w, r, errors.New(errors.ErrCodeInvalidFormat, "invalid organization id"))
			return
		}
	} else if !hasOrg {
		authzapi.RenderError(w, r, errors.MissingRequired("organization id"))
		return
	}

	organization, err := h.orgService.GetOrganization(r.Context(), actor, orgID)
	if err != nil {
		authzapi.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"organization": organization,
	})
}

// ListOrganizations handles GET /platform/organizations
func (h *Handle) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	authUser, ok := client.AuthUserFromContext(r.Context())
	if !ok {
		authzapi.RenderError(w, r, errors.New(errors.ErrCodeUnauthorized, "unauthorized"))
		return
	}

	actor, err := h.permissionService.ResolveActor(r.Context(), authUser.UserUuid)
	if err != nil {
		authzapi.RenderError(w, r, errors.New(errors.ErrCodeUnauthorized, "unauthorized"))
		return
	}

	organizations, err := h.orgService.FindOrganizations(r.Context(), actor)
	if err != nil {
		authzapi.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"organizations": organizations,
	})
}
