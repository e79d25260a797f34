package iam

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
	"github.com/tendant/simple-authz/pkg/iam"
)

// Handle handles HTTP requests for user, role, and feature management
type Handle struct {
	iamService        *iam.IamService
	permissionService *authz.PermissionService
}

// NewHandle creates a new IAM API handler
func NewHandle(iamService *iam.IamService, permissionService *authz.PermissionService) *Handle {
	return &Handle{
		iamService:        iamService,
		permissionService: permissionService,
	}
}

// RegisterRoutes registers the IAM routes. User mutations are gated on the
// users.edit feature; listings on users.view.
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.With(authz.RequireFeature(h.permissionService, "users.view")).
			Get("/", h.ListUsers)
		r.With(authz.RequireFeature(h.permissionService, "users.edit")).
			Post("/", h.CreateUser)
		r.With(authz.RequireFeature(h.permissionService, "users.edit")).
			Put("/{id}/permissions", h.UpdateUserPermissions)
	})
	r.Get("/roles", h.ListRoles)
	r.Get("/features", h.ListFeatures)
}

// ListUsers handles GET /users, scoped to the caller's organization
func (h *Handle) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.resolveActor(w, r)
	if !ok {
		return
	}

	orgID := uuid.Nil
	if orgIDStr := r.URL.Query().Get("organization_id"); orgIDStr != "" {
		parsed, err := uuid.Parse(orgIDStr)
		if err != nil {
			authzapi.RenderError(w, r, errors.New(errors.ErrCodeInvalidFormat, "invalid organization id"))
			return
		}
		orgID = parsed
	}

	users, err := h.iamService.FindUsers(r.Context(), actor, orgID)
	if err != nil {
		authzapi.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"users": users,
	})
}

// CreateUserRequest is the request body for creating a user
type CreateUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	RoleID   string `json:"role_id"`
}

// CreateUser handles POST /users
func (h *Handle) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.resolveActor(w, r)
	if !ok {
		return
	}

	var reqBody CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		authzapi.RenderError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}
	if reqBody.Email == "" || reqBody.RoleID == "" {
		authzapi.RenderError(w, r, errors.New(errors.ErrCodeMissingRequired, "email and role are required"))
		return
	}

	roleID, err := uuid.Parse(reqBody.RoleID)
	if err != nil {
		authzapi.RenderError(w, r, errors.New(errors.ErrCodeInvalidFormat, "invalid role id"))
		return
	}

	params := iam.CreateUserParams{}
	if err := copier.Copy(&params, &reqBody); err != nil {
		slog.Error("Failed to copy request params", "error", err)
		authzapi.RenderError(w, r, errors.New(errors.ErrCodeInternal, "internal error"))
		return
	}
	params.RoleID = &roleID

	user, err := h.iamService.CreateUser(r.Context(), actor, params)
	if err != nil {
		authzapi.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"message": "User created successfully",
		"user":    user,
	})
}

// UpdateUserPermissionsRequest is the request body for updating overrides
type UpdateUserPermissionsRequest struct {
	Overrides []iam.OverrideParams `json:"overrides"`
}

// UpdateUserPermissions handles PUT /users/{id}/permissions
func (h *Handle) UpdateUserPermissions(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.resolveActor(w, r)
	if !ok {
		return
	}

	targetUserID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		authzapi.RenderError(w, r, errors.New(errors.ErrCodeInvalidFormat, "invalid user id"))
		return
	}

	var reqBody UpdateUserPermissionsRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		authzapi.RenderError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	if err := h.iamService.SetUserOverrides(r.Context(), actor, targetUserID, reqBody.Overrides); err != nil {
		authzapi.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"message": "Permissions updated",
	})
}

// ListRoles handles GET /roles
func (h *Handle) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.iamService.FindRoles(r.Context())
	if err != nil {
		authzapi.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"roles": roles,
	})
}

// ListFeatures handles GET /features
func (h *Handle) ListFeatures(w http.ResponseWriter, r *http.Request) {
	features, err := h.iamService.FindFeatures(r.Context())
	if err != nil {
		authzapi.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"features": features,
	})
}

func (h *Handle) resolveActor(w http.ResponseWriter, r *http.Request) (authz.Actor, bool) {
	authUser, ok := client.AuthUserFromContext(r.Context())
	if !ok {
		authzapi.RenderError(w, r, errors.New(errors.ErrCodeUnauthorized, "unauthorized"))
		return authz.Actor{}, false
	}
	actor, err := h.permissionService.ResolveActor(r.Context(), authUser.UserUuid)
	if err != nil {
		authzapi.RenderError(w, r, errors.New(errors.ErrCodeUnauthorized, "unauthorized"))
		return authz.Actor{}, false
	}
	return actor, true
}
