package authz

import (
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-authz/pkg/authz"
	"github.com/tendant/simple-authz/pkg/client"
	"github.com/tendant/simple-authz/pkg/errors"
)

// Handle handles HTTP requests for permission queries
type Handle struct {
	permissionService *authz.PermissionService
}

// NewHandle creates a new permission API handler
func NewHandle(permissionService *authz.PermissionService) *Handle {
	return &Handle{
		permissionService: permissionService,
	}
}

// RegisterRoutes registers the permission routes
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Route("/permissions", func(r chi.Router) {
		r.Get("/", h.GetEffectivePermissions)
		r.Get("/check", h.CheckPermission)
	})
}

// GetEffectivePermissions returns the caller's effective permission set,
// resolved fresh from the store
func (h *Handle) GetEffectivePermissions(w http.ResponseWriter, r *http.Request) {
	authUser, ok := client.AuthUserFromContext(r.Context())
	if !ok {
		RenderError(w, r, errors.New(errors.ErrCodeUnauthorized, "unauthorized"))
		return
	}

	permissions, err := h.permissionService.EffectivePermissionsForUser(r.Context(), authUser.UserUuid)
	if err != nil {
		RenderError(w, r, errors.Wrap(err, errors.ErrCodeInternal, "failed to compute permissions"))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"permissions": permissions,
	})
}

// CheckPermission answers a point query for one feature name
func (h *Handle) CheckPermission(w http.ResponseWriter, r *http.Request) {
	authUser, ok := client.AuthUserFromContext(r.Context())
	if !ok {
		RenderError(w, r, errors.New(errors.ErrCodeUnauthorized, "unauthorized"))
		return
	}

	featureName := r.URL.Query().Get("feature")
	if featureName == "" {
		RenderError(w, r, errors.MissingRequired("feature"))
		return
	}

	allowed := h.permissionService.HasPermissionForUser(r.Context(), authUser.UserUuid, featureName)
	render.JSON(w, r, map[string]interface{}{
		"feature": featureName,
		"allowed": allowed,
	})
}

// RenderError writes a structured error response using the error's code for
// the HTTP status. Internal detail never reaches the client.
func RenderError(w http.ResponseWriter, r *http.Request, err error) {
	var e *errors.Error
	if stderrors.As(err, &e) {
		render.Status(r, e.HTTPStatusCode())
		render.JSON(w, r, map[string]interface{}{
			"error": e.Message,
			"code":  e.Code,
		})
		return
	}
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, map[string]interface{}{
		"error": "internal error",
		"code":  errors.ErrCodeInternal,
	})
}
