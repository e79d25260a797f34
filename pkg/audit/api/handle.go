package audit

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-authz/pkg/audit"
	"github.com/tendant/simple-authz/pkg/authz"
	authzapi "github.com/tendant/simple-authz/pkg/authz/api"
	"github.com/tendant/simple-authz/pkg/client"
	"github.com/tendant/simple-authz/pkg/errors"
)

// Handle handles HTTP requests for audit log viewing
type Handle struct {
	service           *audit.Service
	permissionService *authz.PermissionService
}

// NewHandle creates a new audit API handler
func NewHandle(service *audit.Service, permissionService *authz.PermissionService) *Handle {
	return &Handle{
		service:           service,
		permissionService: permissionService,
	}
}

// RegisterRoutes registers the audit routes
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.With(authz.RequireFeature(h.permissionService, "audit.view")).
		Get("/audit", h.ListEntries)
}

// ListEntries handles GET /audit. Organization users see only their own
// organization's entries; platform admins see every organization.
func (h *Handle) ListEntries(w http.ResponseWriter, r *http.Request) {
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

	limit := int32(50)
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limitInt, err := strconv.Atoi(limitStr); err == nil {
			limit = int32(limitInt)
		}
	}

	entries, err := h.service.List(r.Context(), actor, limit)
	if err != nil {
		authzapi.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"logs": entries,
	})
}
