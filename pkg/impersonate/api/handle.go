package impersonate

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-authz/pkg/authz"
	authzapi "github.com/tendant/simple-authz/pkg/authz/api"
	"github.com/tendant/simple-authz/pkg/client"
	"github.com/tendant/simple-authz/pkg/errors"
	"github.com/tendant/simple-authz/pkg/impersonate"
)

// Handle handles HTTP requests for impersonation sessions
type Handle struct {
	service           *impersonate.Service
	permissionService *authz.PermissionService
}

// NewHandle creates a new impersonation API handler
func NewHandle(service *impersonate.Service, permissionService *authz.PermissionService) *Handle {
	return &Handle{
		service:           service,
		permissionService: permissionService,
	}
}

// RegisterRoutes registers the impersonation routes
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Post("/platform/impersonate", h.StartImpersonation)
	r.Post("/platform/end-impersonation", h.EndImpersonation)
}

// StartImpersonationRequest is the request body for starting impersonation
type StartImpersonationRequest struct {
	TargetUserID   string `json:"target_user_id"`
	OrganizationID string `json:"organization_id"`
}

// StartImpersonation handles POST /platform/impersonate
func (h *Handle) StartImpersonation(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.resolveActor(w, r)
	if !ok {
		return
	}

	var reqBody StartImpersonationRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		slog.Error("Failed to decode request body", "error", err)
		authzapi.RenderError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	targetUserID, err := uuid.Parse(reqBody.TargetUserID)
	if err != nil {
		authzapi.RenderError(w, r, errors.New(errors.ErrCodeInvalidFormat, "invalid target user id"))
		return
	}
	orgID, err := uuid.Parse(reqBody.OrganizationID)
	if err != nil {
		authzapi.RenderError(w, r, errors.New(errors.ErrCodeInvalidFormat, "invalid organization id"))
		return
	}

	session, target, err := h.service.Start(r.Context(), actor, targetUserID, orgID)
	if err != nil {
		slog.Error("Impersonation start failed", "targetUserId", targetUserID, "error", err)
		authzapi.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"message":    "Impersonation started",
		"session":    session,
		"targetUser": target,
	})
}

// EndImpersonation handles POST /platform/end-impersonation. Ending with no
// active session succeeds.
func (h *Handle) EndImpersonation(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.resolveActor(w, r)
	if !ok {
		return
	}

	if err := h.service.End(r.Context(), actor); err != nil {
		slog.Error("Impersonation end failed", "impersonatorId", actor.ID(), "error", err)
		authzapi.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"message": "Impersonation ended",
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
