package authz

import (
	"log/slog"
	"net/http"

	"github.com/tendant/simple-authz/pkg/client"
)

// RequireFeature gates a route subtree behind one feature check. The actor is
// resolved fresh from the store on every request, so role and override changes
// apply immediately. Platform admins pass every gate.
func RequireFeature(service *PermissionService, featureName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authUser, ok := client.AuthUserFromContext(r.Context())
			if !ok {
				slog.Error("Failed to get authenticated user from context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !service.HasPermissionForUser(r.Context(), authUser.UserUuid, featureName) {
				slog.Warn("User denied access to feature-gated resource",
					"userId", authUser.UserId,
					"feature", featureName)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePlatformAdmin gates a route subtree to platform admins only
func RequirePlatformAdmin(service *PermissionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authUser, ok := client.AuthUserFromContext(r.Context())
			if !ok {
				slog.Error("Failed to get authenticated user from context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			actor, err := service.ResolveActor(r.Context(), authUser.UserUuid)
			if err != nil || !actor.IsPlatformAdmin() {
				slog.Warn("User attempted to access platform-admin resource",
					"userId", authUser.UserId)
				http.Error(w, "Forbidden: Platform Admin access required", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
