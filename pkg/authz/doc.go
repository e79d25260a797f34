// Package authz provides multi-tenant permission resolution for simple-authz.
//
// This package computes what a user may do from three inputs: whether the
// user is a platform admin, the defaults of the user's tenant role, and
// per-user overrides that grant or revoke individual features on top of the
// role.
//
// # Overview
//
// The authz package provides:
//   - Actor resolution from stored profiles
//   - Effective permission set computation
//   - Point queries for single features
//   - HTTP middlewares gating routes on features or platform admin
//
// # Basic Usage
//
//	import "github.com/tendant/simple-authz/pkg/authz"
//
//	repo := authz.NewPostgresPermissionRepository(pool)
//	service := authz.NewPermissionService(repo)
//
//	// Resolve the acting user
//	actor, err := service.ResolveActor(ctx, userID)
//	if err != nil {
//		return err
//	}
//
//	// Full set, e.g. for the UI to render menus
//	permissions, err := service.EffectivePermissions(ctx, actor)
//
//	// Point query, e.g. before a mutation
//	if !service.HasPermission(ctx, actor, "project.create") {
//		return errors.Forbidden("missing project.create")
//	}
//
// # Resolution Rules
//
// Platform admins hold every permission unconditionally; no feature, role, or
// override lookup happens for them. For organization users an override row
// decides first when one exists for the feature, and the role defaults decide
// otherwise. A user without a profile, role, or organization has no
// permissions. Store failures deny.
//
// Every query reads current state. Changing a role's defaults or a user's
// overrides takes effect on the next check with no cache to invalidate.
//
// # Route Gating
//
//	r.Group(func(r chi.Router) {
//		r.Use(client.Verifier(tokenAuth))
//		r.Use(client.AuthUserMiddleware)
//
//		r.With(authz.RequireFeature(service, "users.edit")).
//			Post("/api/users", createUserHandler)
//
//		r.With(authz.RequirePlatformAdmin(service)).
//			Get("/api/platform/organizations", listOrganizationsHandler)
//	})
//
// # Related Packages
//
//   - pkg/iam - user, role, feature, and override administration
//   - pkg/impersonate - platform admin impersonation sessions
//   - pkg/audit - audit trail for permission changes
package authz
