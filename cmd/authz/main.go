package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/tendant/simple-authz/pkg/audit"
	auditapi "github.com/tendant/simple-authz/pkg/audit/api"
	"github.com/tendant/simple-authz/pkg/authz"
	authzapi "github.com/tendant/simple-authz/pkg/authz/api"
	"github.com/tendant/simple-authz/pkg/client"
	pkgconfig "github.com/tendant/simple-authz/pkg/config"
	"github.com/tendant/simple-authz/pkg/iam"
	iamapi "github.com/tendant/simple-authz/pkg/iam/api"
	"github.com/tendant/simple-authz/pkg/impersonate"
	impersonateapi "github.com/tendant/simple-authz/pkg/impersonate/api"
	"github.com/tendant/simple-authz/pkg/org"
	orgapi "github.com/tendant/simple-authz/pkg/org/api"
)

// Config aggregates all service configuration loaded from the environment
type Config struct {
	Db     pkgconfig.DatabaseConfig
	Server pkgconfig.ServerConfig
	Jwt    pkgconfig.JwtConfig
	Audit  pkgconfig.AuditConfig
}

func main() {
	// Load .env for local development; environment variables win
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found")
	}

	config := Config{}
	if err := cleanenv.ReadEnv(&config); err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	poolConfig, err := pgxpool.ParseConfig(config.Db.ToDatabaseURL())
	if err != nil {
		slog.Error("Failed to parse database config", "error", err)
		os.Exit(1)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("Failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Repositories
	permissionRepo := authz.NewPostgresPermissionRepository(pool)
	auditRepo := audit.NewPostgresAuditRepository(pool)
	sessionRepo := impersonate.NewPostgresSessionRepository(pool)
	iamRepo := iam.NewPostgresIamRepository(pool)
	orgRepo := org.NewPostgresOrgRepository(pool)

	// Services
	permissionService := authz.NewPermissionService(permissionRepo)
	auditService := audit.NewService(auditRepo,
		audit.WithRequiredActions(config.Audit.RequiredActionSet()))
	impersonateService := impersonate.NewService(sessionRepo, auditService)
	iamService := iam.NewIamService(iamRepo, auditService)
	orgService := org.NewOrgService(orgRepo, iamRepo, auditService)

	// Handlers
	authzHandle := authzapi.NewHandle(permissionService)
	auditHandle := auditapi.NewHandle(auditService, permissionService)
	impersonateHandle := impersonateapi.NewHandle(impersonateService, permissionService)
	iamHandle := iamapi.NewHandle(iamService, permissionService)
	orgHandle := orgapi.NewHandle(orgService, permissionService)

	tokenAuth := jwtauth.New("HS256", []byte(config.Jwt.Secret), nil)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, http.StatusText(http.StatusOK))
	})

	r.Group(func(r chi.Router) {
		r.Use(client.Verifier(tokenAuth))
		r.Use(client.AuthUserMiddleware)

		r.Route("/api", func(r chi.Router) {
			authzHandle.RegisterRoutes(r)
			auditHandle.RegisterRoutes(r)
			iamHandle.RegisterRoutes(r)
			orgHandle.RegisterRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(authz.RequirePlatformAdmin(permissionService))
				impersonateHandle.RegisterRoutes(r)
			})
		})
	})

	slog.Info("Starting simple-authz", "addr", config.Server.Addr())
	if err := http.ListenAndServe(config.Server.Addr(), r); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
