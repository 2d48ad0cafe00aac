package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"workbridge/api/internal/config"
	"workbridge/api/internal/middleware"
	"workbridge/api/internal/repository"
	"workbridge/api/internal/revocation"
	"workbridge/api/internal/service"
)

type HandlerSet struct {
	log         zerolog.Logger
	cfg         *config.AppConfig
	db          *pgxpool.Pool
	cache       *redis.Client
	users       *repository.UserRepository
	roles       *repository.RoleRepository
	perms       *repository.PermissionRepository
	revocations *revocation.Registry
	authService *service.AuthService
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permRepo := repository.NewPermissionRepository(db)
	registry := revocation.NewRegistry(revocation.NewPGStore(db))
	auth := service.NewAuthService(userRepo, roleRepo, registry, cfg, log)

	return HandlerSet{
		log:         log,
		cfg:         cfg,
		db:          db,
		cache:       cache,
		users:       userRepo,
		roles:       roleRepo,
		perms:       permRepo,
		revocations: registry,
		authService: auth,
	}
}

// Revocations exposes the registry for the cleanup scheduler.
func (h HandlerSet) Revocations() *revocation.Registry {
	return h.revocations
}

// Register wires the route tree. A route's capabilities are declared right
// here by its middleware chain: public routes carry neither Auth nor
// RequirePermissions, protected routes carry Auth, and admin routes add
// the permission codes they require.
func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)
	router.GET("/docs", h.Docs)

	v1 := router.Group("/v1")

	public := v1.Group("/auth")
	public.POST("/register", h.RegisterUser)
	public.POST("/login", h.Login)

	authed := v1.Group("/auth")
	authed.Use(middleware.Auth(h.cfg, h.users, h.revocations))
	authed.GET("/me", h.Me)
	authed.POST("/logout", h.Logout)
	authed.POST("/password", h.ChangePassword)

	admin := v1.Group("/admin")
	admin.Use(middleware.Auth(h.cfg, h.users, h.revocations))
	{
		admin.POST("/roles", middleware.RequirePermissions("roles:create"), h.CreateRole)
		admin.PATCH("/roles/:id", middleware.RequirePermissions("roles:update"), h.RenameRole)
		admin.PATCH("/roles/:id/default", middleware.RequirePermissions("roles:update"), h.SetDefaultRole)
		admin.PATCH("/roles/:id/active", middleware.RequirePermissions("roles:update"), h.SetRoleActive)
		admin.DELETE("/roles/:id", middleware.RequirePermissions("roles:delete"), h.DeleteRole)
		admin.PUT("/roles/:id/permissions/:permissionId", middleware.RequirePermissions("roles:update"), h.AddRolePermission)
		admin.DELETE("/roles/:id/permissions/:permissionId", middleware.RequirePermissions("roles:update"), h.RemoveRolePermission)

		admin.POST("/permissions", middleware.RequirePermissions("permissions:create"), h.CreatePermission)
		admin.GET("/permissions", middleware.RequirePermissions("permissions:read"), h.ListPermissions)
		admin.PATCH("/permissions/:id/active", middleware.RequirePermissions("permissions:update"), h.SetPermissionActive)

		admin.PATCH("/users/:id/active", middleware.RequirePermissions("users:update"), h.SetUserActive)
		admin.POST("/users/:id/unlock", middleware.RequirePermissions("users:update"), h.UnlockUser)
		admin.PUT("/users/:id/roles/:roleId", middleware.RequirePermissions("users:update"), h.AssignUserRole)
		admin.DELETE("/users/:id/roles/:roleId", middleware.RequirePermissions("users:update"), h.RemoveUserRole)
		admin.PUT("/users/:id/permissions/:permissionId", middleware.RequirePermissions("users:update"), h.GrantUserPermission)
		admin.DELETE("/users/:id/permissions/:permissionId", middleware.RequirePermissions("users:update"), h.RemoveUserPermission)
	}
}
