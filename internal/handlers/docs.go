package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type routeDoc struct {
	Method      string   `json:"method"`
	Path        string   `json:"path"`
	Public      bool     `json:"public"`
	Permissions []string `json:"permissions,omitempty"`
}

// routeDocs mirrors the capability declarations made in Register. The docs
// endpoint itself is public and exempt from rate limiting.
var routeDocs = []routeDoc{
	{Method: "GET", Path: "/api/healthz", Public: true},
	{Method: "GET", Path: "/api/docs", Public: true},
	{Method: "POST", Path: "/api/v1/auth/register", Public: true},
	{Method: "POST", Path: "/api/v1/auth/login", Public: true},
	{Method: "GET", Path: "/api/v1/auth/me"},
	{Method: "POST", Path: "/api/v1/auth/logout"},
	{Method: "POST", Path: "/api/v1/auth/password"},
	{Method: "POST", Path: "/api/v1/admin/roles", Permissions: []string{"roles:create"}},
	{Method: "PATCH", Path: "/api/v1/admin/roles/:id", Permissions: []string{"roles:update"}},
	{Method: "PATCH", Path: "/api/v1/admin/roles/:id/default", Permissions: []string{"roles:update"}},
	{Method: "PATCH", Path: "/api/v1/admin/roles/:id/active", Permissions: []string{"roles:update"}},
	{Method: "DELETE", Path: "/api/v1/admin/roles/:id", Permissions: []string{"roles:delete"}},
	{Method: "PUT", Path: "/api/v1/admin/roles/:id/permissions/:permissionId", Permissions: []string{"roles:update"}},
	{Method: "DELETE", Path: "/api/v1/admin/roles/:id/permissions/:permissionId", Permissions: []string{"roles:update"}},
	{Method: "POST", Path: "/api/v1/admin/permissions", Permissions: []string{"permissions:create"}},
	{Method: "GET", Path: "/api/v1/admin/permissions", Permissions: []string{"permissions:read"}},
	{Method: "PATCH", Path: "/api/v1/admin/permissions/:id/active", Permissions: []string{"permissions:update"}},
	{Method: "PATCH", Path: "/api/v1/admin/users/:id/active", Permissions: []string{"users:update"}},
	{Method: "POST", Path: "/api/v1/admin/users/:id/unlock", Permissions: []string{"users:update"}},
	{Method: "PUT", Path: "/api/v1/admin/users/:id/roles/:roleId", Permissions: []string{"users:update"}},
	{Method: "DELETE", Path: "/api/v1/admin/users/:id/roles/:roleId", Permissions: []string{"users:update"}},
	{Method: "PUT", Path: "/api/v1/admin/users/:id/permissions/:permissionId", Permissions: []string{"users:update"}},
	{Method: "DELETE", Path: "/api/v1/admin/users/:id/permissions/:permissionId", Permissions: []string{"users:update"}},
}

func (h HandlerSet) Docs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"routes": routeDocs})
}
