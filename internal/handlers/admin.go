package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"workbridge/api/internal/ids"
	"workbridge/api/internal/models"
	"workbridge/api/internal/repository"
)

type createRoleRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h HandlerSet) CreateRole(c *gin.Context) {
	var req createRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := models.Role{
		ID:     ids.New(),
		Code:   req.Code,
		Active: true,
	}
	if err := h.roles.Create(c.Request.Context(), role); err != nil {
		h.log.Error().Err(err).Str("code", req.Code).Msg("role create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": role.ID, "code": role.Code})
}

type renameRoleRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h HandlerSet) RenameRole(c *gin.Context) {
	var req renameRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.roles.UpdateCode(c.Request.Context(), c.Param("id"), req.Code)
	if err != nil {
		h.roleError(c, err, "role rename failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) SetDefaultRole(c *gin.Context) {
	if err := h.roles.SetDefault(c.Request.Context(), c.Param("id")); err != nil {
		h.roleError(c, err, "default role assignment failed")
		return
	}
	c.Status(http.StatusNoContent)
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h HandlerSet) SetRoleActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.roles.SetActive(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
		h.roleError(c, err, "role active toggle failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) DeleteRole(c *gin.Context) {
	if err := h.roles.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.roleError(c, err, "role delete failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) AddRolePermission(c *gin.Context) {
	err := h.roles.AddPermission(c.Request.Context(), c.Param("id"), c.Param("permissionId"))
	if err != nil {
		h.roleError(c, err, "role permission link failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) RemoveRolePermission(c *gin.Context) {
	err := h.roles.RemovePermission(c.Request.Context(), c.Param("id"), c.Param("permissionId"))
	if err != nil {
		h.roleError(c, err, "role permission unlink failed")
		return
	}
	c.Status(http.StatusNoContent)
}

type createPermissionRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h HandlerSet) CreatePermission(c *gin.Context) {
	var req createPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	perm := models.Permission{
		ID:     ids.New(),
		Code:   req.Code,
		Active: true,
	}
	if err := h.perms.Create(c.Request.Context(), perm); err != nil {
		h.log.Error().Err(err).Str("code", req.Code).Msg("permission create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": perm.ID, "code": perm.Code})
}

func (h HandlerSet) ListPermissions(c *gin.Context) {
	perms, err := h.perms.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("permission list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	out := make([]gin.H, 0, len(perms))
	for _, perm := range perms {
		out = append(out, gin.H{"id": perm.ID, "code": perm.Code, "active": perm.Active})
	}
	c.JSON(http.StatusOK, gin.H{"permissions": out})
}

func (h HandlerSet) SetPermissionActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.perms.SetActive(c.Request.Context(), c.Param("id"), *req.Active)
	if err != nil {
		if errors.Is(err, repository.ErrPermissionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "permission_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("permission active toggle failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) SetUserActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.SetActive(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
		h.userError(c, err, "user active toggle failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// UnlockUser clears the failed-attempt counter and lockout timestamp ahead
// of the time-based release.
func (h HandlerSet) UnlockUser(c *gin.Context) {
	if err := h.users.ResetLockout(c.Request.Context(), c.Param("id")); err != nil {
		h.userError(c, err, "user unlock failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) AssignUserRole(c *gin.Context) {
	if err := h.users.AssignRole(c.Request.Context(), c.Param("id"), c.Param("roleId")); err != nil {
		h.userError(c, err, "user role assignment failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) RemoveUserRole(c *gin.Context) {
	if err := h.users.RemoveRole(c.Request.Context(), c.Param("id"), c.Param("roleId")); err != nil {
		h.userError(c, err, "user role removal failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) GrantUserPermission(c *gin.Context) {
	if err := h.users.GrantPermission(c.Request.Context(), c.Param("id"), c.Param("permissionId")); err != nil {
		h.userError(c, err, "user permission grant failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) RemoveUserPermission(c *gin.Context) {
	if err := h.users.RemovePermission(c.Request.Context(), c.Param("id"), c.Param("permissionId")); err != nil {
		h.userError(c, err, "user permission removal failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) roleError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrRoleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "role_not_found"})
	case errors.Is(err, repository.ErrSystemRole):
		c.JSON(http.StatusForbidden, gin.H{"error": "system_role_immutable"})
	default:
		h.log.Error().Err(err).Msg(msg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
	}
}

func (h HandlerSet) userError(c *gin.Context, err error, msg string) {
	if errors.Is(err, repository.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
		return
	}
	h.log.Error().Err(err).Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
}
