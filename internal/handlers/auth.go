package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"workbridge/api/internal/middleware"
	"workbridge/api/internal/service"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type authResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        userResponse `json:"user"`
}

type userResponse struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Active bool   `json:"active"`
}

func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email_taken"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sendAuthResponse(c, result)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountLocked):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "account_locked"})
		case errors.Is(err, service.ErrAccountInactive):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "account_inactive"})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		default:
			h.log.Error().Err(err).Msg("login failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		}
		return
	}

	sendAuthResponse(c, result)
}

func (h HandlerSet) Logout(c *gin.Context) {
	token, ok := middleware.AccessTokenFrom(c)
	claims, ok2 := middleware.AccessClaimsFrom(c)
	if !ok || !ok2 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing_or_malformed_credential"})
		return
	}

	if err := h.authService.Logout(c.Request.Context(), token, claims.ExpiresAt.Time); err != nil {
		h.log.Error().Err(err).Msg("logout failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	c.Status(http.StatusNoContent)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

func (h HandlerSet) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	principal, ok := middleware.PrincipalFrom(c)
	token, ok2 := middleware.AccessTokenFrom(c)
	claims, ok3 := middleware.AccessClaimsFrom(c)
	if !ok || !ok2 || !ok3 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing_or_malformed_credential"})
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), service.ChangePasswordInput{
		UserID:          principal.UserID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		Token:           token,
		TokenExpiresAt:  claims.ExpiresAt.Time,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
			return
		}
		h.log.Error().Err(err).Msg("password change failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Me returns the principal resolved for this request. Permissions here are
// always freshly computed; an administrative change shows up on the very
// next call.
func (h HandlerSet) Me(c *gin.Context) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing_or_malformed_credential"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          principal.UserID,
		"email":       principal.Email,
		"permissions": principal.Permissions.Codes(),
	})
}

func sendAuthResponse(c *gin.Context, result service.AuthResult) {
	c.JSON(http.StatusOK, authResponse{
		AccessToken: result.AccessToken,
		ExpiresAt:   result.ExpiresAt,
		User: userResponse{
			ID:     result.User.ID,
			Email:  result.User.Email,
			Active: result.User.Active,
		},
	})
}
