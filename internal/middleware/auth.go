package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"workbridge/api/internal/authz"
	"workbridge/api/internal/config"
	"workbridge/api/internal/models"
	"workbridge/api/internal/repository"
	"workbridge/api/internal/security"
)

const (
	principalKey    = "principal"
	accessTokenKey  = "access_token"
	accessClaimsKey = "access_claims"
)

// UserSource loads the principal's user record with roles and permissions
// attached. Implemented by repository.UserRepository.
type UserSource interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

// RevocationChecker answers whether a raw token has been revoked.
// Implemented by revocation.Registry.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Auth is the gateway every protected route passes through. It verifies
// the bearer credential, rejects revoked tokens, enforces lockout and the
// active flag, and attaches a freshly resolved principal to the request.
// Public routes simply do not install this middleware.
//
// A credential store failure is reported as 500, never as 401: "could not
// verify" and "verified and denied" must stay distinguishable.
func Auth(cfg *config.AppConfig, users UserSource, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_or_malformed_credential"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_or_malformed_credential"})
			return
		}

		// Revocation is checked before signature verification so an
		// explicitly invalidated token is dead even while its own
		// expiry would still pass.
		isRevoked, err := revoked.IsRevoked(c.Request.Context(), tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
			return
		}
		if isRevoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "revoked_credential"})
			return
		}

		claims, err := security.ParseAccessToken(tokenStr, cfg.Security.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_credential"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "principal_not_found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
			return
		}

		if user.Locked(time.Now()) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account_locked"})
			return
		}

		if !user.Active {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account_inactive"})
			return
		}

		c.Set(principalKey, authz.Principal{
			UserID:      user.ID,
			Email:       user.Email,
			Permissions: authz.Resolve(user),
		})
		c.Set(accessTokenKey, tokenStr)
		c.Set(accessClaimsKey, *claims)

		c.Next()
	}
}

// PrincipalFrom returns the principal the auth gateway attached to the
// request, if any.
func PrincipalFrom(c *gin.Context) (authz.Principal, bool) {
	val, ok := c.Get(principalKey)
	if !ok {
		return authz.Principal{}, false
	}
	principal, ok := val.(authz.Principal)
	return principal, ok
}

// AccessTokenFrom returns the raw bearer token of the current request.
func AccessTokenFrom(c *gin.Context) (string, bool) {
	val, ok := c.Get(accessTokenKey)
	if !ok {
		return "", false
	}
	token, ok := val.(string)
	return token, ok
}

// AccessClaimsFrom returns the verified claims of the current request.
func AccessClaimsFrom(c *gin.Context) (security.AccessClaims, bool) {
	val, ok := c.Get(accessClaimsKey)
	if !ok {
		return security.AccessClaims{}, false
	}
	claims, ok := val.(security.AccessClaims)
	return claims, ok
}
