package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequirePermissions declares the permission codes a route needs. ALL
// listed codes must be present in the principal's effective set; the
// rejection names the missing ones. An empty list only requires that a
// principal is attached.
func RequirePermissions(codes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_or_malformed_credential"})
			return
		}

		if missing := principal.Permissions.Missing(codes); len(missing) > 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "insufficient_permission",
				"missing": missing,
			})
			return
		}

		c.Next()
	}
}
