package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carhive/api/internal/authz"
	"carhive/api/internal/models"
)

// RequireRoles gates a route on the authenticated identity's role.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated"})
			return
		}

		if !authz.Allowed(id, roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "forbidden"})
			return
		}

		c.Next()
	}
}
