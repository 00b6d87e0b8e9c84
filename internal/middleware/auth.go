package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carhive/api/internal/authz"
	"carhive/api/internal/config"
	"carhive/api/internal/models"
	"carhive/api/internal/security"
)

const identityKey = "identity"

// Auth resolves the session credential from the Authorization header or the
// session cookie and puts the verified identity on the context. Verification
// is signature-only; no store lookup happens here.
func Auth(cfg *config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c, cfg.Security.CookieName)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "missing_token"})
			return
		}

		claims, err := security.ParseSessionToken(tokenStr, cfg.Security.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid_token"})
			return
		}

		role := models.UserRole(claims.Role)
		if !role.Valid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid_token"})
			return
		}

		c.Set(identityKey, authz.Identity{UserID: claims.UserID, Role: role})
		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}

// IdentityFrom returns the identity set by Auth, if any.
func IdentityFrom(c *gin.Context) (authz.Identity, bool) {
	val, exists := c.Get(identityKey)
	if !exists {
		return authz.Identity{}, false
	}
	id, ok := val.(authz.Identity)
	return id, ok
}
