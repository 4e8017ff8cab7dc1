package middleware

import (
	"context"
	"net/http"
	"strings"

	"yamdb/internal/permission"

	"github.com/gin-gonic/gin"
)

// IdentityKey is the gin context key holding the caller's permission.Identity.
const IdentityKey = "identity"

// Identifier resolves a bearer token into an identity; service.AuthService implements it.
type Identifier interface {
	Identify(ctx context.Context, token string) (permission.Identity, error)
}

// Identify resolves the caller for every request. No Authorization header means
// an anonymous caller; a header that does not verify is rejected with 401.
func Identify(auth Identifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(IdentityKey, permission.Anonymous())
			c.Next()
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format", "code": "not_authenticated"})
			return
		}

		identity, err := auth.Identify(c.Request.Context(), parts[1])
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "code": "not_authenticated"})
			return
		}

		c.Set(IdentityKey, identity)
		c.Set("userID", identity.UserID)
		c.Set("role", identity.Role.String())
		c.Next()
	}
}

// IdentityFrom returns the identity set by Identify, anonymous when absent.
func IdentityFrom(c *gin.Context) permission.Identity {
	if v, ok := c.Get(IdentityKey); ok {
		if id, ok := v.(permission.Identity); ok {
			return id
		}
	}
	return permission.Anonymous()
}
