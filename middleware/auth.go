package middleware

import (
	"net/http"
	"strings"

	"fixify/utils"

	"github.com/gin-gonic/gin"
)

const (
	// ContextActorID is the gin context key holding the authenticated
	// subject's id.
	ContextActorID = "actorID"
	// ContextRole is the gin context key holding the authenticated
	// subject's role.
	ContextRole = "role"
)

// JWTAuthMiddleware validates the bearer token and stashes the caller's
// identity in the request context.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		id, role, err := utils.ExtractIdentity(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ContextActorID, id)
		c.Set(ContextRole, role)
		c.Next()
	}
}
