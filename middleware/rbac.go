package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Station roles. Admins manage people and event lifecycle; ushers run
// the check-in grid.
const (
	RoleAdmin = "admin"
	RoleUsher = "usher"
)

// RBACMiddleware allows the request through when the operator holds
// one of the listed roles.
func RBACMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		op, ok := GetOperator(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		for _, role := range allowedRoles {
			if op.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "unauthorized"})
	}
}

// RequireAdmin guards person mutations, event lifecycle changes and
// report downloads.
func RequireAdmin() gin.HandlerFunc {
	return RBACMiddleware(RoleAdmin)
}
