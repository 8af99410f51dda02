package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sharmila-j/church-checkin-gateway/config"
)

// Operator identifies the signed-in station operator for the request.
type Operator struct {
	Username string
	Role     string
}

// AuthMiddleware validates the gateway-issued access token and puts
// the operator identity on the request context.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWTAccessSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			return
		}

		username, _ := claims["username"].(string)
		if username == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "username missing in token"})
			return
		}
		role, _ := claims["role"].(string)
		if role == "" {
			role = RoleUsher
		}

		c.Set("operator", Operator{Username: username, Role: role})
		c.Set("claims", claims)
		c.Next()
	}
}

// GetOperator retrieves the operator identity set by AuthMiddleware.
func GetOperator(c *gin.Context) (Operator, bool) {
	raw, exists := c.Get("operator")
	if !exists {
		return Operator{}, false
	}
	op, ok := raw.(Operator)
	return op, ok
}

// GetOperatorName returns the operator username, empty when the route
// runs without authentication.
func GetOperatorName(c *gin.Context) string {
	op, _ := GetOperator(c)
	return op.Username
}
