package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/sharmila-j/church-checkin-gateway/config"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func authTestRouter(cfg *config.Config, guards ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(cfg)}, guards...)
	handlers = append(handlers, func(c *gin.Context) {
		op, _ := GetOperator(c)
		c.JSON(http.StatusOK, gin.H{"username": op.Username, "role": op.Role})
	})
	r.GET("/guarded", handlers...)
	return r
}

func doAuthRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{JWTAccessSecret: "test-secret"}
	r := authTestRouter(cfg)

	exp := time.Now().Add(time.Hour).Unix()

	t.Run("missing header", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, doAuthRequest(r, "").Code)
	})

	t.Run("not a bearer token", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, doAuthRequest(r, "Basic abc").Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, "other-secret", jwt.MapClaims{"username": "usher1", "exp": exp})
		require.Equal(t, http.StatusUnauthorized, doAuthRequest(r, "Bearer "+token).Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, "test-secret", jwt.MapClaims{"username": "usher1", "exp": time.Now().Add(-time.Hour).Unix()})
		require.Equal(t, http.StatusUnauthorized, doAuthRequest(r, "Bearer "+token).Code)
	})

	t.Run("missing username claim", func(t *testing.T) {
		token := signToken(t, "test-secret", jwt.MapClaims{"exp": exp})
		require.Equal(t, http.StatusUnauthorized, doAuthRequest(r, "Bearer "+token).Code)
	})

	t.Run("valid token defaults role to usher", func(t *testing.T) {
		token := signToken(t, "test-secret", jwt.MapClaims{"username": "usher1", "exp": exp})
		w := doAuthRequest(r, "Bearer "+token)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"role":"usher"`)
	})
}

func TestRBACMiddleware(t *testing.T) {
	cfg := &config.Config{JWTAccessSecret: "test-secret"}
	r := authTestRouter(cfg, RequireAdmin())

	exp := time.Now().Add(time.Hour).Unix()

	usherToken := signToken(t, "test-secret", jwt.MapClaims{"username": "usher1", "role": RoleUsher, "exp": exp})
	require.Equal(t, http.StatusForbidden, doAuthRequest(r, "Bearer "+usherToken).Code)

	adminToken := signToken(t, "test-secret", jwt.MapClaims{"username": "admin1", "role": RoleAdmin, "exp": exp})
	require.Equal(t, http.StatusOK, doAuthRequest(r, "Bearer "+adminToken).Code)
}
