package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharmila-j/church-checkin-gateway/internal/api"
	"github.com/sharmila-j/church-checkin-gateway/internal/auditlog"
	"github.com/sharmila-j/church-checkin-gateway/middleware"
)

type Handler struct {
	Service Service
	Audit   auditlog.Service
}

func NewHandler(s Service, audit auditlog.Service) *Handler {
	return &Handler{Service: s, Audit: audit}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type unlockRequest struct {
	PIN string `json:"pin" binding:"required"`
}

// ===========================
// 🔐 Login - POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	ip := middleware.GetIPFromContext(c)
	operator, tokens, err := h.Service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		_ = h.Audit.LogAction(c.Request.Context(), "", "", "login", map[string]interface{}{"username": req.Username}, ip, "failure")
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": api.Detail(err)})
		return
	}

	_ = h.Audit.LogAction(c.Request.Context(), operator.Username, "", "login", nil, ip, "success")
	c.JSON(http.StatusOK, gin.H{"user": operator, "tokens": tokens})
}

// ===========================
// ♻️ Refresh - POST /auth/refresh
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	access, err := h.Service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"accessToken": access})
}

// ===========================
// 🚪 Logout - POST /auth/logout
func (h *Handler) Logout(c *gin.Context) {
	operator := middleware.GetOperatorName(c)
	if operator == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	if err := h.Service.Logout(c.Request.Context(), operator); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}

	ip := middleware.GetIPFromContext(c)
	_ = h.Audit.LogAction(c.Request.Context(), operator, "", "logout", nil, ip, "success")
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// ===========================
// 🔓 Unlock Station - POST /auth/unlock
func (h *Handler) UnlockStation(c *gin.Context) {
	var req unlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	ip := middleware.GetIPFromContext(c)
	operator := middleware.GetOperatorName(c)

	if err := h.Service.UnlockStation(req.PIN); err != nil {
		_ = h.Audit.LogAction(c.Request.Context(), operator, "", "station_unlock", nil, ip, "failure")
		if errors.Is(err, ErrPINNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid station PIN"})
		return
	}

	_ = h.Audit.LogAction(c.Request.Context(), operator, "", "station_unlock", nil, ip, "success")
	c.JSON(http.StatusOK, gin.H{"message": "station unlocked"})
}

// ===========================
// 👤 Profile - GET /auth/profile
func (h *Handler) Profile(c *gin.Context) {
	operator := middleware.GetOperatorName(c)
	if operator == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	profile, err := h.Service.Profile(c.Request.Context(), operator)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not cached, sign in again"})
		return
	}

	c.JSON(http.StatusOK, profile)
}
