package notify

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{Service: s}
}

// ===========================
// 🔔 List Notifications - GET /notifications?limit=&unread=
func (h *Handler) ListNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	unreadOnly := c.Query("unread") == "true"

	notifications, err := h.Service.List(c.Request.Context(), limit, unreadOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch notifications"})
		return
	}

	unread, _ := h.Service.UnreadCount(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "unread_count": unread})
}

// ===========================
// ✔️ Mark Read - POST /notifications/:id/read
func (h *Handler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification ID"})
		return
	}

	if err := h.Service.MarkRead(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notification read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification marked read"})
}

// ===========================
// ✔️ Mark All Read - POST /notifications/read-all
func (h *Handler) MarkAllRead(c *gin.Context) {
	if err := h.Service.MarkAllRead(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notifications read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "all notifications marked read"})
}
