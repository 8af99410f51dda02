package events

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharmila-j/church-checkin-gateway/internal/api"
	"github.com/sharmila-j/church-checkin-gateway/middleware"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// ===========================
// 🔒 Close Event - POST /events/:id/close
func (h *Handler) CloseEvent(c *gin.Context) {
	operator := middleware.GetOperatorName(c)

	result, err := h.Service.Close(c.Request.Context(), c.Param("id"), operator)
	if err != nil {
		status := http.StatusBadGateway
		if api.IsNotFound(err) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": api.Detail(err)})
		return
	}

	if result.AlreadyClosed {
		c.JSON(http.StatusOK, gin.H{"message": "event was already closed by " + result.ClosedBy, "result": result})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "event closed", "result": result})
}

// ===========================
// 🔓 Reopen Event - POST /events/:id/reopen
func (h *Handler) ReopenEvent(c *gin.Context) {
	operator := middleware.GetOperatorName(c)

	result, err := h.Service.Reopen(c.Request.Context(), c.Param("id"), operator)
	if err != nil {
		status := http.StatusBadGateway
		if api.IsNotFound(err) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": api.Detail(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "event reopened", "result": result})
}
