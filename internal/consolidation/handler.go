package consolidation

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
// 🤝 Create Consolidation - POST /consolidations
func (h *Handler) CreateConsolidation(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	operator := middleware.GetOperatorName(c)
	result, err := h.Service.Create(c.Request.Context(), req, operator)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": api.Detail(err)})
		return
	}

	if result.Duplicate {
		// 409 so the station shows the confirm dialog; a retry with
		// force=true goes through.
		c.JSON(http.StatusConflict, gin.H{"duplicate": true, "message": result.Message})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "consolidation recorded", "consolidation": result.Consolidation})
}

// ===========================
// 🤝 Remove Consolidation - DELETE /consolidations/:person_id
func (h *Handler) RemoveConsolidation(c *gin.Context) {
	personID := c.Param("person_id")
	eventID := c.Query("event_id")
	if eventID == "" {
		eventID = h.Service.Engine.SelectedEventID()
	}
	if eventID == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "no event selected"})
		return
	}

	operator := middleware.GetOperatorName(c)
	if err := h.Service.Remove(c.Request.Context(), eventID, personID, operator); err != nil {
		status := http.StatusBadGateway
		if api.IsNotFound(err) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": api.Detail(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "consolidation removed"})
}

// ===========================
// 🤝 List Consolidations - GET /consolidations
func (h *Handler) ListConsolidations(c *gin.Context) {
	list := h.Service.List()
	c.JSON(http.StatusOK, gin.H{"consolidations": list, "count": len(list)})
}
