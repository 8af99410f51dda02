package people

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
// 👥 List People - GET /people
func (h *Handler) ListPeople(c *gin.Context) {
	people := h.Service.List()
	c.JSON(http.StatusOK, gin.H{"people": people, "count": len(people)})
}

// ===========================
// 🔍 Get Person - GET /people/:id
func (h *Handler) GetPerson(c *gin.Context) {
	person, ok := h.Service.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "person not found"})
		return
	}
	c.JSON(http.StatusOK, person)
}

// ===========================
// ➕ Create Person - POST /people
func (h *Handler) CreatePerson(c *gin.Context) {
	var req PersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	operator := middleware.GetOperatorName(c)
	created, err := h.Service.Create(c.Request.Context(), req, operator)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": api.Detail(err)})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "person created successfully", "person": created})
}

// ===========================
// 🛠 Update Person - PUT /people/:id
func (h *Handler) UpdatePerson(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.Service.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "person not found"})
		return
	}

	var req PersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	operator := middleware.GetOperatorName(c)
	updated, err := h.Service.Update(c.Request.Context(), id, req, operator)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": api.Detail(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "person updated successfully", "person": updated})
}

// ===========================
// ❌ Delete Person - DELETE /people/:id
func (h *Handler) DeletePerson(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.Service.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "person not found"})
		return
	}

	operator := middleware.GetOperatorName(c)
	if err := h.Service.Delete(c.Request.Context(), id, operator); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": api.Detail(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "person deleted successfully"})
}
