package checkin

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sharmila-j/church-checkin-gateway/internal/api"
	"github.com/sharmila-j/church-checkin-gateway/middleware"
)

// ActionRecorder receives the station actions worth keeping locally.
// The history service implements it; a nil recorder disables logging.
type ActionRecorder interface {
	RecordToggle(operator, eventID, personID, personName, direction, outcome string)
}

type Handler struct {
	Engine   *Engine
	Recorder ActionRecorder
}

func NewHandler(engine *Engine, recorder ActionRecorder) *Handler {
	return &Handler{Engine: engine, Recorder: recorder}
}

// ===========================
// 📆 List Events - GET /checkin/events
func (h *Handler) ListEvents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"events": h.Engine.Events()})
}

// ===========================
// 📆 Today's Open Events - GET /checkin/events/today
func (h *Handler) TodaysEvents(c *gin.Context) {
	events := TodaysOpenEvents(h.Engine.Events(), time.Now())
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

// ===========================
// 🎯 Select Event - POST /checkin/events/:id/select
func (h *Handler) SelectEvent(c *gin.Context) {
	id := c.Param("id")
	if err := h.Engine.SelectEvent(id); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, ErrEventNotFound):
			status = http.StatusNotFound
		case errors.Is(err, ErrEngineClosed):
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	// Prime the realtime slice right away instead of waiting up to a
	// full poll interval for the first snapshot.
	if err := h.Engine.RefreshRealtime(c.Request.Context()); err != nil {
		c.JSON(http.StatusOK, gin.H{"message": "event selected, first snapshot pending", "event_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "event selected", "event_id": id})
}

// ===========================
// 🚪 Clear Selection - DELETE /checkin/selection
func (h *Handler) ClearSelection(c *gin.Context) {
	h.Engine.ClearSelection()
	c.JSON(http.StatusOK, gin.H{"message": "selection cleared"})
}

// ===========================
// 📋 Main Grid - GET /checkin/grid
func (h *Handler) MainGrid(c *gin.Context) {
	c.JSON(http.StatusOK, h.Engine.MainGrid())
}

// ===========================
// ✅ Present Attendees - GET /checkin/present
func (h *Handler) PresentList(c *gin.Context) {
	c.JSON(http.StatusOK, h.Engine.PresentList())
}

// ===========================
// 🌱 New People - GET /checkin/new-people
func (h *Handler) NewPeopleList(c *gin.Context) {
	c.JSON(http.StatusOK, h.Engine.NewPeopleList())
}

// ===========================
// 🤝 Consolidated People - GET /checkin/consolidated
func (h *Handler) ConsolidatedList(c *gin.Context) {
	c.JSON(http.StatusOK, h.Engine.ConsolidatedList())
}

// ===========================
// 🔁 Toggle Check-in - POST /checkin/toggle/:person_id
func (h *Handler) Toggle(c *gin.Context) {
	personID := c.Param("person_id")
	operator := middleware.GetOperatorName(c)

	result, err := h.Engine.Toggle(c.Request.Context(), personID)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, ErrNoEventSelected):
			status = http.StatusConflict
		case errors.Is(err, ErrUnknownPerson):
			status = http.StatusNotFound
		case errors.Is(err, ErrEngineClosed):
			status = http.StatusServiceUnavailable
		}
		if h.Recorder != nil && result != nil {
			h.Recorder.RecordToggle(operator, h.Engine.SelectedEventID(), personID, result.PersonName, direction(!result.NowPresent), "failure")
		}
		c.JSON(status, gin.H{"error": api.Detail(err)})
		return
	}

	if result.Suppressed {
		c.JSON(http.StatusAccepted, gin.H{"message": "toggle already in flight", "result": result})
		return
	}

	if h.Recorder != nil {
		h.Recorder.RecordToggle(operator, h.Engine.SelectedEventID(), personID, result.PersonName, direction(!result.NowPresent), "success")
	}

	if result.AlreadyCheckedIn {
		c.JSON(http.StatusOK, gin.H{"message": result.PersonName + " was already checked in", "result": result})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// ===========================
// 🔎 Update View State - PUT /checkin/views/:projection

type viewStateRequest struct {
	Search     *string `json:"search"`
	SortColumn *string `json:"sort_column"`
	SortAsc    *bool   `json:"sort_asc"`
	Page       *int    `json:"page"`
	PageSize   *int    `json:"page_size"`
}

func (h *Handler) UpdateViewState(c *gin.Context) {
	projection := c.Param("projection")

	var req viewStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	err := h.Engine.UpdateView(projection, func(vs *ViewState) {
		if req.Search != nil {
			vs.SetSearch(*req.Search)
		}
		if req.SortColumn != nil {
			asc := vs.SortAsc
			if req.SortAsc != nil {
				asc = *req.SortAsc
			}
			vs.SetSort(*req.SortColumn, asc)
		} else if req.SortAsc != nil {
			vs.SetSort(vs.SortColumn, *req.SortAsc)
		}
		if req.PageSize != nil {
			vs.SetPageSize(*req.PageSize)
		}
		if req.Page != nil {
			vs.SetPage(*req.Page)
		}
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	state, _ := h.Engine.ViewSnapshot(projection)
	c.JSON(http.StatusOK, gin.H{"view": state})
}

// ===========================
// 🔎 Get View State - GET /checkin/views/:projection
func (h *Handler) GetViewState(c *gin.Context) {
	state, err := h.Engine.ViewSnapshot(c.Param("projection"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": state})
}
