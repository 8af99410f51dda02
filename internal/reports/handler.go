package reports

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

var validTypes = map[string]bool{
	ReportTypeRoster:         true,
	ReportTypeAttendance:     true,
	ReportTypeNewPeople:      true,
	ReportTypeConsolidations: true,
	ReportTypeStationActions: true,
	ReportTypeEventSummary:   true,
}

// ===========================
// 📊 Download Report - GET /reports/:type?format=&event_id=
func (h *Handler) DownloadReport(c *gin.Context) {
	reportType := c.Param("type")
	if !validTypes[reportType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown report type: " + reportType})
		return
	}

	format := c.DefaultQuery("format", FormatExcel)
	eventID := c.Query("event_id")

	data, filename, contentType, err := h.Service.Generate(c.Request.Context(), reportType, format, eventID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}
