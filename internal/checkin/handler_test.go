package checkin

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type toggleRecord struct {
	PersonID  string
	Direction string
	Outcome   string
}

type stubRecorder struct {
	records []toggleRecord
}

func (s *stubRecorder) RecordToggle(operator, eventID, personID, personName, direction, outcome string) {
	s.records = append(s.records, toggleRecord{PersonID: personID, Direction: direction, Outcome: outcome})
}

func newHandlerRouter(e *Engine, rec ActionRecorder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(e, rec)
	r := gin.New()
	r.POST("/checkin/toggle/:person_id", h.Toggle)
	r.PUT("/checkin/views/:projection", h.UpdateViewState)
	r.GET("/checkin/views/:projection", h.GetViewState)
	r.POST("/checkin/events/:id/select", h.SelectEvent)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestToggleEndpointStatusMapping(t *testing.T) {
	fake := newFakeUpstream()
	e := newTestEngine(t, fake)
	rec := &stubRecorder{}
	r := newHandlerRouter(e, rec)

	// no selection yet
	w := doJSON(r, http.MethodPost, "/checkin/toggle/p1", "")
	require.Equal(t, http.StatusConflict, w.Code)

	require.NoError(t, e.SelectEvent("ev1"))

	// unknown person
	w = doJSON(r, http.MethodPost, "/checkin/toggle/nobody", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	// success, recorded as a check-in
	w = doJSON(r, http.MethodPost, "/checkin/toggle/p1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, rec.records, 1)
	require.Equal(t, toggleRecord{PersonID: "p1", Direction: "check_in", Outcome: "success"}, rec.records[0])

	e.Shutdown()
	w = doJSON(r, http.MethodPost, "/checkin/toggle/p1", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestToggleEndpointReportsSuppressed(t *testing.T) {
	fake := newFakeUpstream()
	fake.enteredCheckin = make(chan struct{})
	fake.releaseCheckin = make(chan struct{})
	e := newTestEngine(t, fake)
	r := newHandlerRouter(e, nil)
	require.NoError(t, e.SelectEvent("ev1"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		doJSON(r, http.MethodPost, "/checkin/toggle/p1", "")
	}()
	<-fake.enteredCheckin

	w := doJSON(r, http.MethodPost, "/checkin/toggle/p1", "")
	require.Equal(t, http.StatusAccepted, w.Code)

	close(fake.releaseCheckin)
	<-done
}

func TestViewStateEndpoints(t *testing.T) {
	fake := newFakeUpstream()
	e := newTestEngine(t, fake)
	r := newHandlerRouter(e, nil)

	// page forward, then search: the page must reset
	w := doJSON(r, http.MethodPut, "/checkin/views/grid", `{"page":3}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPut, "/checkin/views/grid", `{"search":"gav"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"page":0`)
	require.Contains(t, w.Body.String(), `"search":"gav"`)

	// sort change keeps the page
	w = doJSON(r, http.MethodPut, "/checkin/views/grid", `{"page":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodPut, "/checkin/views/grid", `{"sort_column":"leader_at_12","sort_asc":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"page":2`)
	require.Contains(t, w.Body.String(), `"sort_column":"leader_at_12"`)

	w = doJSON(r, http.MethodGet, "/checkin/views/unknown", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}
