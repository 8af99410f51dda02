package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sharmila-j/church-checkin-gateway/internal/api"
	"github.com/sharmila-j/church-checkin-gateway/internal/checkin"
	"github.com/sharmila-j/church-checkin-gateway/internal/directory"
	"github.com/sharmila-j/church-checkin-gateway/internal/history"
)

type recordedAction struct {
	Operator string
	EventID  string
	Action   string
	Outcome  string
}

// stubHistory captures recorded actions in memory.
type stubHistory struct {
	mu      sync.Mutex
	actions []recordedAction
}

func (s *stubHistory) Record(ctx context.Context, action *history.StationAction) error { return nil }

func (s *stubHistory) RecordToggle(operator, eventID, personID, personName, direction, outcome string) {
}

func (s *stubHistory) RecordAsync(operator, eventID, action, outcome string, details map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, recordedAction{operator, eventID, action, outcome})
}

func (s *stubHistory) GetActions(ctx context.Context, filter history.ActionFilter) (*history.PaginatedActions, error) {
	return &history.PaginatedActions{}, nil
}

func (s *stubHistory) last(t *testing.T) recordedAction {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.actions)
	return s.actions[len(s.actions)-1]
}

func boolPtr(b bool) *bool { return &b }

func setupService(t *testing.T, statusResult api.StatusToggleResult) (*Service, *checkin.Engine, *stubHistory) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/chms/cache/people", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.DirectoryResponse{Success: true})
	})
	mux.HandleFunc("/chms/events", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.EventListResponse{Events: []api.RawEvent{
			{ID: "ev1", Name: "Sunday Service", EventType: "service", Date: "2026-08-30", IsGlobal: boolPtr(true), Status: "open"},
		}})
	})
	mux.HandleFunc("/chms/events/ev1/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(statusResult)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, "", 2*time.Second)
	engine := checkin.NewEngine(client, directory.NewService(client, directory.NewCache()))
	require.NoError(t, engine.Bootstrap(context.Background()))

	hist := &stubHistory{}
	return NewService(client, engine, hist, ""), engine, hist
}

func TestCloseAttributesOperator(t *testing.T) {
	svc, engine, hist := setupService(t, api.StatusToggleResult{
		Success: true,
		Status:  checkin.EventStatusComplete,
	})

	result, err := svc.Close(context.Background(), "ev1", "admin1")
	require.NoError(t, err)
	require.False(t, result.AlreadyClosed)
	require.Equal(t, "admin1", result.ClosedBy, "a fresh close is attributed to the local operator")

	ev, ok := engine.EventByID("ev1")
	require.True(t, ok)
	require.Equal(t, checkin.EventStatusComplete, ev.Status)
	require.Equal(t, "admin1", ev.ClosedBy)

	rec := hist.last(t)
	require.Equal(t, history.ActionEventClose, rec.Action)
	require.Equal(t, "success", rec.Outcome)
}

func TestCloseIsIdempotentAndKeepsOriginalCloser(t *testing.T) {
	svc, engine, _ := setupService(t, api.StatusToggleResult{
		Success:       true,
		Status:        checkin.EventStatusComplete,
		AlreadyClosed: true,
		ClosedBy:      "otheradmin",
		ClosedAt:      "2026-08-30T20:00:00Z",
	})

	result, err := svc.Close(context.Background(), "ev1", "admin1")
	require.NoError(t, err)
	require.True(t, result.AlreadyClosed)
	require.Equal(t, "otheradmin", result.ClosedBy, "the first closer's attribution survives")

	ev, _ := engine.EventByID("ev1")
	require.Equal(t, "otheradmin", ev.ClosedBy)
}

func TestReopenClearsClosingMetadata(t *testing.T) {
	svc, engine, hist := setupService(t, api.StatusToggleResult{
		Success: true,
		Status:  checkin.EventStatusIncomplete,
	})

	engine.PatchEventStatus("ev1", checkin.EventStatusComplete, "admin1", "2026-08-30T20:00:00Z")

	result, err := svc.Reopen(context.Background(), "ev1", "admin2")
	require.NoError(t, err)
	require.Equal(t, checkin.EventStatusIncomplete, result.Status)

	ev, _ := engine.EventByID("ev1")
	require.Equal(t, checkin.EventStatusIncomplete, ev.Status)
	require.Empty(t, ev.ClosedBy)
	require.Empty(t, ev.ClosedAt)

	rec := hist.last(t)
	require.Equal(t, history.ActionEventReopen, rec.Action)
}
