package consolidation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sharmila-j/church-checkin-gateway/internal/api"
	"github.com/sharmila-j/church-checkin-gateway/internal/checkin"
	"github.com/sharmila-j/church-checkin-gateway/internal/directory"
	"github.com/sharmila-j/church-checkin-gateway/internal/history"
)

type noopHistory struct{}

func (noopHistory) Record(ctx context.Context, action *history.StationAction) error { return nil }
func (noopHistory) RecordToggle(operator, eventID, personID, personName, direction, outcome string) {
}
func (noopHistory) RecordAsync(operator, eventID, action, outcome string, details map[string]interface{}) {
}
func (noopHistory) GetActions(ctx context.Context, filter history.ActionFilter) (*history.PaginatedActions, error) {
	return &history.PaginatedActions{}, nil
}

func boolPtr(b bool) *bool { return &b }

func setupService(t *testing.T) *Service {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/chms/cache/people", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.DirectoryResponse{Success: true, CachedData: []api.Person{
			{ID: "p1", FirstName: "Gavin", LastName: "Ensley", Email: "gavin@example.com"},
			{ID: "p2", FirstName: "Lena", LastName: "Okafor", Stage: "Consolidated"},
		}})
	})
	mux.HandleFunc("/chms/events", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.EventListResponse{Events: []api.RawEvent{
			{ID: "ev1", Name: "Sunday Service", EventType: "service", Date: "2026-08-30", IsGlobal: boolPtr(true), Status: "open"},
		}})
	})
	mux.HandleFunc("/chms/events/ev1/realtime", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.RealtimeSnapshot{Success: true})
	})
	mux.HandleFunc("/chms/checkin/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("category") != "consolidation" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/chms/consolidations", func(w http.ResponseWriter, r *http.Request) {
		var req api.CreateConsolidationRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(api.RawConsolidation{
			ID: "c-new", PersonID: req.PersonID, Name: req.Name, Email: req.Email,
			Decision: req.Decision, AssignedTo: req.AssignedTo, Status: "active",
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, "", 2*time.Second)
	dirSvc := directory.NewService(client, directory.NewCache())
	engine := checkin.NewEngine(client, dirSvc)
	require.NoError(t, engine.Bootstrap(context.Background()))
	require.NoError(t, engine.SelectEvent("ev1"))

	return NewService(client, engine, dirSvc, noopHistory{})
}

func TestCreateConsolidation(t *testing.T) {
	svc := setupService(t)

	result, err := svc.Create(context.Background(), CreateRequest{
		EventID:  "ev1",
		PersonID: "p1",
		Name:     "Gavin Ensley",
		Decision: "First Time",
	}, "usher1")
	require.NoError(t, err)
	require.False(t, result.Duplicate)
	require.NotNil(t, result.Consolidation)
	require.Equal(t, "c-new", result.Consolidation.ID)
	require.Equal(t, "gavin@example.com", result.Consolidation.Email, "join fills the email from the directory")
}

func TestCreateConsolidationCarriesEmailUpstream(t *testing.T) {
	svc := setupService(t)

	result, err := svc.Create(context.Background(), CreateRequest{
		EventID:  "ev1",
		PersonID: "p1",
		Name:     "Gavin Ensley",
		Email:    "gavin.alt@example.com",
		Decision: "First Time",
	}, "usher1")
	require.NoError(t, err)
	require.NotNil(t, result.Consolidation)
	require.Equal(t, "gavin.alt@example.com", result.Consolidation.Email, "a submitted email reaches the upstream payload")
}

func TestCreateDuplicateGuardByLoadedList(t *testing.T) {
	svc := setupService(t)

	svc.Engine.ApplyRealtime("ev1", &api.RealtimeSnapshot{
		Consolidations: []api.RawConsolidation{
			{ID: "c1", PersonID: "p1", Name: "Gavin Ensley", Decision: "First Time"},
		},
		ConsolidationCount: 1,
	})

	// same person id
	result, err := svc.Create(context.Background(), CreateRequest{
		EventID: "ev1", PersonID: "p1", Name: "G. Ensley", Decision: "Recommitment",
	}, "usher1")
	require.NoError(t, err)
	require.True(t, result.Duplicate)
	require.Nil(t, result.Consolidation)

	// same name, case-insensitive, no person id
	result, err = svc.Create(context.Background(), CreateRequest{
		EventID: "ev1", Name: "  gavin ensley ", Decision: "Recommitment",
	}, "usher1")
	require.NoError(t, err)
	require.True(t, result.Duplicate)

	// force pushes through the guard
	result, err = svc.Create(context.Background(), CreateRequest{
		EventID: "ev1", PersonID: "p1", Name: "Gavin Ensley", Decision: "Recommitment", Force: true,
	}, "usher1")
	require.NoError(t, err)
	require.False(t, result.Duplicate)
	require.NotNil(t, result.Consolidation)
}

func TestRemoveConsolidation(t *testing.T) {
	svc := setupService(t)

	require.NoError(t, svc.Remove(context.Background(), "ev1", "p1", "usher1"))
}

func TestCreateDuplicateGuardByDirectoryStage(t *testing.T) {
	svc := setupService(t)

	result, err := svc.Create(context.Background(), CreateRequest{
		EventID: "ev1", PersonID: "p2", Name: "Lena Okafor", Decision: "First Time",
	}, "usher1")
	require.NoError(t, err)
	require.True(t, result.Duplicate)
	require.Contains(t, result.Message, "already marked consolidated")
}
