package checkin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sharmila-j/church-checkin-gateway/internal/api"
	"github.com/sharmila-j/church-checkin-gateway/internal/directory"
)

func directoryService() *directory.Service {
	return directory.NewService(nil, directory.NewCache())
}

// fakeUpstream is a minimal ChMS backend: a directory, one global
// event and a check-in set the realtime endpoint reflects back.
type fakeUpstream struct {
	mu        sync.Mutex
	people    []api.Person
	events    []api.RawEvent
	checkedIn map[string]api.RawEntry

	peopleStatus     int // non-zero forces this status on the directory fetch
	checkinStatus    int // non-zero forces this status on check-in
	removeStatus     int // non-zero forces this status on removal
	alreadyCheckedIn bool
	realtimeFetches  int

	// enteredCheckin/releaseCheckin let a test hold a check-in call
	// open to exercise the busy marker.
	enteredCheckin chan struct{}
	releaseCheckin chan struct{}
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		people: []api.Person{
			{ID: "p1", FirstName: "Gavin", LastName: "Ensley", Email: "gavin@example.com", Phone: "555-0101"},
			{ID: "p2", FirstName: "Lena", LastName: "Okafor", Email: "lena@example.com"},
		},
		events: []api.RawEvent{
			{ID: "ev1", Name: "Sunday Service", EventType: "service", Date: "2026-08-30", IsGlobal: boolPtr(true), Status: "open"},
		},
		checkedIn: make(map[string]api.RawEntry),
	}
}

func (f *fakeUpstream) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/chms/cache/people", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.peopleStatus != 0 {
			w.WriteHeader(f.peopleStatus)
			return
		}
		json.NewEncoder(w).Encode(api.DirectoryResponse{Success: true, CachedData: f.people})
	})

	mux.HandleFunc("/chms/events", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		json.NewEncoder(w).Encode(api.EventListResponse{Events: f.events})
	})

	mux.HandleFunc("/chms/events/ev1/realtime", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.realtimeFetches++
		snap := api.RealtimeSnapshot{Success: true}
		for _, entry := range f.checkedIn {
			snap.PresentAttendees = append(snap.PresentAttendees, entry)
		}
		snap.PresentCount = len(snap.PresentAttendees)
		json.NewEncoder(w).Encode(snap)
	})

	mux.HandleFunc("/chms/checkin", func(w http.ResponseWriter, r *http.Request) {
		if f.enteredCheckin != nil {
			f.enteredCheckin <- struct{}{}
			<-f.releaseCheckin
		}
		if f.checkinStatus != 0 {
			w.WriteHeader(f.checkinStatus)
			json.NewEncoder(w).Encode(map[string]string{"detail": "rejected"})
			return
		}

		var req api.CheckInRequest
		json.NewDecoder(r.Body).Decode(&req)

		f.mu.Lock()
		defer f.mu.Unlock()
		if f.alreadyCheckedIn {
			json.NewEncoder(w).Encode(api.CheckInResult{Success: true, Message: "Already checked in"})
			return
		}
		f.checkedIn[req.Person.PersonID] = req.Person
		json.NewEncoder(w).Encode(api.CheckInResult{Success: true})
	})

	mux.HandleFunc("/chms/checkin/", func(w http.ResponseWriter, r *http.Request) {
		if f.removeStatus != 0 {
			w.WriteHeader(f.removeStatus)
			json.NewEncoder(w).Encode(map[string]string{"detail": "rejected"})
			return
		}
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/chms/checkin/"), "/")
		f.mu.Lock()
		defer f.mu.Unlock()
		if len(parts) == 2 {
			delete(f.checkedIn, parts[1])
		}
		w.WriteHeader(http.StatusOK)
	})

	return mux
}

func (f *fakeUpstream) realtimeFetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.realtimeFetches
}

func newTestEngine(t *testing.T, fake *fakeUpstream) *Engine {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, "", 2*time.Second)
	dirSvc := directory.NewService(client, directory.NewCache())
	e := NewEngine(client, dirSvc)
	require.NoError(t, e.Bootstrap(context.Background()))
	return e
}

func TestToggleOptimisticCheckIn(t *testing.T) {
	fake := newFakeUpstream()
	e := newTestEngine(t, fake)
	require.NoError(t, e.SelectEvent("ev1"))

	result, err := e.Toggle(context.Background(), "p1")
	require.NoError(t, err)
	require.True(t, result.NowPresent)
	require.Equal(t, "Gavin Ensley", result.PersonName)
	require.True(t, e.IsPresent("p1"))
	require.Equal(t, 1, e.PresentCount())

	// toggling back removes the entry
	result, err = e.Toggle(context.Background(), "p1")
	require.NoError(t, err)
	require.False(t, result.NowPresent)
}

func TestToggleRollsBackFailedCheckIn(t *testing.T) {
	fake := newFakeUpstream()
	fake.checkinStatus = http.StatusInternalServerError
	e := newTestEngine(t, fake)
	require.NoError(t, e.SelectEvent("ev1"))

	_, err := e.Toggle(context.Background(), "p1")
	require.Error(t, err)
	require.False(t, e.IsPresent("p1"), "optimistic add must be rolled back")
	require.Equal(t, 0, e.PresentCount())
}

func TestToggleReconcilesAfterFailure(t *testing.T) {
	fake := newFakeUpstream()
	fake.checkinStatus = http.StatusInternalServerError
	e := newTestEngine(t, fake)
	require.NoError(t, e.SelectEvent("ev1"))
	before := fake.realtimeFetchCount()

	_, err := e.Toggle(context.Background(), "p1")
	require.Error(t, err)

	require.Eventually(t, func() bool {
		return fake.realtimeFetchCount() > before
	}, 2*time.Second, 10*time.Millisecond, "a failed toggle must still refetch server truth")
}

func TestToggleRollsBackFailedCheckOutExactly(t *testing.T) {
	fake := newFakeUpstream()
	fake.removeStatus = http.StatusInternalServerError
	e := newTestEngine(t, fake)
	require.NoError(t, e.SelectEvent("ev1"))

	// the present entry carries snapshot fields the directory lacks
	prior := api.RawEntry{ID: "srv-1", PersonID: "p1", FirstName: "Gav", Phone: "555-7777"}
	e.ApplyRealtime("ev1", &api.RealtimeSnapshot{
		PresentAttendees: []api.RawEntry{prior},
		PresentCount:     1,
	})
	require.True(t, e.IsPresent("p1"))

	_, err := e.Toggle(context.Background(), "p1")
	require.Error(t, err)
	require.True(t, e.IsPresent("p1"), "failed check-out must restore presence")

	present, _, _ := e.Realtime()
	require.Len(t, present, 1)
	require.Equal(t, "srv-1", present[0].ID, "the prior entry is restored, not rebuilt")
	require.Equal(t, "Gav", present[0].FirstName)
	require.Equal(t, "555-7777", present[0].Phone)
}

func TestToggleAlreadyCheckedInIsSuccess(t *testing.T) {
	fake := newFakeUpstream()
	fake.alreadyCheckedIn = true
	fake.checkedIn["p1"] = api.RawEntry{PersonID: "p1", FirstName: "Gavin", LastName: "Ensley"}
	e := newTestEngine(t, fake)
	require.NoError(t, e.SelectEvent("ev1"))

	result, err := e.Toggle(context.Background(), "p1")
	require.NoError(t, err)
	require.True(t, result.NowPresent)
	require.True(t, result.AlreadyCheckedIn)
	require.True(t, e.IsPresent("p1"))
}

func TestToggleSuppressesSecondInFlight(t *testing.T) {
	fake := newFakeUpstream()
	fake.enteredCheckin = make(chan struct{})
	fake.releaseCheckin = make(chan struct{})
	e := newTestEngine(t, fake)
	require.NoError(t, e.SelectEvent("ev1"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Toggle(context.Background(), "p1")
	}()

	<-fake.enteredCheckin

	result, err := e.Toggle(context.Background(), "p1")
	require.NoError(t, err)
	require.True(t, result.Suppressed)

	close(fake.releaseCheckin)
	<-done
	require.True(t, e.IsPresent("p1"))
}

func TestToggleErrorCases(t *testing.T) {
	fake := newFakeUpstream()
	e := newTestEngine(t, fake)

	_, err := e.Toggle(context.Background(), "p1")
	require.ErrorIs(t, err, ErrNoEventSelected)

	require.NoError(t, e.SelectEvent("ev1"))
	_, err = e.Toggle(context.Background(), "nobody")
	require.ErrorIs(t, err, ErrUnknownPerson)

	e.Shutdown()
	_, err = e.Toggle(context.Background(), "p1")
	require.ErrorIs(t, err, ErrEngineClosed)
}

func TestBootstrapRecoversOnRetry(t *testing.T) {
	fake := newFakeUpstream()
	fake.peopleStatus = http.StatusServiceUnavailable
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, "", 2*time.Second)
	dirSvc := directory.NewService(client, directory.NewCache())
	e := NewEngine(client, dirSvc)
	require.Error(t, e.Bootstrap(context.Background()))

	fake.mu.Lock()
	fake.peopleStatus = 0
	fake.mu.Unlock()

	require.NoError(t, e.Bootstrap(context.Background()), "a later attempt recovers the initial load")
	_, ok := e.Directory().ByID("p1")
	require.True(t, ok)
	require.NoError(t, e.SelectEvent("ev1"))
}

func TestSelectEventAndClearSelection(t *testing.T) {
	fake := newFakeUpstream()
	e := newTestEngine(t, fake)

	require.ErrorIs(t, e.SelectEvent("missing"), ErrEventNotFound)

	require.NoError(t, e.SelectEvent("ev1"))
	require.Equal(t, "ev1", e.SelectedEventID())

	e.ClearSelection()
	require.Empty(t, e.SelectedEventID())
	present, _, _ := e.Realtime()
	require.Empty(t, present)
}

func TestApplyRealtimeDiscardsStaleSnapshots(t *testing.T) {
	fake := newFakeUpstream()
	e := newTestEngine(t, fake)
	require.NoError(t, e.SelectEvent("ev1"))

	snap := &api.RealtimeSnapshot{
		PresentAttendees: []api.RawEntry{{PersonID: "p1"}},
		PresentCount:     1,
	}

	// snapshot for an event that is not selected
	e.ApplyRealtime("other", snap)
	require.Equal(t, 0, e.PresentCount())

	e.ApplyRealtime("ev1", snap)
	require.Equal(t, 1, e.PresentCount())

	// snapshots resolving after shutdown are dropped
	e.Shutdown()
	e.ApplyRealtime("ev1", snap)
	require.Equal(t, 0, e.PresentCount())
}

func TestCascadeRemovePerson(t *testing.T) {
	fake := newFakeUpstream()
	fake.events[0].Attendees = []api.RawEntry{{PersonID: "p1"}, {PersonID: "p2"}}
	fake.events[0].Consolidations = []api.RawConsolidation{{PersonID: "p1", Name: "Gavin Ensley", Decision: "First Time"}}
	e := newTestEngine(t, fake)
	require.NoError(t, e.SelectEvent("ev1"))

	e.ApplyRealtime("ev1", &api.RealtimeSnapshot{
		PresentAttendees: []api.RawEntry{{PersonID: "p1"}, {PersonID: "p2"}},
		PresentCount:     2,
	})

	e.CascadeRemovePerson("p1")

	_, ok := e.Directory().ByID("p1")
	require.False(t, ok)
	require.False(t, e.IsPresent("p1"))
	require.True(t, e.IsPresent("p2"))
	require.Equal(t, 1, e.PresentCount())

	ev, found := e.EventByID("ev1")
	require.True(t, found)
	require.Len(t, ev.Attendees, 1)
	require.Equal(t, 1, ev.AttendanceCount)
	require.Empty(t, ev.Consolidations)
	require.Equal(t, 0, ev.ConsolidatedCount)
}

func TestPatchEventStatus(t *testing.T) {
	fake := newFakeUpstream()
	e := newTestEngine(t, fake)

	e.PatchEventStatus("ev1", EventStatusComplete, "admin", "2026-08-30T12:00:00Z")

	ev, ok := e.EventByID("ev1")
	require.True(t, ok)
	require.Equal(t, EventStatusComplete, ev.Status)
	require.Equal(t, "admin", ev.ClosedBy)
}
