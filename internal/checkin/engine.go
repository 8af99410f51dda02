package checkin

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/sharmila-j/church-checkin-gateway/internal/api"
	"github.com/sharmila-j/church-checkin-gateway/internal/directory"
	"github.com/sharmila-j/church-checkin-gateway/utils"
)

var (
	ErrEngineClosed      = errors.New("engine is shut down")
	ErrNoEventSelected   = errors.New("no event selected")
	ErrUnknownPerson     = errors.New("person not found in directory")
	ErrEventNotFound     = errors.New("event not found")
	ErrToggleInFlight    = errors.New("a toggle for this person is already in flight")
	ErrUnknownProjection = errors.New("unknown projection")
	errUpstreamRejected  = errors.New("upstream rejected the check-in")
)

// Engine is the reconciliation core: it owns the joined event state
// and the realtime snapshot for the selected event, and runs the
// optimistic check-in toggle. The browser original had one logical
// writer; here concurrent handlers and pollers share the state, so a
// mutex stands in for the event loop. Replacement semantics are
// unchanged: polls and reconciles install whole slices, last write
// wins.
type Engine struct {
	client *api.Client
	dirSvc *directory.Service

	mu         sync.Mutex
	events     []Event
	selectedID string
	rt         realtimeState

	// busy is the in-flight marker set, keyed by person id. A second
	// toggle for a busy person is suppressed; toggles for different
	// people proceed concurrently.
	busy map[string]struct{}

	closed bool

	// swappable priority-pinning rules, see views.go
	scorer  PriorityScorer
	matcher PriorityMatcher

	// view state for the four projections (main grid + three modals)
	gridView         ViewState
	presentView      ViewState
	newPeopleView    ViewState
	consolidatedView ViewState
}

func NewEngine(client *api.Client, dirSvc *directory.Service) *Engine {
	return &Engine{
		client:           client,
		dirSvc:           dirSvc,
		busy:             make(map[string]struct{}),
		scorer:           DefaultPriorityScorer,
		matcher:          DefaultPriorityMatcher,
		gridView:         NewViewState(),
		presentView:      NewViewState(),
		newPeopleView:    NewViewState(),
		consolidatedView: NewViewState(),
	}
}

// Directory exposes the shared person cache.
func (e *Engine) Directory() *directory.Cache {
	return e.dirSvc.Cache
}

// ===========================
// 🚀 Bootstrap

// Bootstrap fetches the person directory and the event list in
// parallel, then cross-references them once to populate initial state.
func (e *Engine) Bootstrap(ctx context.Context) error {
	var (
		wg        sync.WaitGroup
		dirErr    error
		eventsErr error
		raws      []api.RawEvent
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		dirErr = e.dirSvc.Refresh(ctx)
	}()
	go func() {
		defer wg.Done()
		raws, eventsErr = e.client.FetchEvents(ctx)
	}()
	wg.Wait()

	if dirErr != nil {
		return dirErr
	}
	if eventsErr != nil {
		utils.UpstreamErrorsTotal.WithLabelValues("fetch_events").Inc()
		return eventsErr
	}

	joined := JoinEvents(raws, e.dirSvc.Cache)

	e.mu.Lock()
	e.events = joined
	e.mu.Unlock()

	log.Printf("✅ Engine bootstrapped: %d people, %d events", e.dirSvc.Cache.Len(), len(joined))
	return nil
}

// RefreshEvents re-fetches and re-joins the event list, replacing the
// whole slice. The current selection and realtime state survive.
func (e *Engine) RefreshEvents(ctx context.Context) error {
	raws, err := e.client.FetchEvents(ctx)
	if err != nil {
		utils.UpstreamErrorsTotal.WithLabelValues("fetch_events").Inc()
		return err
	}
	joined := JoinEvents(raws, e.dirSvc.Cache)

	e.mu.Lock()
	if !e.closed {
		e.events = joined
	}
	e.mu.Unlock()
	return nil
}

// ===========================
// 📆 Event access & selection

// Events returns a copy of the joined event list.
func (e *Engine) Events() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Event, len(e.events))
	copy(out, e.events)
	return out
}

// EventByID finds one joined event.
func (e *Engine) EventByID(id string) (Event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ev := range e.events {
		if ev.ID == id {
			return ev, true
		}
	}
	return Event{}, false
}

// PatchEventStatus updates one event's lifecycle fields in place.
// Used by the close/reopen action handlers to reflect the result
// without waiting for the next event-list poll.
func (e *Engine) PatchEventStatus(id, status, closedBy, closedAt string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.events {
		if e.events[i].ID == id {
			e.events[i].Status = status
			e.events[i].ClosedBy = closedBy
			e.events[i].ClosedAt = closedAt
			return
		}
	}
}

// SelectEvent makes an event current and primes empty realtime state
// for it; the first poll or reconcile fills it.
func (e *Engine) SelectEvent(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEngineClosed
	}

	found := false
	for _, ev := range e.events {
		if ev.ID == id {
			found = true
			break
		}
	}
	if !found {
		return ErrEventNotFound
	}

	if e.selectedID != id {
		e.selectedID = id
		e.rt = realtimeState{eventID: id}
	}
	return nil
}

// ClearSelection suspends polling and drops the realtime slice.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selectedID = ""
	e.rt = realtimeState{}
}

// SelectedEventID returns the current selection, empty when none.
func (e *Engine) SelectedEventID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedID
}

// ===========================
// 📡 Realtime snapshot

// ApplyRealtime joins and installs an authoritative snapshot for an
// event, replacing the whole realtime slice. Snapshots for an event
// that is no longer selected, or arriving after shutdown, are
// discarded rather than applied.
func (e *Engine) ApplyRealtime(eventID string, snap *api.RealtimeSnapshot) {
	present := make([]Entry, 0, len(snap.PresentAttendees))
	for _, a := range snap.PresentAttendees {
		present = append(present, JoinEntry(eventID, a, e.dirSvc.Cache))
	}
	newPeople := make([]Entry, 0, len(snap.NewPeople))
	for _, n := range snap.NewPeople {
		joined := JoinEntry(eventID, n, e.dirSvc.Cache)
		joined.IsNew = true
		newPeople = append(newPeople, joined)
	}
	consolidations := make([]Consolidation, 0, len(snap.Consolidations))
	for _, c := range snap.Consolidations {
		consolidations = append(consolidations, JoinConsolidation(eventID, c, e.dirSvc.Cache))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.selectedID != eventID {
		return
	}
	e.rt = realtimeState{
		eventID:        eventID,
		present:        present,
		presentCount:   snap.PresentCount,
		newPeople:      newPeople,
		newCount:       snap.NewPeopleCount,
		consolidations: consolidations,
		consolidated:   snap.ConsolidationCount,
	}
}

// RefreshRealtime fetches and installs the snapshot for the currently
// selected event. No-op without a selection.
func (e *Engine) RefreshRealtime(ctx context.Context) error {
	eventID := e.SelectedEventID()
	if eventID == "" {
		return nil
	}
	snap, err := e.client.FetchRealtime(ctx, eventID)
	if err != nil {
		utils.UpstreamErrorsTotal.WithLabelValues("fetch_realtime").Inc()
		return err
	}
	e.ApplyRealtime(eventID, snap)
	return nil
}

// ===========================
// 🔁 Optimistic toggle

// ToggleResult reports what one toggle did.
type ToggleResult struct {
	PersonID   string `json:"person_id"`
	PersonName string `json:"person_name"`
	NowPresent bool   `json:"now_present"`
	// AlreadyCheckedIn marks the soft-warning case: the upstream had
	// the person present already, which confirms the optimistic state.
	AlreadyCheckedIn bool `json:"already_checked_in,omitempty"`
	// Suppressed means a toggle for this person was already in flight
	// and this one was dropped.
	Suppressed bool `json:"suppressed,omitempty"`
}

// Toggle flips one person between Absent and Present for the selected
// event: optimistic local flip first, then the upstream call, exact
// rollback on failure, and a non-blocking reconcile fetch regardless
// of outcome. The busy marker is cleared in a defer so the control
// re-enables even when the upstream call panics or times out.
func (e *Engine) Toggle(ctx context.Context, personID string) (*ToggleResult, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrEngineClosed
	}
	eventID := e.selectedID
	if eventID == "" {
		e.mu.Unlock()
		return nil, ErrNoEventSelected
	}
	if _, inFlight := e.busy[personID]; inFlight {
		e.mu.Unlock()
		return &ToggleResult{PersonID: personID, Suppressed: true}, nil
	}

	person, ok := e.dirSvc.Cache.ByID(personID)
	if !ok {
		e.mu.Unlock()
		return nil, ErrUnknownPerson
	}

	e.busy[personID] = struct{}{}

	// Step 1-2: derive wasPresent and apply the opposite state before
	// any network call resolves.
	wasPresent, priorEntry := e.findPresentLocked(personID)
	if wasPresent {
		e.removePresentLocked(personID)
	} else {
		e.addPresentLocked(entryFromPerson(person))
	}
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.busy, personID)
		e.mu.Unlock()

		// Step 6: non-blocking reconcile against server truth. Runs
		// regardless of outcome, so a rolled-back failure still heals
		// against whatever the server holds. Own context so a cancelled
		// request context cannot skip it.
		go func() {
			if err := e.RefreshRealtime(context.Background()); err != nil {
				log.Printf("⚠️ Post-toggle reconcile failed for event %s: %v", eventID, err)
			}
		}()
	}()

	result := &ToggleResult{
		PersonID:   personID,
		PersonName: person.FullName(),
		NowPresent: !wasPresent,
	}

	// Step 3: the corresponding upstream call.
	var callErr error
	if wasPresent {
		callErr = e.client.RemoveFromCheckin(ctx, eventID, personID, "attendee")
	} else {
		res, err := e.client.CheckIn(ctx, api.CheckInRequest{
			EventID: eventID,
			Person:  rawEntryFromEntry(entryFromPerson(person)),
		})
		switch {
		case err != nil:
			callErr = err
		case res.AlreadyCheckedIn:
			// Step 4: success-equivalent, the optimistic state already
			// reflects presence.
			result.AlreadyCheckedIn = true
		case !res.Success:
			callErr = errUpstreamRejected
		}
	}

	if callErr != nil {
		// Step 5: revert the optimistic change exactly.
		e.mu.Lock()
		if !e.closed && e.selectedID == eventID {
			if wasPresent {
				e.addPresentLocked(priorEntry)
			} else {
				e.removePresentLocked(personID)
			}
		}
		e.mu.Unlock()

		utils.RollbacksTotal.Inc()
		utils.CheckinsTotal.WithLabelValues(direction(wasPresent), "failure").Inc()
		return result, callErr
	}

	utils.CheckinsTotal.WithLabelValues(direction(wasPresent), "success").Inc()
	return result, nil
}

func direction(wasPresent bool) string {
	if wasPresent {
		return "check_out"
	}
	return "check_in"
}

// findPresentLocked reports presence and returns the current entry so
// a failed check-out can restore it exactly.
func (e *Engine) findPresentLocked(personID string) (bool, Entry) {
	for _, entry := range e.rt.present {
		if entry.PersonID == personID {
			return true, entry
		}
	}
	return false, Entry{}
}

func (e *Engine) addPresentLocked(entry Entry) {
	for _, existing := range e.rt.present {
		if existing.PersonID == entry.PersonID {
			return // never duplicate a present entry
		}
	}
	if entry.ID == "" {
		entry.ID = syntheticID(e.selectedID, rawEntryFromEntry(entry))
	}
	e.rt.present = append(e.rt.present, entry)
	e.rt.presentCount++
}

func (e *Engine) removePresentLocked(personID string) {
	for i, entry := range e.rt.present {
		if entry.PersonID == personID {
			e.rt.present = append(e.rt.present[:i], e.rt.present[i+1:]...)
			e.rt.presentCount--
			return
		}
	}
}

// IsPresent reports whether a person is in the selected event's
// present list.
func (e *Engine) IsPresent(personID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	present, _ := e.findPresentLocked(personID)
	return present
}

// PresentCount returns the selected event's running present count.
func (e *Engine) PresentCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rt.presentCount
}

// Realtime returns copies of the selected event's realtime lists.
func (e *Engine) Realtime() (present, newPeople []Entry, consolidations []Consolidation) {
	e.mu.Lock()
	defer e.mu.Unlock()
	present = append([]Entry(nil), e.rt.present...)
	newPeople = append([]Entry(nil), e.rt.newPeople...)
	consolidations = append([]Consolidation(nil), e.rt.consolidations...)
	return
}

// ===========================
// 🧹 Cascades & teardown

// CascadeRemovePerson drops a deleted person from the directory cache,
// from every event's derived lists and from the realtime slice in one
// state update, so the record cannot reappear before the next poll.
func (e *Engine) CascadeRemovePerson(personID string) {
	e.dirSvc.Cache.Remove(personID)

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.events {
		e.events[i].Attendees = dropEntry(e.events[i].Attendees, personID)
		e.events[i].NewPeople = dropEntry(e.events[i].NewPeople, personID)
		e.events[i].Consolidations = dropConsolidation(e.events[i].Consolidations, personID)
		e.events[i].AttendanceCount = len(e.events[i].Attendees)
		e.events[i].NewPeopleCount = len(e.events[i].NewPeople)
		e.events[i].ConsolidatedCount = len(e.events[i].Consolidations)
	}

	before := len(e.rt.present)
	e.rt.present = dropEntry(e.rt.present, personID)
	e.rt.presentCount -= before - len(e.rt.present)
	e.rt.newPeople = dropEntry(e.rt.newPeople, personID)
	e.rt.consolidations = dropConsolidation(e.rt.consolidations, personID)
}

func dropEntry(entries []Entry, personID string) []Entry {
	out := entries[:0]
	for _, entry := range entries {
		if entry.PersonID != personID {
			out = append(out, entry)
		}
	}
	return out
}

func dropConsolidation(cs []Consolidation, personID string) []Consolidation {
	out := cs[:0]
	for _, c := range cs {
		if c.PersonID != personID {
			out = append(out, c)
		}
	}
	return out
}

// Shutdown marks the engine closed; async results resolving afterwards
// are discarded instead of applied.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.selectedID = ""
	e.rt = realtimeState{}
}
