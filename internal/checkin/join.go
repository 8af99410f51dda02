package checkin

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sharmila-j/church-checkin-gateway/internal/api"
	"github.com/sharmila-j/church-checkin-gateway/internal/directory"
)

// syntheticNS namespaces the deterministic ids minted for source
// records that arrive without one. Deterministic (uuid v5) so the same
// record keeps the same id across re-joins and list keys stay stable.
var syntheticNS = uuid.MustParse("7b1f63a4-90c2-4a1d-9a6e-2f4f8c1d5b20")

func syntheticID(eventID string, e api.RawEntry) string {
	seed := eventID + "|" + e.PersonID + "|" + strings.ToLower(e.Email) + "|" + e.FirstName + "|" + e.LastName
	return uuid.NewSHA1(syntheticNS, []byte(seed)).String()
}

func syntheticConsolidationID(eventID string, c api.RawConsolidation) string {
	seed := eventID + "|consolidation|" + c.PersonID + "|" + c.Name + "|" + c.Decision
	return uuid.NewSHA1(syntheticNS, []byte(seed)).String()
}

// isCellVariant reports whether the event type belongs to the
// small-group workflow, which a check-in station never shows.
func isCellVariant(eventType string) bool {
	return strings.Contains(strings.ToLower(eventType), "cell")
}

// includeEvent applies the join's event filter: cell variants are out,
// and the global flag must be explicitly true.
func includeEvent(raw api.RawEvent) bool {
	if isCellVariant(raw.EventType) {
		return false
	}
	return raw.IsGlobal != nil && *raw.IsGlobal
}

// fillIfEmpty returns snapshot when set, otherwise the directory value.
// Snapshot data recorded at action time is authoritative over the
// current directory state.
func fillIfEmpty(snapshot, fromDirectory string) string {
	if snapshot != "" {
		return snapshot
	}
	return fromDirectory
}

// JoinEntry denormalizes one attendance/new-person record against the
// directory: resolve by id first, email fallback, then fill only the
// fields the record is missing.
func JoinEntry(eventID string, raw api.RawEntry, dir *directory.Cache) Entry {
	e := Entry{
		ID:           raw.ID,
		PersonID:     raw.PersonID,
		FirstName:    raw.FirstName,
		LastName:     raw.LastName,
		Email:        raw.Email,
		Phone:        raw.Phone,
		LeaderAt1:    raw.LeaderAt1,
		LeaderAt12:   raw.LeaderAt12,
		LeaderAt144:  raw.LeaderAt144,
		LeaderAt1728: raw.LeaderAt1728,
		IsNew:        raw.IsNew,
	}

	if p, ok := dir.Resolve(raw.PersonID, raw.Email); ok {
		if e.PersonID == "" {
			e.PersonID = p.ID
		}
		e.FirstName = fillIfEmpty(e.FirstName, p.FirstName)
		e.LastName = fillIfEmpty(e.LastName, p.LastName)
		e.Email = fillIfEmpty(e.Email, p.Email)
		e.Phone = fillIfEmpty(e.Phone, p.Phone)
		e.LeaderAt1 = fillIfEmpty(e.LeaderAt1, p.LeaderAt1)
		e.LeaderAt12 = fillIfEmpty(e.LeaderAt12, p.LeaderAt12)
		e.LeaderAt144 = fillIfEmpty(e.LeaderAt144, p.LeaderAt144)
		e.LeaderAt1728 = fillIfEmpty(e.LeaderAt1728, p.LeaderAt1728)
	}

	if e.ID == "" {
		e.ID = syntheticID(eventID, raw)
	}
	return e
}

// JoinConsolidation denormalizes one consolidation record, resolving
// the person and, best-effort, the assigned leader's email from the
// directory when the record does not carry it.
func JoinConsolidation(eventID string, raw api.RawConsolidation, dir *directory.Cache) Consolidation {
	c := Consolidation{
		ID:            raw.ID,
		PersonID:      raw.PersonID,
		Name:          raw.Name,
		Email:         raw.Email,
		Decision:      raw.Decision,
		AssignedTo:    raw.AssignedTo,
		AssignedEmail: raw.AssignedEmail,
		Status:        raw.Status,
		Notes:         raw.Notes,
		CreatedAt:     raw.CreatedAt,
	}

	if p, ok := dir.Resolve(raw.PersonID, raw.Email); ok {
		if c.PersonID == "" {
			c.PersonID = p.ID
		}
		c.Name = fillIfEmpty(c.Name, p.FullName())
		c.Email = fillIfEmpty(c.Email, p.Email)
	}

	if c.AssignedEmail == "" && c.AssignedTo != "" {
		c.AssignedEmail = ResolveLeaderEmail(dir, c.AssignedTo)
	}

	if c.ID == "" {
		c.ID = syntheticConsolidationID(eventID, raw)
	}
	return c
}

// ResolveLeaderEmail scans the directory for a person whose full name
// matches the leader's display name. Best-effort only; an empty result
// just means the assignment email cannot be delivered.
func ResolveLeaderEmail(dir *directory.Cache, leaderName string) string {
	want := strings.ToLower(strings.TrimSpace(leaderName))
	if want == "" {
		return ""
	}
	for _, p := range dir.All() {
		if strings.ToLower(p.FullName()) == want {
			return p.Email
		}
	}
	return ""
}

// JoinEvent denormalizes one raw event: all three sub-lists joined
// against the directory, summary counts filled, missing fields padded
// with safe defaults rather than failing the view.
func JoinEvent(raw api.RawEvent, dir *directory.Cache) Event {
	ev := Event{
		ID:          raw.ID,
		Name:        raw.Name,
		EventType:   raw.EventType,
		RawDate:     raw.Date,
		IsTicketed:  raw.IsTicketed,
		Location:    raw.Location,
		Leader:      raw.Leader,
		Description: raw.Description,
		Status:      raw.Status,
		ClosedBy:    raw.ClosedBy,
		ClosedAt:    raw.ClosedAt,
	}

	if ev.Name == "" {
		ev.Name = "Unnamed Event"
	}
	if ev.Status == "" {
		ev.Status = EventStatusOpen
	}
	ev.Date, ev.DateValid = api.ParseEventDate(raw.Date)

	ev.Attendees = make([]Entry, 0, len(raw.Attendees))
	for _, a := range raw.Attendees {
		ev.Attendees = append(ev.Attendees, JoinEntry(raw.ID, a, dir))
	}

	ev.NewPeople = make([]Entry, 0, len(raw.NewPeople))
	for _, n := range raw.NewPeople {
		joined := JoinEntry(raw.ID, n, dir)
		joined.IsNew = true
		ev.NewPeople = append(ev.NewPeople, joined)
	}

	ev.Consolidations = make([]Consolidation, 0, len(raw.Consolidations))
	for _, c := range raw.Consolidations {
		ev.Consolidations = append(ev.Consolidations, JoinConsolidation(raw.ID, c, dir))
	}

	ev.AttendanceCount = len(ev.Attendees)
	ev.NewPeopleCount = len(ev.NewPeople)
	ev.ConsolidatedCount = len(ev.Consolidations)
	return ev
}

// JoinEvents runs the full join over a raw event list. Cell-variant
// events and events not explicitly flagged global belong to a
// different workflow and are excluded entirely. This is the single
// join path used by bootstrap, manual refresh and post-mutation
// refresh alike, so the field-precedence rule is applied identically
// everywhere.
func JoinEvents(raws []api.RawEvent, dir *directory.Cache) []Event {
	events := make([]Event, 0, len(raws))
	for _, raw := range raws {
		if !includeEvent(raw) {
			continue
		}
		events = append(events, JoinEvent(raw, dir))
	}
	return events
}

// TodaysOpenEvents selects the open events scheduled for today.
// Events with a missing or unparseable date never qualify.
func TodaysOpenEvents(events []Event, now time.Time) []Event {
	var todays []Event
	y, m, d := now.Date()
	for _, ev := range events {
		if !ev.DateValid {
			continue
		}
		ey, em, ed := ev.Date.Date()
		if ey == y && em == m && ed == d && ev.Status == EventStatusOpen {
			todays = append(todays, ev)
		}
	}
	return todays
}
