package checkin

import (
	"time"

	"github.com/sharmila-j/church-checkin-gateway/internal/api"
)

// ============================
// 🔷 Joined view models
// These are the denormalized rows the stations render. Sub-entry
// snapshot data always wins over the live directory record; the join
// only fills fields the snapshot left empty.

// Entry is a denormalized attendance or new-person row.
type Entry struct {
	ID       string `json:"id"`
	PersonID string `json:"person_id,omitempty"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`

	LeaderAt1    string `json:"leader_at_1,omitempty"`
	LeaderAt12   string `json:"leader_at_12,omitempty"`
	LeaderAt144  string `json:"leader_at_144,omitempty"`
	LeaderAt1728 string `json:"leader_at_1728,omitempty"`

	IsNew bool `json:"is_new,omitempty"`
}

// FullName joins the name parts for display and sorting.
func (e Entry) FullName() string {
	if e.FirstName == "" {
		return e.LastName
	}
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// Consolidation is a denormalized follow-up decision row.
type Consolidation struct {
	ID       string `json:"id"`
	PersonID string `json:"person_id,omitempty"`

	Name  string `json:"name"`
	Email string `json:"email,omitempty"`

	Decision      string `json:"decision"`
	AssignedTo    string `json:"assigned_to,omitempty"`
	AssignedEmail string `json:"assigned_email,omitempty"`
	Status        string `json:"status,omitempty"`
	Notes         string `json:"notes,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// Event is a joined event with its three denormalized lists and
// summary counts.
type Event struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	EventType   string `json:"event_type"`
	RawDate     string `json:"date,omitempty"`
	IsTicketed  bool   `json:"is_ticketed,omitempty"`
	Location    string `json:"location,omitempty"`
	Leader      string `json:"leader,omitempty"`
	Description string `json:"description,omitempty"`

	Status   string `json:"status"`
	ClosedBy string `json:"closed_by,omitempty"`
	ClosedAt string `json:"closed_at,omitempty"`

	// Date is the parsed scheduling date; DateValid is false when the
	// raw value was missing or unparseable, which keeps the event out
	// of today's-open selection but still visible historically.
	Date      time.Time `json:"-"`
	DateValid bool      `json:"-"`

	Attendees      []Entry         `json:"attendees"`
	NewPeople      []Entry         `json:"new_people"`
	Consolidations []Consolidation `json:"consolidations"`

	AttendanceCount   int `json:"attendance_count"`
	NewPeopleCount    int `json:"new_people_count"`
	ConsolidatedCount int `json:"consolidated_count"`
}

// EventStatusOpen and friends are the lifecycle labels the upstream
// uses. Close is idempotent; reopen returns the event to incomplete.
const (
	EventStatusOpen       = "open"
	EventStatusComplete   = "complete"
	EventStatusIncomplete = "incomplete"
)

// realtimeState is the authoritative per-event snapshot installed by
// polls and reconciles, plus the optimistic adjustments the toggle
// controller layers on top. Replaced wholesale on every poll.
type realtimeState struct {
	eventID        string
	present        []Entry
	presentCount   int
	newPeople      []Entry
	newCount       int
	consolidations []Consolidation
	consolidated   int
}

// entryFromPerson builds the check-in snapshot recorded for a person
// at toggle time.
func entryFromPerson(p api.Person) Entry {
	return Entry{
		PersonID:     p.ID,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        p.Email,
		Phone:        p.Phone,
		LeaderAt1:    p.LeaderAt1,
		LeaderAt12:   p.LeaderAt12,
		LeaderAt144:  p.LeaderAt144,
		LeaderAt1728: p.LeaderAt1728,
	}
}

func rawEntryFromEntry(e Entry) api.RawEntry {
	return api.RawEntry{
		ID:           e.ID,
		PersonID:     e.PersonID,
		FirstName:    e.FirstName,
		LastName:     e.LastName,
		Email:        e.Email,
		Phone:        e.Phone,
		LeaderAt1:    e.LeaderAt1,
		LeaderAt12:   e.LeaderAt12,
		LeaderAt144:  e.LeaderAt144,
		LeaderAt1728: e.LeaderAt1728,
		IsNew:        e.IsNew,
	}
}
