package api

import "time"

// ============================
// 🔷 Person (directory entry)
// The upstream caches the whole directory and serves it as one
// snapshot; leader fields are the discipleship chain and may be empty.
type Person struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	LeaderAt1    string `json:"leader_at_1,omitempty"`
	LeaderAt12   string `json:"leader_at_12,omitempty"`
	LeaderAt144  string `json:"leader_at_144,omitempty"`
	LeaderAt1728 string `json:"leader_at_1728,omitempty"`

	Gender    string `json:"gender,omitempty"`
	Address   string `json:"address,omitempty"`
	BirthDate string `json:"birth_date,omitempty"`
	InvitedBy string `json:"invited_by,omitempty"`
	Stage     string `json:"stage,omitempty"` // Win / Consolidate / Disciple / Send
}

// FullName joins the name parts for display and sorting.
func (p Person) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// DirectoryResponse is the upstream people-cache snapshot.
type DirectoryResponse struct {
	Success    bool     `json:"success"`
	CachedData []Person `json:"cached_data"`
}

// ============================
// 🔷 Raw event payloads
// Events arrive with their three sub-lists embedded. Fields recorded on
// a sub-entry are the snapshot taken at action time and take precedence
// over the live directory record during the join.

type RawEntry struct {
	ID       string `json:"id,omitempty"`
	PersonID string `json:"person_id,omitempty"`

	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`

	LeaderAt1    string `json:"leader_at_1,omitempty"`
	LeaderAt12   string `json:"leader_at_12,omitempty"`
	LeaderAt144  string `json:"leader_at_144,omitempty"`
	LeaderAt1728 string `json:"leader_at_1728,omitempty"`

	IsNew bool `json:"is_new,omitempty"`
}

type RawConsolidation struct {
	ID            string `json:"id,omitempty"`
	PersonID      string `json:"person_id,omitempty"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Decision      string `json:"decision"` // First Time / Recommitment
	AssignedTo    string `json:"assigned_to,omitempty"`
	AssignedEmail string `json:"assigned_email,omitempty"`
	Status        string `json:"status,omitempty"` // active / completed
	Notes         string `json:"notes,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

type RawEvent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	EventType   string `json:"event_type"`
	Date        string `json:"date"`
	IsGlobal    *bool  `json:"is_global,omitempty"`
	IsTicketed  bool   `json:"is_ticketed,omitempty"`
	Location    string `json:"location,omitempty"`
	Leader      string `json:"leader,omitempty"`
	Description string `json:"description,omitempty"`

	Status   string `json:"status,omitempty"` // open / complete / cancelled / did-not-meet
	ClosedBy string `json:"closed_by,omitempty"`
	ClosedAt string `json:"closed_at,omitempty"`

	Attendees      []RawEntry         `json:"attendees,omitempty"`
	NewPeople      []RawEntry         `json:"new_people,omitempty"`
	Consolidations []RawConsolidation `json:"consolidations,omitempty"`
}

// EventListResponse is the upstream event-list payload.
type EventListResponse struct {
	Events []RawEvent `json:"events"`
}

// RealtimeSnapshot is the authoritative per-event check-in state,
// polled while an event is selected.
type RealtimeSnapshot struct {
	Success bool `json:"success"`

	PresentAttendees []RawEntry `json:"present_attendees"`
	PresentCount     int        `json:"present_count"`

	NewPeople      []RawEntry `json:"new_people"`
	NewPeopleCount int        `json:"new_people_count"`

	Consolidations     []RawConsolidation `json:"consolidations"`
	ConsolidationCount int                `json:"consolidation_count"`
}

// ============================
// 🟡 Write payloads

// CheckInRequest carries the person snapshot recorded at check-in time.
type CheckInRequest struct {
	EventID string   `json:"event_id"`
	Person  RawEntry `json:"person"`
}

// CheckInResult reports a check-in outcome. AlreadyCheckedIn is the
// soft-warning case and is treated as success by the engine.
type CheckInResult struct {
	Success          bool   `json:"success"`
	Message          string `json:"message,omitempty"`
	AlreadyCheckedIn bool   `json:"already_checked_in,omitempty"`
}

// CreateConsolidationRequest creates a follow-up assignment.
type CreateConsolidationRequest struct {
	EventID       string `json:"event_id"`
	PersonID      string `json:"person_id"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	Decision      string `json:"decision"`
	AssignedTo    string `json:"assigned_to"`
	AssignedEmail string `json:"assigned_email,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// StatusToggleResult reports an event close/reopen. A repeated close is
// idempotent upstream: AlreadyClosed is set and the original closing
// metadata is returned unchanged.
type StatusToggleResult struct {
	Success       bool   `json:"success"`
	Status        string `json:"status"`
	AlreadyClosed bool   `json:"already_closed,omitempty"`
	ClosedBy      string `json:"closed_by,omitempty"`
	ClosedAt      string `json:"closed_at,omitempty"`
}

// UpstreamUser is the operator record returned by the upstream login.
type UpstreamUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// LoginResponse wraps a successful upstream authentication.
type LoginResponse struct {
	Success bool         `json:"success"`
	User    UpstreamUser `json:"user"`
}

// EventDateLayout is the wire format for event scheduling dates.
const EventDateLayout = "2006-01-02T15:04:05Z07:00"

// ParseEventDate parses an event's scheduling date, accepting the
// RFC3339 wire format and the date-only form older records carry.
func ParseEventDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}
