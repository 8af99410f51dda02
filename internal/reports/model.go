package reports

import (
	"time"
)

// Report types the station can download.
const (
	ReportTypeRoster         = "roster"
	ReportTypeAttendance     = "attendance"
	ReportTypeNewPeople      = "new_people"
	ReportTypeConsolidations = "consolidations"
	ReportTypeStationActions = "station_actions"
	ReportTypeEventSummary   = "event_summary"
)

// Export formats.
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

// RosterReportRow is one directory person on the roster export.
type RosterReportRow struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	LeaderAt12   string
	LeaderAt144  string
	LeaderAt1728 string
	Stage        string
}

// AttendanceReportRow is one present attendee or new person.
type AttendanceReportRow struct {
	FullName string
	Email    string
	Phone    string
	LeaderAt12 string
	IsNew    bool
}

// ConsolidationReportRow is one follow-up decision.
type ConsolidationReportRow struct {
	Name       string
	Decision   string
	AssignedTo string
	Status     string
	CreatedAt  string
}

// StationActionReportRow is one history entry.
type StationActionReportRow struct {
	ID         uint
	Operator   string
	EventID    string
	PersonName string
	Action     string
	Outcome    string
	Timestamp  time.Time
}

// EventSummary is the headline block on the summary PDF.
type EventSummary struct {
	EventName         string
	EventDate         string
	Status            string
	ClosedBy          string
	AttendanceCount   int
	NewPeopleCount    int
	ConsolidatedCount int
}

// ReportData bundles whatever rows the requested report needs.
type ReportData struct {
	Roster         []RosterReportRow
	Attendance     []AttendanceReportRow
	Consolidations []ConsolidationReportRow
	StationActions []StationActionReportRow
	Summary        *EventSummary
}
