package reports

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sharmila-j/church-checkin-gateway/internal/checkin"
	"github.com/sharmila-j/church-checkin-gateway/internal/directory"
	"github.com/sharmila-j/church-checkin-gateway/internal/history"
)

// Service assembles report rows from the live engine state, the
// directory cache and the local history table, then hands them to the
// exporter.
type Service struct {
	Engine   *checkin.Engine
	DirSvc   *directory.Service
	History  history.Service
	Exporter ReportExporter
}

func NewService(engine *checkin.Engine, dirSvc *directory.Service, hist history.Service, exporter ReportExporter) *Service {
	return &Service{Engine: engine, DirSvc: dirSvc, History: hist, Exporter: exporter}
}

// Generate builds the requested report for the given event (where the
// report is event-scoped) and renders it.
func (s *Service) Generate(ctx context.Context, reportType, format, eventID string) ([]byte, string, string, error) {
	var data ReportData

	switch reportType {
	case ReportTypeRoster:
		data.Roster = s.rosterRows()

	case ReportTypeAttendance:
		rows, err := s.attendanceRows(eventID, false)
		if err != nil {
			return nil, "", "", err
		}
		data.Attendance = rows

	case ReportTypeNewPeople:
		rows, err := s.attendanceRows(eventID, true)
		if err != nil {
			return nil, "", "", err
		}
		data.Attendance = rows

	case ReportTypeConsolidations:
		rows, err := s.consolidationRows(eventID)
		if err != nil {
			return nil, "", "", err
		}
		data.Consolidations = rows

	case ReportTypeStationActions:
		rows, err := s.stationActionRows(ctx, eventID)
		if err != nil {
			return nil, "", "", err
		}
		data.StationActions = rows

	case ReportTypeEventSummary:
		summary, attendance, consolidations, err := s.summaryData(eventID)
		if err != nil {
			return nil, "", "", err
		}
		data.Summary = summary
		data.Attendance = attendance
		data.Consolidations = consolidations
	}

	return s.Exporter.Export(reportType, format, data)
}

func (s *Service) rosterRows() []RosterReportRow {
	people := s.DirSvc.Cache.All()
	sort.Slice(people, func(i, j int) bool {
		return strings.ToLower(people[i].FullName()) < strings.ToLower(people[j].FullName())
	})

	rows := make([]RosterReportRow, 0, len(people))
	for _, p := range people {
		rows = append(rows, RosterReportRow{
			ID:           p.ID,
			FirstName:    p.FirstName,
			LastName:     p.LastName,
			Email:        p.Email,
			Phone:        p.Phone,
			LeaderAt12:   p.LeaderAt12,
			LeaderAt144:  p.LeaderAt144,
			LeaderAt1728: p.LeaderAt1728,
			Stage:        p.Stage,
		})
	}
	return rows
}

// eventLists returns the lists for the requested event, preferring the
// live realtime slices when it is the selected one.
func (s *Service) eventLists(eventID string) ([]checkin.Entry, []checkin.Entry, []checkin.Consolidation, error) {
	if eventID == "" || eventID == s.Engine.SelectedEventID() {
		present, newPeople, consolidations := s.Engine.Realtime()
		return present, newPeople, consolidations, nil
	}

	ev, ok := s.Engine.EventByID(eventID)
	if !ok {
		return nil, nil, nil, fmt.Errorf("event %s not found", eventID)
	}
	return ev.Attendees, ev.NewPeople, ev.Consolidations, nil
}

func (s *Service) attendanceRows(eventID string, newOnly bool) ([]AttendanceReportRow, error) {
	present, newPeople, _, err := s.eventLists(eventID)
	if err != nil {
		return nil, err
	}

	entries := present
	if newOnly {
		entries = newPeople
	}

	rows := make([]AttendanceReportRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, AttendanceReportRow{
			FullName:   entry.FullName(),
			Email:      entry.Email,
			Phone:      entry.Phone,
			LeaderAt12: entry.LeaderAt12,
			IsNew:      entry.IsNew || newOnly,
		})
	}
	return rows, nil
}

func (s *Service) consolidationRows(eventID string) ([]ConsolidationReportRow, error) {
	_, _, consolidations, err := s.eventLists(eventID)
	if err != nil {
		return nil, err
	}

	rows := make([]ConsolidationReportRow, 0, len(consolidations))
	for _, c := range consolidations {
		rows = append(rows, ConsolidationReportRow{
			Name:       c.Name,
			Decision:   c.Decision,
			AssignedTo: c.AssignedTo,
			Status:     c.Status,
			CreatedAt:  c.CreatedAt,
		})
	}
	return rows, nil
}

func (s *Service) stationActionRows(ctx context.Context, eventID string) ([]StationActionReportRow, error) {
	result, err := s.History.GetActions(ctx, history.ActionFilter{EventID: eventID, Limit: 1000})
	if err != nil {
		return nil, err
	}

	rows := make([]StationActionReportRow, 0, len(result.Data))
	for _, a := range result.Data {
		rows = append(rows, StationActionReportRow{
			ID:         a.ID,
			Operator:   a.Operator,
			EventID:    a.EventID,
			PersonName: a.PersonName,
			Action:     a.Action,
			Outcome:    a.Outcome,
			Timestamp:  a.CreatedAt,
		})
	}
	return rows, nil
}

func (s *Service) summaryData(eventID string) (*EventSummary, []AttendanceReportRow, []ConsolidationReportRow, error) {
	if eventID == "" {
		eventID = s.Engine.SelectedEventID()
	}
	ev, ok := s.Engine.EventByID(eventID)
	if !ok {
		return nil, nil, nil, fmt.Errorf("event %s not found", eventID)
	}

	_, newPeople, consolidations, err := s.eventLists(eventID)
	if err != nil {
		return nil, nil, nil, err
	}

	attendance := ev.AttendanceCount
	if eventID == s.Engine.SelectedEventID() {
		attendance = s.Engine.PresentCount()
	}

	summary := &EventSummary{
		EventName:         ev.Name,
		EventDate:         ev.RawDate,
		Status:            ev.Status,
		ClosedBy:          ev.ClosedBy,
		AttendanceCount:   attendance,
		NewPeopleCount:    len(newPeople),
		ConsolidatedCount: len(consolidations),
	}

	newRows := make([]AttendanceReportRow, 0, len(newPeople))
	for _, entry := range newPeople {
		newRows = append(newRows, AttendanceReportRow{
			FullName:   entry.FullName(),
			Email:      entry.Email,
			Phone:      entry.Phone,
			LeaderAt12: entry.LeaderAt12,
			IsNew:      true,
		})
	}

	consRows := make([]ConsolidationReportRow, 0, len(consolidations))
	for _, c := range consolidations {
		consRows = append(consRows, ConsolidationReportRow{
			Name:       c.Name,
			Decision:   c.Decision,
			AssignedTo: c.AssignedTo,
			Status:     c.Status,
			CreatedAt:  c.CreatedAt,
		})
	}

	return summary, newRows, consRows, nil
}
