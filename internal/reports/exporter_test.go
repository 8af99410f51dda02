package reports

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExportRosterCSV(t *testing.T) {
	exporter := NewReportExporter()

	data, filename, contentType, err := exporter.Export(ReportTypeRoster, FormatCSV, ReportData{
		Roster: []RosterReportRow{
			{ID: "p1", FirstName: "Gavin", LastName: "Ensley", Email: "gavin@example.com", LeaderAt12: "Marta Reyes", Stage: "Disciple"},
			{ID: "p2", FirstName: "Lena", LastName: "Okafor"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "text/csv", contentType)
	require.True(t, strings.HasPrefix(filename, "roster_report_"))
	require.True(t, strings.HasSuffix(filename, ".csv"))

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "First Name", records[0][1])
	require.Equal(t, "Gavin", records[1][1])
	require.Equal(t, "Marta Reyes", records[1][5])
	require.Equal(t, "Okafor", records[2][2])
}

func TestExportAttendanceFormats(t *testing.T) {
	exporter := NewReportExporter()
	rows := []AttendanceReportRow{
		{FullName: "Gavin Ensley", Email: "gavin@example.com", IsNew: false},
		{FullName: "Guest One", IsNew: true},
	}

	_, filename, contentType, err := exporter.Export(ReportTypeAttendance, FormatExcel, ReportData{Attendance: rows})
	require.NoError(t, err)
	require.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", contentType)
	require.True(t, strings.HasSuffix(filename, ".xlsx"))

	pdf, _, contentType, err := exporter.Export(ReportTypeNewPeople, FormatPDF, ReportData{Attendance: rows})
	require.NoError(t, err)
	require.Equal(t, "application/pdf", contentType)
	require.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestExportRejectsUnknownTypeAndFormat(t *testing.T) {
	exporter := NewReportExporter()

	_, _, _, err := exporter.Export("weekly_digest", FormatCSV, ReportData{})
	require.Error(t, err)

	_, _, _, err = exporter.Export(ReportTypeRoster, "docx", ReportData{})
	require.Error(t, err)
}

func TestEventSummaryIsPDFOnlyAndNeedsData(t *testing.T) {
	exporter := NewReportExporter()

	_, _, _, err := exporter.Export(ReportTypeEventSummary, FormatPDF, ReportData{})
	require.Error(t, err, "summary without data must fail")

	data, filename, contentType, err := exporter.Export(ReportTypeEventSummary, FormatPDF, ReportData{
		Summary: &EventSummary{
			EventName:       "Sunday Service",
			EventDate:       "2026-08-30",
			Status:          "complete",
			ClosedBy:        "admin1",
			AttendanceCount: 120,
			NewPeopleCount:  7,
		},
	})
	require.NoError(t, err)
	require.Equal(t, "application/pdf", contentType)
	require.True(t, strings.HasSuffix(filename, ".pdf"))
	require.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
