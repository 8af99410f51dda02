package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// ReportExporter renders report rows into a downloadable file.
type ReportExporter interface {
	Export(reportType, format string, data ReportData) ([]byte, string, string, error)
}

type reportExporter struct{}

func NewReportExporter() ReportExporter {
	return &reportExporter{}
}

func (e *reportExporter) Export(reportType, format string, data ReportData) ([]byte, string, string, error) {
	timestamp := time.Now().Format("20060102_150405")

	switch reportType {
	case ReportTypeRoster:
		return e.exportRosterByFormat(format, timestamp, data.Roster)
	case ReportTypeAttendance:
		return e.exportAttendanceByFormat(format, timestamp, data.Attendance, "attendance")
	case ReportTypeNewPeople:
		return e.exportAttendanceByFormat(format, timestamp, data.Attendance, "new_people")
	case ReportTypeConsolidations:
		return e.exportConsolidationsByFormat(format, timestamp, data.Consolidations)
	case ReportTypeStationActions:
		return e.exportStationActionsByFormat(format, timestamp, data.StationActions)
	case ReportTypeEventSummary:
		return e.exportEventSummaryPDF(timestamp, data)
	default:
		return nil, "", "", fmt.Errorf("unsupported report type: %s", reportType)
	}
}

//// ============================
/// ROSTER EXPORTS
//// ============================

func (e *reportExporter) exportRosterByFormat(format, timestamp string, rows []RosterReportRow) ([]byte, string, string, error) {
	switch format {
	case FormatExcel:
		data, err := e.exportRosterExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("roster_report_%s.xlsx", timestamp)
		return data, filename, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	case FormatCSV:
		data, err := e.exportRosterCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("roster_report_%s.csv", timestamp)
		return data, filename, "text/csv", nil

	case FormatPDF:
		data, err := e.exportRosterPDF(rows)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("roster_report_%s.pdf", timestamp)
		return data, filename, "application/pdf", nil

	default:
		return nil, "", "", fmt.Errorf("unsupported format for roster: %s", format)
	}
}

func (e *reportExporter) exportRosterCSV(rows []RosterReportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "First Name", "Last Name", "Email", "Phone", "Leader of 12", "Leader of 144", "Leader of 1728", "Stage"}
	if err := writer.Write(headers); err != nil {
		return nil, err
	}

	for _, r := range rows {
		record := []string{
			r.ID, r.FirstName, r.LastName, r.Email, r.Phone,
			r.LeaderAt12, r.LeaderAt144, r.LeaderAt1728, r.Stage,
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (e *reportExporter) exportRosterExcel(rows []RosterReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Roster"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"ID", "First Name", "Last Name", "Email", "Phone", "Leader of 12", "Leader of 144", "Leader of 1728", "Stage"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, r := range rows {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.FirstName)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.LastName)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.Email)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.Phone)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), r.LeaderAt12)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), r.LeaderAt144)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), r.LeaderAt1728)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), r.Stage)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportRosterPDF(rows []RosterReportRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Directory Roster")
	pdf.Ln(20)

	pdf.SetFont("Arial", "B", 9)
	widths := []float64{30, 30, 55, 30, 35, 35, 35}
	headers := []string{"First Name", "Last Name", "Email", "Phone", "Leader of 12", "Leader of 144", "Stage"}

	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, r := range rows {
		email := r.Email
		if len(email) > 35 {
			email = email[:32] + "..."
		}
		pdf.CellFormat(widths[0], 6, r.FirstName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, r.LastName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, email, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, r.Phone, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[4], 6, r.LeaderAt12, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[5], 6, r.LeaderAt144, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[6], 6, r.Stage, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

//// ============================
/// ATTENDANCE / NEW PEOPLE EXPORTS
//// ============================

func (e *reportExporter) exportAttendanceByFormat(format, timestamp string, rows []AttendanceReportRow, name string) ([]byte, string, string, error) {
	switch format {
	case FormatExcel:
		data, err := e.exportAttendanceExcel(rows, name)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("%s_report_%s.xlsx", name, timestamp)
		return data, filename, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	case FormatCSV:
		data, err := e.exportAttendanceCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("%s_report_%s.csv", name, timestamp)
		return data, filename, "text/csv", nil

	case FormatPDF:
		data, err := e.exportAttendancePDF(rows, name)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("%s_report_%s.pdf", name, timestamp)
		return data, filename, "application/pdf", nil

	default:
		return nil, "", "", fmt.Errorf("unsupported format for %s: %s", name, format)
	}
}

func (e *reportExporter) exportAttendanceCSV(rows []AttendanceReportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Full Name", "Email", "Phone", "Leader of 12", "New"}
	if err := writer.Write(headers); err != nil {
		return nil, err
	}

	for _, r := range rows {
		record := []string{
			r.FullName, r.Email, r.Phone, r.LeaderAt12, strconv.FormatBool(r.IsNew),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (e *reportExporter) exportAttendanceExcel(rows []AttendanceReportRow, name string) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Attendance"
	if name == "new_people" {
		sheetName = "New People"
	}
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"Full Name", "Email", "Phone", "Leader of 12", "New"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, r := range rows {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.FullName)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Email)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.Phone)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.LeaderAt12)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.IsNew)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportAttendancePDF(rows []AttendanceReportRow, name string) ([]byte, error) {
	title := "Attendance Report"
	if name == "new_people" {
		title = "New People Report"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, title)
	pdf.Ln(20)

	pdf.SetFont("Arial", "B", 10)
	widths := []float64{50, 55, 30, 40, 15}
	headers := []string{"Full Name", "Email", "Phone", "Leader of 12", "New"}

	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, r := range rows {
		isNew := ""
		if r.IsNew {
			isNew = "yes"
		}
		pdf.CellFormat(widths[0], 6, r.FullName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, r.Email, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, r.Phone, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 6, r.LeaderAt12, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, isNew, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

//// ============================
/// CONSOLIDATION EXPORTS
//// ============================

func (e *reportExporter) exportConsolidationsByFormat(format, timestamp string, rows []ConsolidationReportRow) ([]byte, string, string, error) {
	switch format {
	case FormatExcel:
		data, err := e.exportConsolidationsExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("consolidations_report_%s.xlsx", timestamp)
		return data, filename, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	case FormatCSV:
		data, err := e.exportConsolidationsCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("consolidations_report_%s.csv", timestamp)
		return data, filename, "text/csv", nil

	case FormatPDF:
		data, err := e.exportConsolidationsPDF(rows)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("consolidations_report_%s.pdf", timestamp)
		return data, filename, "application/pdf", nil

	default:
		return nil, "", "", fmt.Errorf("unsupported format for consolidations: %s", format)
	}
}

func (e *reportExporter) exportConsolidationsCSV(rows []ConsolidationReportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Name", "Decision", "Assigned To", "Status", "Created At"}
	if err := writer.Write(headers); err != nil {
		return nil, err
	}

	for _, r := range rows {
		record := []string{r.Name, r.Decision, r.AssignedTo, r.Status, r.CreatedAt}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (e *reportExporter) exportConsolidationsExcel(rows []ConsolidationReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Consolidations"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"Name", "Decision", "Assigned To", "Status", "Created At"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, r := range rows {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Decision)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.AssignedTo)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.CreatedAt)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *reportExporter) exportConsolidationsPDF(rows []ConsolidationReportRow) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Consolidations Report")
	pdf.Ln(20)

	pdf.SetFont("Arial", "B", 10)
	widths := []float64{45, 35, 45, 25, 40}
	headers := []string{"Name", "Decision", "Assigned To", "Status", "Created At"}

	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, r := range rows {
		pdf.CellFormat(widths[0], 6, r.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, r.Decision, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, r.AssignedTo, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, r.Status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[4], 6, r.CreatedAt, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

//// ============================
/// STATION ACTION EXPORTS
//// ============================

func (e *reportExporter) exportStationActionsByFormat(format, timestamp string, rows []StationActionReportRow) ([]byte, string, string, error) {
	switch format {
	case FormatExcel:
		data, err := e.exportStationActionsExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("station_actions_report_%s.xlsx", timestamp)
		return data, filename, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	case FormatCSV:
		data, err := e.exportStationActionsCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("station_actions_report_%s.csv", timestamp)
		return data, filename, "text/csv", nil

	default:
		return nil, "", "", fmt.Errorf("unsupported format for station actions: %s", format)
	}
}

func (e *reportExporter) exportStationActionsCSV(rows []StationActionReportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Operator", "Event ID", "Person", "Action", "Outcome", "Timestamp"}
	if err := writer.Write(headers); err != nil {
		return nil, err
	}

	for _, r := range rows {
		record := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.Operator,
			r.EventID,
			r.PersonName,
			r.Action,
			r.Outcome,
			r.Timestamp.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (e *reportExporter) exportStationActionsExcel(rows []StationActionReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Station Actions"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"ID", "Operator", "Event ID", "Person", "Action", "Outcome", "Timestamp"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, r := range rows {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Operator)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.EventID)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.PersonName)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.Action)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), r.Outcome)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), r.Timestamp.Format("2006-01-02 15:04:05"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

//// ============================
/// EVENT SUMMARY PDF
//// ============================

// exportEventSummaryPDF renders the one-page close-out sheet: headline
// counts followed by the new people and consolidations lists.
func (e *reportExporter) exportEventSummaryPDF(timestamp string, data ReportData) ([]byte, string, string, error) {
	if data.Summary == nil {
		return nil, "", "", fmt.Errorf("event summary data missing")
	}
	s := data.Summary

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Event Summary: "+s.EventName)
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, "Date: "+s.EventDate)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Status: "+s.Status)
	pdf.Ln(7)
	if s.ClosedBy != "" {
		pdf.Cell(0, 7, "Closed by: "+s.ClosedBy)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Attendance: %d    New people: %d    Consolidations: %d",
		s.AttendanceCount, s.NewPeopleCount, s.ConsolidatedCount))
	pdf.Ln(14)

	if len(data.Attendance) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, "New People")
		pdf.Ln(10)

		pdf.SetFont("Arial", "B", 10)
		widths := []float64{60, 65, 35}
		headers := []string{"Full Name", "Email", "Phone"}
		for i, h := range headers {
			pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, r := range data.Attendance {
			if !r.IsNew {
				continue
			}
			pdf.CellFormat(widths[0], 6, r.FullName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], 6, r.Email, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[2], 6, r.Phone, "1", 0, "C", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(8)
	}

	if len(data.Consolidations) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, "Consolidations")
		pdf.Ln(10)

		pdf.SetFont("Arial", "B", 10)
		widths := []float64{55, 40, 55}
		headers := []string{"Name", "Decision", "Assigned To"}
		for i, h := range headers {
			pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, r := range data.Consolidations {
			pdf.CellFormat(widths[0], 6, r.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], 6, r.Decision, "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[2], 6, r.AssignedTo, "1", 0, "L", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", "", err
	}

	filename := fmt.Sprintf("event_summary_%s.pdf", timestamp)
	return buf.Bytes(), filename, "application/pdf", nil
}
