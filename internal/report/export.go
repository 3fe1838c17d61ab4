// Package report renders the admin visitors table as an XLSX workbook.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jfks18/apiVisitor/internal/visitor"
)

// VisitorsHeader is the exported column set of the visitors report.
var VisitorsHeader = []string{
	"Visitor ID",
	"Name",
	"Faculty to Visit",
	"Time In",
	"Time Out",
	"Log Date",
}

const sheetName = "Visitors"

// VisitorsWorkbook builds an XLSX file from joined visitor/log rows.
// Times are rendered as 12-hour AM/PM strings and the log date in the
// given location, matching the on-screen table.
func VisitorsWorkbook(rows []visitor.JoinedRow, loc *time.Location) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	for i, h := range VisitorsHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		values := []string{
			row.VisitorsID,
			fullName(row),
			strings.Join(row.FacultyToVisit, ", "),
			formatClock(row.TimeIn),
			formatClock(row.TimeOut),
			row.LogCreatedAt.In(loc).Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func fullName(row visitor.JoinedRow) string {
	parts := []string{}
	for _, p := range []*string{row.FirstName, row.MiddleName, row.LastName} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	return strings.Join(parts, " ")
}

// formatClock renders HH:MM:SS as a 12-hour h:MM AM/PM string, or "-" when
// the time is unset.
func formatClock(t *string) string {
	if t == nil || *t == "" {
		return "-"
	}
	parts := strings.Split(*t, ":")
	if len(parts) < 2 {
		return *t
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return *t
	}
	ampm := "AM"
	if hour >= 12 {
		ampm = "PM"
	}
	hour = hour % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%s %s", hour, parts[1], ampm)
}
