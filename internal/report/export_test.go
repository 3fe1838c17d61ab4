package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jfks18/apiVisitor/internal/visitor"
)

func strptr(s string) *string { return &s }

func TestVisitorsWorkbook(t *testing.T) {
	loc := time.FixedZone("Asia/Manila", 8*60*60)
	rows := []visitor.JoinedRow{
		{
			Profile: visitor.Profile{
				VisitorsID:     "VIS-001",
				FirstName:      strptr("Juan"),
				MiddleName:     strptr("Santos"),
				LastName:       strptr("Dela Cruz"),
				FacultyToVisit: []string{"Dr. Cruz", "Dr. Reyes"},
			},
			LogID:        1,
			TimeIn:       strptr("09:30:15"),
			TimeOut:      nil,
			LogCreatedAt: time.Date(2025, 3, 14, 1, 0, 0, 0, time.UTC),
		},
	}

	data, err := VisitorsWorkbook(rows, loc)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Visitors")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, VisitorsHeader, got[0])
	assert.Equal(t, "VIS-001", got[1][0])
	assert.Equal(t, "Juan Santos Dela Cruz", got[1][1])
	assert.Equal(t, "Dr. Cruz, Dr. Reyes", got[1][2])
	assert.Equal(t, "9:30 AM", got[1][3])
	assert.Equal(t, "-", got[1][4])
	// 01:00 UTC renders as 09:00 Manila.
	assert.Equal(t, "2025-03-14 09:00:00", got[1][5])
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "-", formatClock(nil))
	assert.Equal(t, "-", formatClock(strptr("")))
	assert.Equal(t, "12:05 AM", formatClock(strptr("00:05:00")))
	assert.Equal(t, "12:00 PM", formatClock(strptr("12:00:00")))
	assert.Equal(t, "4:45 PM", formatClock(strptr("16:45:10")))
}
