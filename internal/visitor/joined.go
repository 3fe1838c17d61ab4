package visitor

import (
	"context"
	"database/sql"
	"time"
)

// JoinedRow is one line of the admin reporting table: a profile joined with
// one of its log rows.
type JoinedRow struct {
	Profile
	LogID        int64     `json:"logid"`
	TimeIn       *string   `json:"timeIn"`
	TimeOut      *string   `json:"timeOut"`
	LogCreatedAt time.Time `json:"logCreatedAt"`
}

// JoinedFilter narrows ListJoined by log creation day or range. Range wins
// over single day when both are present, same as the log listing.
type JoinedFilter struct {
	CreatedAt string
	StartDate string
	EndDate   string
}

// ListJoined returns visitorsdata joined with visitorslog, newest log
// first. Every profile/log pairing appears, so a visitor with several logs
// shows up once per log.
func (r *Repository) ListJoined(ctx context.Context, f JoinedFilter) ([]JoinedRow, error) {
	query := `
		SELECT vd.id, vd."visitorsID", vd.first_name, vd.middle_name, vd.last_name, vd.suffix, vd.gender, vd.birth_date, vd.address, vd.phone, vd.faculty_to_visit, vd."createdAt",
		       vl.logid, vl."timeIn", vl."timeOut", vl."createdAt" AS "logCreatedAt"
		FROM visitorsdata vd
		JOIN visitorslog vl ON vd."visitorsID" = vl."visitorsID"`
	args := []any{}
	if f.StartDate != "" && f.EndDate != "" {
		query += ` WHERE vl."createdAt"::date BETWEEN $1::date AND $2::date`
		args = append(args, f.StartDate, f.EndDate)
	} else if f.CreatedAt != "" {
		query += ` WHERE vl."createdAt"::date = $1::date`
		args = append(args, f.CreatedAt)
	}
	query += ` ORDER BY vl."createdAt" DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []JoinedRow
	for rows.Next() {
		var row JoinedRow
		var faculty sql.NullString
		if err := rows.Scan(
			&row.ID, &row.VisitorsID, &row.FirstName, &row.MiddleName, &row.LastName, &row.Suffix,
			&row.Gender, &row.BirthDate, &row.Address, &row.Phone, &faculty, &row.CreatedAt,
			&row.LogID, &row.TimeIn, &row.TimeOut, &row.LogCreatedAt,
		); err != nil {
			return nil, err
		}
		row.FacultyToVisit = decodeFaculty(faculty)
		res = append(res, row)
	}
	return res, rows.Err()
}
