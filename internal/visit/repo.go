package visit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Log is one attendance record (time-in/time-out pair) for a visitor.
// TimeIn/TimeOut are HH:MM:SS strings; empty string and NULL both mean
// "not yet recorded", matching what the conditional updates accept.
type Log struct {
	LogID      int64     `json:"logid"`
	VisitorsID string    `json:"visitorsID"`
	TimeIn     *string   `json:"timeIn"`
	TimeOut    *string   `json:"timeOut"`
	CreatedAt  time.Time `json:"createdAt"`
}

// OfficeVisit is an intended or confirmed stop at a department/professor.
// DeptID is kept as text end to end: office scanners send it in mixed
// representations and the mismatch check is a string comparison.
type OfficeVisit struct {
	ID         int64     `json:"id"`
	VisitorsID string    `json:"visitorsID"`
	DeptID     string    `json:"dept_id"`
	ProfID     string    `json:"prof_id"`
	Purpose    string    `json:"purpose"`
	QRTagged   int       `json:"qr_tagged"`
	CreatedAt  time.Time `json:"createdAt"`
}

// OfficeVisitUpdate carries the optional fields of a partial visit update.
type OfficeVisitUpdate struct {
	VisitorsID *string
	DeptID     *string
	ProfID     *string
	Purpose    *string
}

// LogFilter narrows ListLogs. StartDate/EndDate take precedence over
// CreatedAt when both are set, same as the listing endpoint.
type LogFilter struct {
	VisitorsID string
	CreatedAt  string
	StartDate  string
	EndDate    string
}

// Repository persists visitor logs and office visits in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateLog inserts a log row with empty time fields and returns the new
// logid. No dedupe against existing open logs is performed.
func (r *Repository) CreateLog(ctx context.Context, visitorsID string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO visitorslog ("visitorsID")
		VALUES ($1)
		RETURNING logid
	`, visitorsID).Scan(&id)
	return id, err
}

// LatestLog returns the visitor's most recent log (highest logid), or nil
// when none exists.
func (r *Repository) LatestLog(ctx context.Context, visitorsID string) (*Log, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT logid, "visitorsID", "timeIn", "timeOut", "createdAt"
		FROM visitorslog
		WHERE "visitorsID" = $1
		ORDER BY logid DESC
		LIMIT 1
	`, visitorsID)
	var l Log
	if err := row.Scan(&l.LogID, &l.VisitorsID, &l.TimeIn, &l.TimeOut, &l.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// MarkTimeIn conditionally records a time-in on any log row for the visitor
// whose timeIn is still unset. The WHERE clause is the concurrency control:
// two concurrent scans cannot both claim the same row.
func (r *Repository) MarkTimeIn(ctx context.Context, visitorsID, timeIn string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE visitorslog
		SET "timeIn" = $1
		WHERE "visitorsID" = $2 AND ("timeIn" IS NULL OR "timeIn" = '')
	`, timeIn, visitorsID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkTimeOut conditionally records a time-out on a row that has a time-in
// but no time-out yet.
func (r *Repository) MarkTimeOut(ctx context.Context, visitorsID, timeOut string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE visitorslog
		SET "timeOut" = $1
		WHERE "visitorsID" = $2 AND "timeIn" IS NOT NULL AND "timeIn" <> '' AND ("timeOut" IS NULL OR "timeOut" = '')
	`, timeOut, visitorsID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetTimeInAll writes timeIn on every log row for the visitor. Which rows
// that reaches when a visitor has multiple logs is whatever the unscoped
// UPDATE touches; the front-desk endpoint keys by visitorsID only.
func (r *Repository) SetTimeInAll(ctx context.Context, visitorsID, timeIn string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE visitorslog SET "timeIn" = $1 WHERE "visitorsID" = $2
	`, timeIn, visitorsID)
	return err
}

// SetTimeOutAll writes timeOut on every log row for the visitor, same
// unscoped semantics as SetTimeInAll. It does not require timeIn to be set.
func (r *Repository) SetTimeOutAll(ctx context.Context, visitorsID, timeOut string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE visitorslog SET "timeOut" = $1 WHERE "visitorsID" = $2
	`, timeOut, visitorsID)
	return err
}

// TagCensus counts the visitor's office visits created on the given day and
// how many of them are already tagged.
func (r *Repository) TagCensus(ctx context.Context, visitorsID, day string) (total, tagged int, err error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN qr_tagged = 1 THEN 1 ELSE 0 END), 0) AS tagged
		FROM office_visits
		WHERE "visitorsID" = $1 AND "createdAt"::date = $2::date
	`, visitorsID, day)
	err = row.Scan(&total, &tagged)
	return total, tagged, err
}

// LatestOfficeVisit returns the most recently created office visit for the
// visitor regardless of tag state, or nil when none exists. Tagging always
// targets this row; see TagByID.
func (r *Repository) LatestOfficeVisit(ctx context.Context, visitorsID string) (*OfficeVisit, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, dept_id
		FROM office_visits
		WHERE "visitorsID" = $1
		ORDER BY "createdAt" DESC
		LIMIT 1
	`, visitorsID)
	var v OfficeVisit
	if err := row.Scan(&v.ID, &v.DeptID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// TagByID sets qr_tagged on one visit. Re-tagging an already tagged row is
// a no-op that still reports one affected row.
func (r *Repository) TagByID(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE office_visits SET qr_tagged = 1 WHERE id = $1
	`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListLogs returns logs matching the filter, newest first.
func (r *Repository) ListLogs(ctx context.Context, f LogFilter) ([]Log, error) {
	query := `SELECT logid, "visitorsID", "timeIn", "timeOut", "createdAt" FROM visitorslog`
	args := []any{}
	clauses := []string{}
	if f.VisitorsID != "" {
		clauses = append(clauses, `"visitorsID" = $`+itoa(len(args)+1))
		args = append(args, f.VisitorsID)
	}
	if f.StartDate != "" && f.EndDate != "" {
		clauses = append(clauses, `"createdAt"::date BETWEEN $`+itoa(len(args)+1)+`::date AND $`+itoa(len(args)+2)+`::date`)
		args = append(args, f.StartDate, f.EndDate)
	} else if f.CreatedAt != "" {
		clauses = append(clauses, `"createdAt"::date = $`+itoa(len(args)+1)+`::date`)
		args = append(args, f.CreatedAt)
	}
	if len(clauses) > 0 {
		query += " WHERE " + joinClauses(clauses, " AND ")
	}
	query += ` ORDER BY "createdAt" DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Log
	for rows.Next() {
		var l Log
		if err := rows.Scan(&l.LogID, &l.VisitorsID, &l.TimeIn, &l.TimeOut, &l.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, l)
	}
	return res, rows.Err()
}

// LogsByVisitor returns all logs for one visitor, newest first.
func (r *Repository) LogsByVisitor(ctx context.Context, visitorsID string) ([]Log, error) {
	return r.ListLogs(ctx, LogFilter{VisitorsID: visitorsID})
}

// CreateOfficeVisit inserts a declared office stop and returns its id.
func (r *Repository) CreateOfficeVisit(ctx context.Context, v OfficeVisit) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO office_visits ("visitorsID", dept_id, prof_id, purpose)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, v.VisitorsID, v.DeptID, v.ProfID, v.Purpose).Scan(&id)
	return id, err
}

// ListOfficeVisits returns visits with optional visitor/department/professor
// filters, newest first.
func (r *Repository) ListOfficeVisits(ctx context.Context, visitorsID, deptID, profID string) ([]OfficeVisit, error) {
	query := `SELECT id, "visitorsID", dept_id, prof_id, purpose, qr_tagged, "createdAt" FROM office_visits`
	args := []any{}
	clauses := []string{}
	if visitorsID != "" {
		clauses = append(clauses, `"visitorsID" = $`+itoa(len(args)+1))
		args = append(args, visitorsID)
	}
	if deptID != "" {
		clauses = append(clauses, "dept_id = $"+itoa(len(args)+1))
		args = append(args, deptID)
	}
	if profID != "" {
		clauses = append(clauses, "prof_id = $"+itoa(len(args)+1))
		args = append(args, profID)
	}
	if len(clauses) > 0 {
		query += " WHERE " + joinClauses(clauses, " AND ")
	}
	query += ` ORDER BY "createdAt" DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []OfficeVisit
	for rows.Next() {
		var v OfficeVisit
		if err := rows.Scan(&v.ID, &v.VisitorsID, &v.DeptID, &v.ProfID, &v.Purpose, &v.QRTagged, &v.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, rows.Err()
}

// FirstVisitByProfessor returns the first visit row for a professor, or nil.
func (r *Repository) FirstVisitByProfessor(ctx context.Context, profID string) (*OfficeVisit, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, "visitorsID", dept_id, prof_id, purpose, qr_tagged, "createdAt"
		FROM office_visits
		WHERE prof_id = $1
		LIMIT 1
	`, profID)
	var v OfficeVisit
	if err := row.Scan(&v.ID, &v.VisitorsID, &v.DeptID, &v.ProfID, &v.Purpose, &v.QRTagged, &v.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// VisitsByProfessor returns all visits for a professor, newest first.
func (r *Repository) VisitsByProfessor(ctx context.Context, profID string) ([]OfficeVisit, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, "visitorsID", dept_id, prof_id, purpose, qr_tagged, "createdAt"
		FROM office_visits
		WHERE prof_id = $1
		ORDER BY "createdAt" DESC
	`, profID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []OfficeVisit
	for rows.Next() {
		var v OfficeVisit
		if err := rows.Scan(&v.ID, &v.VisitorsID, &v.DeptID, &v.ProfID, &v.Purpose, &v.QRTagged, &v.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, rows.Err()
}

// UpdateOfficeVisit applies a partial update, returning the affected count.
func (r *Repository) UpdateOfficeVisit(ctx context.Context, id int64, u OfficeVisitUpdate) (int64, error) {
	fields := []string{}
	args := []any{}
	if u.VisitorsID != nil {
		fields = append(fields, `"visitorsID" = $`+itoa(len(args)+1))
		args = append(args, *u.VisitorsID)
	}
	if u.DeptID != nil {
		fields = append(fields, "dept_id = $"+itoa(len(args)+1))
		args = append(args, *u.DeptID)
	}
	if u.ProfID != nil {
		fields = append(fields, "prof_id = $"+itoa(len(args)+1))
		args = append(args, *u.ProfID)
	}
	if u.Purpose != nil {
		fields = append(fields, "purpose = $"+itoa(len(args)+1))
		args = append(args, *u.Purpose)
	}
	if len(fields) == 0 {
		return 0, errors.New("no fields provided to update")
	}
	query := "UPDATE office_visits SET " + joinClauses(fields, ", ") + " WHERE id = $" + itoa(len(args)+1)
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteOfficeVisit removes a visit, returning the affected count.
func (r *Repository) DeleteOfficeVisit(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM office_visits WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func itoa(i int) string { return fmt.Sprintf("%d", i) }

func joinClauses(parts []string, sep string) string {
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for i := 1; i < len(parts); i++ {
		out += sep + parts[i]
	}
	return out
}
