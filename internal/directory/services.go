package directory

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Service is something a department offers that a visitor can come for.
type Service struct {
	ID        int64     `json:"id"`
	SrvcName  string    `json:"srvc_name"`
	DeptID    int64     `json:"dept_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ServiceUpdate carries the optional fields of a partial service update.
type ServiceUpdate struct {
	SrvcName *string
	DeptID   *int64
}

// ListServices returns services, optionally filtered by department.
func (r *Repository) ListServices(ctx context.Context, deptID string) ([]Service, error) {
	query := `SELECT id, srvc_name, dept_id, created_at FROM service`
	args := []any{}
	if deptID != "" {
		query += ` WHERE dept_id = $1`
		args = append(args, deptID)
	}
	query += ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.SrvcName, &s.DeptID, &s.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// ServiceByDepartment returns the first service row for a department id, or
// nil when none exists. The lookup endpoint keys on dept_id rather than the
// service's own id.
func (r *Repository) ServiceByDepartment(ctx context.Context, deptID string) (*Service, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, srvc_name, dept_id, created_at FROM service WHERE dept_id = $1 LIMIT 1
	`, deptID)
	var s Service
	if err := row.Scan(&s.ID, &s.SrvcName, &s.DeptID, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// CreateService inserts a service and returns its id.
func (r *Repository) CreateService(ctx context.Context, srvcName string, deptID int64) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO service (srvc_name, dept_id) VALUES ($1, $2) RETURNING id
	`, srvcName, deptID).Scan(&id)
	return id, err
}

// UpdateService applies a partial update, returning the affected count.
func (r *Repository) UpdateService(ctx context.Context, id int64, u ServiceUpdate) (int64, error) {
	fields := []string{}
	args := []any{}
	if u.SrvcName != nil {
		fields = append(fields, "srvc_name = $"+itoa(len(args)+1))
		args = append(args, *u.SrvcName)
	}
	if u.DeptID != nil {
		fields = append(fields, "dept_id = $"+itoa(len(args)+1))
		args = append(args, *u.DeptID)
	}
	if len(fields) == 0 {
		return 0, errors.New("no fields provided to update")
	}
	query := "UPDATE service SET " + joinClauses(fields, ", ") + " WHERE id = $" + itoa(len(args)+1)
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteService removes a service, returning the affected count.
func (r *Repository) DeleteService(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM service WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
