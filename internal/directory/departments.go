package directory

import (
	"context"
	"time"
)

// Department is an organizational unit referenced by users and services.
type Department struct {
	ID        int64     `json:"id"`
	DeptName  string    `json:"dept_name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListDepartments returns every department.
func (r *Repository) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, dept_name, "createdAt" FROM department`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.DeptName, &d.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

// CreateDepartment inserts a department and returns its id.
func (r *Repository) CreateDepartment(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO department (dept_name) VALUES ($1) RETURNING id
	`, name).Scan(&id)
	return id, err
}

// DeleteDepartment removes a department, returning the affected count.
func (r *Repository) DeleteDepartment(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM department WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
