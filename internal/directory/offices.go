package directory

import (
	"context"
	"time"
)

// Office is a scannable location; Department is its display name.
type Office struct {
	ID         int64     `json:"id"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateOffice inserts an office and returns its id.
func (r *Repository) CreateOffice(ctx context.Context, department string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO offices (department) VALUES ($1) RETURNING id
	`, department).Scan(&id)
	return id, err
}

// ListOffices returns all offices, newest first.
func (r *Repository) ListOffices(ctx context.Context) ([]Office, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, department, "createdAt" FROM offices ORDER BY "createdAt" DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Office
	for rows.Next() {
		var o Office
		if err := rows.Scan(&o.ID, &o.Department, &o.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, o)
	}
	return res, rows.Err()
}

// UpdateOffice renames an office, returning the affected count.
func (r *Repository) UpdateOffice(ctx context.Context, id int64, department string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE offices SET department = $1 WHERE id = $2`, department, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteOffice removes an office, returning the affected count.
func (r *Repository) DeleteOffice(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM offices WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
