package directory

import "context"

// Role is a user role lookup row.
type Role struct {
	ID       int64  `json:"id"`
	RoleName string `json:"role_name"`
}

// ListRoles returns every role.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, role_name FROM roles`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.RoleName); err != nil {
			return nil, err
		}
		res = append(res, role)
	}
	return res, rows.Err()
}
