package directory

import (
	"context"
	"errors"
	"time"
)

// Professor is a faculty member visitors can declare as a contact.
// Department holds the office id the professor belongs to.
type Professor struct {
	ID         int64     `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	MiddleName string    `json:"middle_name"`
	BirthDate  string    `json:"birth_date"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	Position   string    `json:"position"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ProfessorWithUser decorates a professor with its most recently created
// linked account, if any.
type ProfessorWithUser struct {
	Professor
	UserID     *int64  `json:"user_id"`
	UserStatus *string `json:"user_status"`
}

// ProfessorUpdate carries the optional fields of a partial update.
type ProfessorUpdate struct {
	FirstName  *string
	LastName   *string
	MiddleName *string
	BirthDate  *string
	Phone      *string
	Email      *string
	Position   *string
	Department *string
}

// CreateProfessor inserts a professor and returns the new id.
func (r *Repository) CreateProfessor(ctx context.Context, p Professor) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO professors (first_name, last_name, middle_name, birth_date, phone, email, position, department)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, p.FirstName, p.LastName, p.MiddleName, p.BirthDate, p.Phone, p.Email, p.Position, p.Department).Scan(&id)
	return id, err
}

// ListProfessors returns all professors, newest first.
func (r *Repository) ListProfessors(ctx context.Context) ([]Professor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, middle_name, birth_date, phone, email, position, department, "createdAt"
		FROM professors
		ORDER BY "createdAt" DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Professor
	for rows.Next() {
		var p Professor
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.MiddleName, &p.BirthDate, &p.Phone, &p.Email, &p.Position, &p.Department, &p.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

// ProfessorsByDepartment returns a department's professors, each with the
// id and status of its latest linked user account.
func (r *Repository) ProfessorsByDepartment(ctx context.Context, departmentID string) ([]ProfessorWithUser, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.first_name, p.last_name, p.middle_name, p.birth_date, p.phone, p.email, p.position, p.department, p."createdAt",
		       (SELECT u.id FROM users u WHERE u.prof_id = p.id ORDER BY u."createdAt" DESC LIMIT 1) AS user_id,
		       (SELECT u.status FROM users u WHERE u.prof_id = p.id ORDER BY u."createdAt" DESC LIMIT 1) AS user_status
		FROM professors p
		WHERE p.department = $1
		ORDER BY p."createdAt" DESC
	`, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []ProfessorWithUser
	for rows.Next() {
		var p ProfessorWithUser
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.MiddleName, &p.BirthDate, &p.Phone, &p.Email, &p.Position, &p.Department, &p.CreatedAt, &p.UserID, &p.UserStatus); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

// UpdateProfessor applies a partial update, returning the affected count.
func (r *Repository) UpdateProfessor(ctx context.Context, id int64, u ProfessorUpdate) (int64, error) {
	fields, args := BuildProfessorSet(u, 0)
	if len(fields) == 0 {
		return 0, errors.New("no fields provided to update")
	}
	query := "UPDATE professors SET " + joinClauses(fields, ", ") + " WHERE id = $" + itoa(len(args)+1)
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteProfessor removes a professor, returning the affected count.
func (r *Repository) DeleteProfessor(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM professors WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// BuildProfessorSet builds SET fragments whose placeholders start after
// `offset`. The transactional professor+users bulk update in account reuses
// it inside its own statement.
func BuildProfessorSet(u ProfessorUpdate, offset int) ([]string, []any) {
	fields := []string{}
	args := []any{}
	add := func(col string, v *string) {
		if v != nil {
			fields = append(fields, col+" = $"+itoa(offset+len(args)+1))
			args = append(args, *v)
		}
	}
	add("first_name", u.FirstName)
	add("last_name", u.LastName)
	add("middle_name", u.MiddleName)
	add("birth_date", u.BirthDate)
	add("phone", u.Phone)
	add("email", u.Email)
	add("position", u.Position)
	add("department", u.Department)
	return fields, args
}
