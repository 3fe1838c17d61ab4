package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jfks18/apiVisitor/internal/directory"
)

// User is a staff/department account. PasswordHash never leaves the
// package; the JSON shape matches what the listing endpoints return.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        *string   `json:"email"`
	Phone        *string   `json:"phone"`
	DeptID       *int64    `json:"dept_id"`
	Token        *string   `json:"token"`
	Role         *int64    `json:"role"`
	ProfID       *int64    `json:"prof_id"`
	Status       *string   `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	PasswordHash string    `json:"-"`
}

// UserUpdate carries the optional fields of a partial user update.
// PasswordHash must already be hashed by the caller.
type UserUpdate struct {
	Username     *string
	Email        *string
	Phone        *string
	DeptID       *int64
	Status       *string
	Role         *int64
	PasswordHash *string
}

// ProfessorUser is a user joined with its linked professor.
type ProfessorUser struct {
	UserID      int64   `json:"user_id"`
	Username    string  `json:"username"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	DeptID      *int64  `json:"dept_id"`
	Role        *int64  `json:"role"`
	ProfID      *int64  `json:"prof_id"`
	Status      *string `json:"status"`
	ProfessorID *int64  `json:"professor_id"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	MiddleName  *string `json:"middle_name"`
	ProfEmail   *string `json:"prof_email"`
	Department  *string `json:"department"`
}

const userColumns = `id, username, email, phone, dept_id, token, role, prof_id, status, "createdAt"`

// Repository persists user accounts and professor links.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func scanUser(row interface{ Scan(...any) error }, u *User) error {
	return row.Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.DeptID, &u.Token, &u.Role, &u.ProfID, &u.Status, &u.CreatedAt)
}

// GetByUsername returns a user including the password hash, or nil.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`, password FROM users WHERE username = $1
	`, username)
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.DeptID, &u.Token, &u.Role, &u.ProfID, &u.Status, &u.CreatedAt, &u.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// GetByID returns a user without the password hash, or nil.
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id)
	var u User
	if err := scanUser(row, &u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// SetToken stores a session token and status for a user.
func (r *Repository) SetToken(ctx context.Context, id int64, token, status string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET token = $1, status = $2 WHERE id = $3
	`, token, status, id)
	return err
}

// ClearToken drops the session token and marks the account inactive,
// returning the affected count.
func (r *Repository) ClearToken(ctx context.Context, username string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET token = NULL, status = 'inactive' WHERE username = $1
	`, username)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Create inserts a user with an already-hashed password and returns the new
// id. A unique-constraint violation surfaces as ErrDuplicateUser.
func (r *Repository) Create(ctx context.Context, username string, email, phone *string, passwordHash string, deptID *int64, status string, role int64) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, phone, password, dept_id, status, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, username, email, phone, passwordHash, deptID, status, role).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateUser
		}
		return 0, err
	}
	return id, nil
}

// List returns users without password hashes, optionally filtered by
// department, newest first.
func (r *Repository) List(ctx context.Context, deptID string) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	args := []any{}
	if deptID != "" {
		query += ` WHERE dept_id = $1`
		args = append(args, deptID)
	}
	query += ` ORDER BY "createdAt" DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []User
	for rows.Next() {
		var u User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

// Update applies a partial update, returning the affected count.
func (r *Repository) Update(ctx context.Context, id int64, u UserUpdate) (int64, error) {
	fields, args := buildUserSet(u, 0)
	if len(fields) == 0 {
		return 0, errors.New("no fields provided to update")
	}
	query := "UPDATE users SET " + joinClauses(fields, ", ") + " WHERE id = $" + itoa(len(args)+1)
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetPasswordByUsername replaces a user's password hash, returning the
// affected count.
func (r *Repository) SetPasswordByUsername(ctx context.Context, username, passwordHash string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET password = $1 WHERE username = $2
	`, passwordHash, username)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes a user, returning the affected count.
func (r *Repository) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const professorUserSelect = `
	SELECT u.id AS user_id, u.username, u.email, u.phone, u.dept_id, u.role, u.prof_id, u.status,
	       p.id AS professor_id, p.first_name, p.last_name, p.middle_name, p.email AS prof_email, p.department
	FROM users u
	LEFT JOIN professors p ON u.prof_id = p.id`

func scanProfessorUser(row interface{ Scan(...any) error }, pu *ProfessorUser) error {
	return row.Scan(&pu.UserID, &pu.Username, &pu.Email, &pu.Phone, &pu.DeptID, &pu.Role, &pu.ProfID, &pu.Status,
		&pu.ProfessorID, &pu.FirstName, &pu.LastName, &pu.MiddleName, &pu.ProfEmail, &pu.Department)
}

// ListProfessorUsers returns all users linked to a professor, joined with
// the professor record, newest first.
func (r *Repository) ListProfessorUsers(ctx context.Context) ([]ProfessorUser, error) {
	rows, err := r.db.QueryContext(ctx, professorUserSelect+`
		WHERE u.prof_id IS NOT NULL
		ORDER BY u."createdAt" DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []ProfessorUser
	for rows.Next() {
		var pu ProfessorUser
		if err := scanProfessorUser(rows, &pu); err != nil {
			return nil, err
		}
		res = append(res, pu)
	}
	return res, rows.Err()
}

// GetProfessorUser returns the joined record for one professor id, or nil.
func (r *Repository) GetProfessorUser(ctx context.Context, profID int64) (*ProfessorUser, error) {
	row := r.db.QueryRowContext(ctx, professorUserSelect+` WHERE p.id = $1`, profID)
	var pu ProfessorUser
	if err := scanProfessorUser(row, &pu); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &pu, nil
}

// UserExists reports whether a user row exists.
func (r *Repository) UserExists(ctx context.Context, id int64) (bool, error) {
	var found int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// ProfessorExists reports whether a professor row exists.
func (r *Repository) ProfessorExists(ctx context.Context, id int64) (bool, error) {
	var found int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM professors WHERE id = $1`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// SetProfessorLink points users.prof_id at a professor, returning the
// affected count.
func (r *Repository) SetProfessorLink(ctx context.Context, userID, profID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET prof_id = $1 WHERE id = $2`, profID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ClearProfessorLink nulls users.prof_id, returning the affected count.
func (r *Repository) ClearProfessorLink(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET prof_id = NULL WHERE id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateProfessorAndUsers updates a professor and every user linked to it
// inside one transaction: either both statements commit or neither does.
// Returns how many professor rows and user rows were touched.
func (r *Repository) UpdateProfessorAndUsers(ctx context.Context, profID int64, prof directory.ProfessorUpdate, user UserUpdate) (int64, int64, error) {
	profFields, profArgs := directory.BuildProfessorSet(prof, 0)
	userFields, userArgs := buildUserSet(user, 0)
	if len(profFields) == 0 && len(userFields) == 0 {
		return 0, 0, errors.New("no fields provided to update for professor or user")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	var updatedProf, updatedUsers int64
	if len(profFields) > 0 {
		query := "UPDATE professors SET " + joinClauses(profFields, ", ") + " WHERE id = $" + itoa(len(profArgs)+1)
		res, err := tx.ExecContext(ctx, query, append(profArgs, profID)...)
		if err != nil {
			return 0, 0, err
		}
		updatedProf, err = res.RowsAffected()
		if err != nil {
			return 0, 0, err
		}
		if updatedProf == 0 {
			return 0, 0, ErrProfessorNotFound
		}
	}
	if len(userFields) > 0 {
		query := "UPDATE users SET " + joinClauses(userFields, ", ") + " WHERE prof_id = $" + itoa(len(userArgs)+1)
		res, err := tx.ExecContext(ctx, query, append(userArgs, profID)...)
		if err != nil {
			return 0, 0, err
		}
		updatedUsers, err = res.RowsAffected()
		if err != nil {
			return 0, 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return updatedProf, updatedUsers, nil
}

func buildUserSet(u UserUpdate, offset int) ([]string, []any) {
	fields := []string{}
	args := []any{}
	addStr := func(col string, v *string) {
		if v != nil {
			fields = append(fields, col+" = $"+itoa(offset+len(args)+1))
			args = append(args, *v)
		}
	}
	addInt := func(col string, v *int64) {
		if v != nil {
			fields = append(fields, col+" = $"+itoa(offset+len(args)+1))
			args = append(args, *v)
		}
	}
	addStr("username", u.Username)
	addStr("email", u.Email)
	addStr("phone", u.Phone)
	addInt("dept_id", u.DeptID)
	addStr("status", u.Status)
	addInt("role", u.Role)
	addStr("password", u.PasswordHash)
	return fields, args
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
