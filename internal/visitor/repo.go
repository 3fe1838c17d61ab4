package visitor

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Profile is a registered visitor. FacultyToVisit travels as a JSON array
// over the wire and is persisted as serialized text.
type Profile struct {
	ID             int64     `json:"id"`
	VisitorsID     string    `json:"visitorsID"`
	FirstName      *string   `json:"first_name"`
	MiddleName     *string   `json:"middle_name"`
	LastName       *string   `json:"last_name"`
	Suffix         *string   `json:"suffix"`
	Gender         *string   `json:"gender"`
	BirthDate      *string   `json:"birth_date"`
	Address        *string   `json:"address"`
	Phone          *string   `json:"phone"`
	FacultyToVisit []string  `json:"faculty_to_visit"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Repository persists visitor profiles.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create registers a visitor and returns the row id. When the caller
// supplies no visitorsID one is issued, so the returned profile always
// carries a usable ID for log and office-visit rows.
func (r *Repository) Create(ctx context.Context, p Profile) (int64, string, error) {
	if p.VisitorsID == "" {
		p.VisitorsID = uuid.NewString()
	}
	var faculty any
	if p.FacultyToVisit != nil {
		raw, err := json.Marshal(p.FacultyToVisit)
		if err != nil {
			return 0, "", err
		}
		faculty = string(raw)
	}
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO visitorsdata ("visitorsID", first_name, middle_name, last_name, suffix, gender, birth_date, address, phone, faculty_to_visit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, p.VisitorsID, p.FirstName, p.MiddleName, p.LastName, p.Suffix, p.Gender, p.BirthDate, p.Address, p.Phone, faculty).Scan(&id)
	if err != nil {
		return 0, "", err
	}
	return id, p.VisitorsID, nil
}

// Get returns a profile by visitorsID, or nil when not found. The stored
// faculty_to_visit text is decoded back into an array; absent or blank
// text decodes to an empty list, never null.
func (r *Repository) Get(ctx context.Context, visitorsID string) (*Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, "visitorsID", first_name, middle_name, last_name, suffix, gender, birth_date, address, phone, faculty_to_visit, "createdAt"
		FROM visitorsdata
		WHERE "visitorsID" = $1
	`, visitorsID)
	var p Profile
	var faculty sql.NullString
	if err := row.Scan(&p.ID, &p.VisitorsID, &p.FirstName, &p.MiddleName, &p.LastName, &p.Suffix, &p.Gender, &p.BirthDate, &p.Address, &p.Phone, &faculty, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.FacultyToVisit = decodeFaculty(faculty)
	return &p, nil
}

func decodeFaculty(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return []string{}
	}
	var names []string
	if err := json.Unmarshal([]byte(raw.String), &names); err != nil {
		return []string{}
	}
	return names
}
