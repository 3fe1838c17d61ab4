// Package directory holds the campus lookup tables behind the visitor flow:
// offices, departments, professors, roles, and the services each department
// offers. All of it is plain CRUD over parameterized SQL.
package directory

import (
	"database/sql"
	"fmt"
)

// Repository persists directory records.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
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
