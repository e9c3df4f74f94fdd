// internal/notify/directory.go
package notify

import (
	"context"
	"database/sql"

	"talent-pipeline/internal/models"
)

// SQLContactDirectory resolves candidate contact details from the users table.
type SQLContactDirectory struct {
	db *sql.DB
}

func NewSQLContactDirectory(db *sql.DB) *SQLContactDirectory {
	return &SQLContactDirectory{db: db}
}

func (d *SQLContactDirectory) Contact(ctx context.Context, candidateID string) (models.Candidate, error) {
	var c models.Candidate
	c.ID = candidateID
	err := d.db.QueryRowContext(ctx,
		`SELECT email, phone FROM users WHERE id = $1`, candidateID).
		Scan(&c.Email, &c.Phone)
	if err != nil {
		return models.Candidate{}, err
	}
	return c, nil
}

var _ ContactDirectory = (*SQLContactDirectory)(nil)
