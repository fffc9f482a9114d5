package store

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Lead is a marketing contact captured before the WhatsApp handoff
// (simulator submissions, newsletter signups).
type Lead struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Intention string          `json:"intention"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt string          `json:"created_at"`
}

type LeadStore struct {
	db *pgxpool.Pool
}

func (s *LeadStore) Create(ctx context.Context, l *Lead) error {
	query := `
		INSERT INTO leads (name, email, intention, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at::text`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	details := l.Details
	if details == nil {
		details = json.RawMessage(`{}`)
	}

	return s.db.QueryRow(ctx, query, l.Name, l.Email, l.Intention, details).
		Scan(&l.ID, &l.CreatedAt)
}
